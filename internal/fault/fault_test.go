package fault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func newTestReporter(v Verbosity) (*Reporter, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewReporter(logger, v), &buf
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", New(Dispatch, "set time scale", cause))

	if KindOf(err) != Dispatch {
		t.Errorf("KindOf = %v, want dispatch", KindOf(err))
	}
	if !Is(err, Dispatch) {
		t.Error("Is(err, Dispatch) = false")
	}
	if Is(err, Presentation) {
		t.Error("Is(err, Presentation) = true")
	}
	if !errors.Is(err, cause) {
		t.Error("cause lost through Unwrap")
	}
	if got := err.Error(); got != "outer: set time scale: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindOfPlainError(t *testing.T) {
	if KindOf(errors.New("x")) != 0 {
		t.Error("plain error should have kind 0")
	}
	if Is(nil, Dispatch) {
		t.Error("nil error should not match")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		InputValidation: "input_validation",
		SnapshotAccess:  "snapshot_access",
		Presentation:    "presentation",
		Dispatch:        "dispatch",
		Kind(99):        "unknown",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), k.String(), want)
		}
	}
}

func TestFromPanic(t *testing.T) {
	err := FromPanic(Presentation, "physics", "nil map")
	if err.Kind != Presentation || !strings.Contains(err.Error(), "panic: nil map") {
		t.Errorf("FromPanic(string) = %v", err)
	}
	cause := errors.New("index out of range")
	err = FromPanic(SnapshotAccess, "list", cause)
	if !errors.Is(err, cause) {
		t.Error("FromPanic(error) should wrap the panic value")
	}
}

func TestReportRaisesOneNotice(t *testing.T) {
	r, buf := newTestReporter(LogAndNotice)

	r.Report("Invalid FPS value", Errorf(InputValidation, "set frame rate", "parse %q", "abc"))

	if r.Reported() != 1 || r.Notices() != 1 {
		t.Fatalf("reported=%d notices=%d, want 1/1", r.Reported(), r.Notices())
	}
	n, ok := r.Pending()
	if !ok {
		t.Fatal("expected pending notice")
	}
	if n.Kind != InputValidation || n.Context != "Invalid FPS value" {
		t.Errorf("notice = %+v", n)
	}
	if n.Title() != "Invalid input" {
		t.Errorf("Title() = %q", n.Title())
	}
	if !strings.Contains(buf.String(), "kind=input_validation") {
		t.Errorf("log missing kind: %s", buf.String())
	}
	if strings.Count(buf.String(), "level=ERROR") != 1 {
		t.Errorf("expected exactly one log record, got:\n%s", buf.String())
	}
}

func TestReportKeepsMostRecentNotice(t *testing.T) {
	r, _ := newTestReporter(LogAndNotice)
	r.Report("first", New(SnapshotAccess, "list", errors.New("a")))
	r.Report("second", New(Dispatch, "step", errors.New("b")))

	n, _ := r.Pending()
	if n.Context != "second" {
		t.Errorf("pending = %q, want second", n.Context)
	}
	if r.Notices() != 2 {
		t.Errorf("notices = %d, want 2", r.Notices())
	}
	if r.Count(SnapshotAccess) != 1 || r.Count(Dispatch) != 1 {
		t.Errorf("per-kind counts wrong: %d %d", r.Count(SnapshotAccess), r.Count(Dispatch))
	}

	r.Dismiss()
	if _, ok := r.Pending(); ok {
		t.Error("Dismiss should clear the pending notice")
	}
}

func TestReportLogOnly(t *testing.T) {
	r, buf := newTestReporter(LogOnly)
	r.Report("quiet", New(Presentation, "materials", errors.New("x")))

	if _, ok := r.Pending(); ok {
		t.Error("LogOnly should not raise a notice")
	}
	if r.Notices() != 0 || r.Reported() != 1 {
		t.Errorf("reported=%d notices=%d", r.Reported(), r.Notices())
	}
	if buf.Len() == 0 {
		t.Error("LogOnly should still log")
	}
}

func TestReportNilIgnored(t *testing.T) {
	r, buf := newTestReporter(LogAndNotice)
	r.Report("nothing", nil)
	if r.Reported() != 0 || buf.Len() != 0 {
		t.Error("nil error should be ignored")
	}
}

type panicHandler struct{ slog.Handler }

func (panicHandler) Enabled(context.Context, slog.Level) bool { return true }
func (panicHandler) Handle(context.Context, slog.Record) error { panic("disk full") }

func TestReportNeverPanics(t *testing.T) {
	r := NewReporter(slog.New(panicHandler{}), LogAndNotice)
	r.Report("ctx", errors.New("boom"))
	if _, ok := r.Pending(); !ok {
		t.Error("notice should be raised even when logging fails")
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in   string
		want Verbosity
		err  bool
	}{
		{"", LogAndNotice, false},
		{"notice", LogAndNotice, false},
		{"LOG", LogOnly, false},
		{"quiet", LogOnly, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("ParseVerbosity(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseVerbosity(%q) = %v, %v", tt.in, got, err)
		}
	}
}
