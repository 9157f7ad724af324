package fault

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Verbosity selects what a reported fault produces.
type Verbosity int

const (
	// LogAndNotice logs the fault and raises a user-visible notice.
	LogAndNotice Verbosity = iota
	// LogOnly logs the fault without a notice.
	LogOnly
)

// ParseVerbosity maps "notice" / "log" to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "notice", "log+notice":
		return LogAndNotice, nil
	case "log", "log-only", "quiet":
		return LogOnly, nil
	}
	return 0, fmt.Errorf("unknown verbosity %q (valid: notice, log)", s)
}

func (v Verbosity) String() string {
	if v == LogOnly {
		return "log"
	}
	return "notice"
}

// Notice is the user-visible form of one reported fault.
type Notice struct {
	Context string
	Message string
	Kind    Kind
	At      time.Time
}

// Title returns a short heading for the notice.
func (n Notice) Title() string {
	switch n.Kind {
	case InputValidation:
		return "Invalid input"
	case SnapshotAccess:
		return "Scene unavailable"
	case Presentation:
		return "Display error"
	case Dispatch:
		return "Command failed"
	}
	return "Error"
}

// Reporter is the sole path by which a captured fault becomes visible.
// It is not safe for concurrent use; the inspector calls it from the UI loop.
type Reporter struct {
	logger    *slog.Logger
	verbosity Verbosity
	now       func() time.Time

	pending  *Notice
	reported int
	notices  int
	byKind   map[Kind]int
}

// NewReporter creates a reporter writing to logger.
func NewReporter(logger *slog.Logger, v Verbosity) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		logger:    logger,
		verbosity: v,
		now:       time.Now,
		byKind:    make(map[Kind]int),
	}
}

// Report records err under context. It never panics and never returns an
// error; a nil err is ignored.
func (r *Reporter) Report(context string, err error) {
	if err == nil {
		return
	}
	kind := KindOf(err)
	r.reported++
	r.byKind[kind]++

	if r.verbosity == LogAndNotice {
		r.notices++
		r.pending = &Notice{
			Context: context,
			Message: err.Error(),
			Kind:    kind,
			At:      r.now(),
		}
	}
	r.log(context, kind, err)
}

func (r *Reporter) log(context string, kind Kind, err error) {
	// A failing log handler must not take the caller down.
	defer func() { _ = recover() }()
	r.logger.Error(context,
		"kind", kind.String(),
		"error", err.Error(),
	)
}

// Pending returns the most recent undismissed notice.
func (r *Reporter) Pending() (Notice, bool) {
	if r.pending == nil {
		return Notice{}, false
	}
	return *r.pending, true
}

// Dismiss clears the pending notice.
func (r *Reporter) Dismiss() {
	r.pending = nil
}

// Reported returns the number of faults reported so far.
func (r *Reporter) Reported() int { return r.reported }

// Notices returns the number of notices raised so far.
func (r *Reporter) Notices() int { return r.notices }

// Count returns how many faults of kind have been reported.
func (r *Reporter) Count(kind Kind) int { return r.byKind[kind] }

// Verbosity returns the configured verbosity.
func (r *Reporter) Verbosity() Verbosity { return r.verbosity }
