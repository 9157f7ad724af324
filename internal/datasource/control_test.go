package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func readControl(t *testing.T, path string) PlaybackState {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var s PlaybackState
	if err := yaml.Unmarshal(data, &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return s
}

func TestControlFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.control.yaml")
	c, err := OpenControlFile(path)
	if err != nil {
		t.Fatalf("OpenControlFile: %v", err)
	}
	if c.State().FrameRate != 60 || c.State().TimeScale != 1 {
		t.Errorf("default state = %+v", c.State())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("opening should not create the file")
	}
}

func TestControlFileWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.control.yaml")
	c, _ := OpenControlFile(path)

	if err := c.SetFrameRate(30); err != nil {
		t.Fatalf("SetFrameRate: %v", err)
	}
	if err := c.SetTimeScale(0); err != nil {
		t.Fatalf("SetTimeScale: %v", err)
	}
	if err := c.AdvanceOneFrame(); err != nil {
		t.Fatalf("AdvanceOneFrame: %v", err)
	}
	if err := c.AdvanceOneFrame(); err != nil {
		t.Fatalf("AdvanceOneFrame: %v", err)
	}
	if err := c.SetMouseVisible(true); err != nil {
		t.Fatalf("SetMouseVisible: %v", err)
	}

	got := readControl(t, path)
	if got.FrameRate != 30 || got.TimeScale != 0 || got.Step != 2 || !got.MouseVisible {
		t.Errorf("control file = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestControlFileResumesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.control.yaml")
	c, _ := OpenControlFile(path)
	c.SetFrameRate(24)
	c.AdvanceOneFrame()

	again, err := OpenControlFile(path)
	if err != nil {
		t.Fatalf("OpenControlFile: %v", err)
	}
	if again.State().FrameRate != 24 || again.State().Step != 1 {
		t.Errorf("resumed state = %+v", again.State())
	}
}

func TestControlFileWriteFailureKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "scene.control.yaml")
	c, _ := OpenControlFile(path)

	if err := c.SetTimeScale(5); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
	if c.State().TimeScale != 1 {
		t.Errorf("state changed despite failure: %+v", c.State())
	}
}

func TestOpenControlFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.control.yaml")
	os.WriteFile(path, []byte("frame_rate: [not a number"), 0o644)
	if _, err := OpenControlFile(path); err == nil {
		t.Error("expected decode error")
	}
}
