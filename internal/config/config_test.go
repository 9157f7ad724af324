package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daviddao/scene_viewer/internal/fault"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sv.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Refresh != 500*time.Millisecond || cfg.Precision != 3 {
		t.Errorf("Default() = %+v", cfg)
	}
	if cfg.ReporterVerbosity() != fault.LogAndNotice {
		t.Error("default verbosity should raise notices")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scene: world/.sv/scene.yaml
refresh: 250ms
precision: 2
verbosity: log
log_file: /tmp/sv.log
journal: /tmp/sv.db
mouse_visible: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scene != "world/.sv/scene.yaml" || cfg.Refresh != 250*time.Millisecond || cfg.Precision != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogFile != "/tmp/sv.log" || cfg.Journal != "/tmp/sv.db" || !cfg.MouseVisible {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ReporterVerbosity() != fault.LogOnly {
		t.Error("verbosity log should be LogOnly")
	}
}

func TestLoadKeepsUnsetDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "demo: true\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Demo || cfg.Refresh != 500*time.Millisecond || cfg.Precision != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "refresh: [1"},
		{"zero refresh", "refresh: 0s"},
		{"negative precision", "precision: -1"},
		{"huge precision", "precision: 40"},
		{"bad verbosity", "verbosity: loud"},
		{"demo and scene", "demo: true\nscene: a.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
