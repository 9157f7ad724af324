// Package datasource discovers and loads scene files written by an external
// simulation host.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/daviddao/scene_viewer/internal/scene"
)

const (
	// EnvScene overrides scene file discovery.
	EnvScene = "SV_SCENE"

	defaultDir   = ".sv"
	defaultScene = defaultDir + "/scene.yaml"
)

// Discover finds the scene file path.
// Priority: SV_SCENE env var > .sv/scene.yaml in CWD > walk up parents.
func Discover() (string, error) {
	if env := os.Getenv(EnvScene); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
		return "", fmt.Errorf("%s=%q: %w", EnvScene, env, os.ErrNotExist)
	}

	// Check CWD first.
	if _, err := os.Stat(defaultScene); err == nil {
		abs, err := filepath.Abs(defaultScene)
		if err != nil {
			return "", fmt.Errorf("resolve absolute path for %s: %w", defaultScene, err)
		}
		return abs, nil
	}

	// Walk up parent directories.
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, defaultScene)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no scene file found (looked for %s)", defaultScene)
}

// ControlPath returns the sidecar control file for a scene file:
// scene.yaml -> scene.control.yaml.
func ControlPath(scenePath string) string {
	ext := filepath.Ext(scenePath)
	return strings.TrimSuffix(scenePath, ext) + ".control" + ext
}

// Open discovers the scene file and loads it into a provider.
func Open() (*FileProvider, string, error) {
	path, err := Discover()
	if err != nil {
		return nil, "", err
	}
	p, err := NewFileProvider(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	return p, path, nil
}

// FileProvider serves the entities of the last loaded scene file. Loading
// happens off the UI goroutine via Load; Install swaps the result in.
// List and Lookup never touch the disk.
type FileProvider struct {
	path string
	mem  *scene.Memory
}

// NewFileProvider loads path and returns a provider serving it.
func NewFileProvider(path string) (*FileProvider, error) {
	entities, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &FileProvider{path: path, mem: scene.NewMemory(entities...)}, nil
}

// Path returns the scene file path.
func (p *FileProvider) Path() string { return p.path }

// Install replaces the served entities with a freshly loaded set.
func (p *FileProvider) Install(entities []scene.Entity) { p.mem.Set(entities) }

// List returns the served entities.
func (p *FileProvider) List() ([]scene.Entity, error) { return p.mem.List() }

// Lookup returns the served entity with the given identifier.
func (p *FileProvider) Lookup(id string) (scene.Entity, bool, error) { return p.mem.Lookup(id) }
