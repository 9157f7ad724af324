package datasource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PlaybackState is the control document the host polls. Step increases by
// one for each requested single-frame advance.
type PlaybackState struct {
	FrameRate    float64   `yaml:"frame_rate"`
	TimeScale    float64   `yaml:"time_scale"`
	MouseVisible bool      `yaml:"mouse_visible"`
	Step         uint64    `yaml:"step"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// DefaultPlayback is the state assumed when no control file exists yet.
var DefaultPlayback = PlaybackState{FrameRate: 60, TimeScale: 1}

// ControlFile forwards playback commands to a host by rewriting a sidecar
// YAML file. Writes are atomic (temp file + rename) so the host never reads
// a partial document.
type ControlFile struct {
	path  string
	state PlaybackState
	now   func() time.Time
}

// OpenControlFile reads the current control state at path, or starts from
// DefaultPlayback when the file does not exist.
func OpenControlFile(path string) (*ControlFile, error) {
	c := &ControlFile{path: path, state: DefaultPlayback, now: time.Now}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &c.state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return c, nil
}

// Path returns the control file path.
func (c *ControlFile) Path() string { return c.path }

// State returns the last state written.
func (c *ControlFile) State() PlaybackState { return c.state }

// SetFrameRate writes a new frame rate.
func (c *ControlFile) SetFrameRate(fps float64) error {
	return c.update(func(s *PlaybackState) { s.FrameRate = fps })
}

// SetTimeScale writes a new time scale.
func (c *ControlFile) SetTimeScale(scale float64) error {
	return c.update(func(s *PlaybackState) { s.TimeScale = scale })
}

// AdvanceOneFrame bumps the step counter.
func (c *ControlFile) AdvanceOneFrame() error {
	return c.update(func(s *PlaybackState) { s.Step++ })
}

// SetMouseVisible writes the cursor visibility.
func (c *ControlFile) SetMouseVisible(visible bool) error {
	return c.update(func(s *PlaybackState) { s.MouseVisible = visible })
}

// update applies fn and persists the result. On failure the in-memory state
// is left as it was.
func (c *ControlFile) update(fn func(*PlaybackState)) error {
	next := c.state
	fn(&next)
	next.UpdatedAt = c.now().UTC()

	data, err := yaml.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode control state: %w", err)
	}
	if err := writeAtomic(c.path, data); err != nil {
		return err
	}
	c.state = next
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp control file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write control file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close control file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace control file: %w", err)
	}
	return nil
}
