// Package sim is a small in-process simulation used by demo mode. It serves
// its entities through scene.Provider and takes playback commands through
// control.Sink, so the inspector drives it exactly as it would a real host.
package sim

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/daviddao/scene_viewer/internal/scene"
)

const (
	defaultFrameRate = 60
	gravity          = 9.81
)

// State is the playback state of a World.
type State struct {
	FrameRate    float64
	TimeScale    float64
	MouseVisible bool
	Frame        uint64
	Elapsed      time.Duration
}

// World owns a set of entities and integrates them on each frame.
// All methods are safe for concurrent use.
type World struct {
	mu       sync.Mutex
	entities []scene.Entity
	state    State
}

// New returns a world over entities at 60 fps and normal speed.
func New(entities ...scene.Entity) *World {
	w := &World{state: State{FrameRate: defaultFrameRate, TimeScale: 1}}
	for _, e := range entities {
		w.entities = append(w.entities, e.Clone())
	}
	return w
}

// List returns a deep copy of every entity.
func (w *World) List() ([]scene.Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]scene.Entity, len(w.entities))
	for i, e := range w.entities {
		out[i] = e.Clone()
	}
	return out, nil
}

// Lookup returns a copy of the entity with the given identifier.
func (w *World) Lookup(id string) (scene.Entity, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range w.entities {
		if e.ID == id && id != "" {
			return e.Clone(), true, nil
		}
	}
	return scene.Entity{}, false, nil
}

// Spawn adds an entity.
func (w *World) Spawn(e scene.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities = append(w.entities, e.Clone())
}

// Despawn removes every entity with the given identifier.
func (w *World) Despawn(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.entities[:0]
	for _, e := range w.entities {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	w.entities = kept
}

// State returns the current playback state.
func (w *World) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

var (
	errFrameRate = errors.New("frame rate must be positive")
	errTimeScale = errors.New("time scale must not be negative")
)

// SetFrameRate changes the number of frames per second.
func (w *World) SetFrameRate(fps float64) error {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return errFrameRate
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.FrameRate = fps
	return nil
}

// SetTimeScale changes the simulation speed. Zero pauses.
func (w *World) SetTimeScale(scale float64) error {
	if !(scale >= 0) || math.IsInf(scale, 0) {
		return errTimeScale
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.TimeScale = scale
	return nil
}

// AdvanceOneFrame integrates exactly one frame at normal speed, whatever
// the current time scale.
func (w *World) AdvanceOneFrame() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance(1 / w.state.FrameRate)
	return nil
}

// SetMouseVisible records the cursor visibility.
func (w *World) SetMouseVisible(visible bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.MouseVisible = visible
	return nil
}

// Advance integrates dt seconds of wall time scaled by the time scale.
func (w *World) Advance(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advance(dt * w.state.TimeScale)
}

// RunSimulation advances the world at its frame rate until stop is closed.
func (w *World) RunSimulation(stop <-chan struct{}) {
	interval := w.frameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = interval.Seconds()
			}
			last = now
			w.Advance(dt)

			if next := w.frameInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

func (w *World) frameInterval() time.Duration {
	fps := w.State().FrameRate
	d := time.Duration(float64(time.Second) / fps)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// advance integrates dt seconds of simulated time. Caller holds mu.
func (w *World) advance(dt float64) {
	w.state.Frame++
	if dt <= 0 {
		return
	}
	w.state.Elapsed += time.Duration(dt * float64(time.Second))
	for i := range w.entities {
		integrate(&w.entities[i], dt)
	}
}

// integrate applies one explicit Euler step. Entities with physics fall
// under gravity and bounce off the ground plane; their bounce count is kept
// in the "bounces" property when present.
func integrate(e *scene.Entity, dt float64) {
	if !e.PhysicsEnabled || e.Physics == nil || e.Transform == nil {
		return
	}
	p, tr := e.Physics, e.Transform

	if p.Mass > 0 {
		p.LinearVelocity[2] -= gravity * dt
	}
	for k := range tr.Position {
		tr.Position[k] += p.LinearVelocity[k] * dt
	}
	if tr.Position[2] < 0 && p.LinearVelocity[2] < 0 {
		tr.Position[2] = -tr.Position[2]
		p.LinearVelocity[2] = -p.LinearVelocity[2] * 0.8
		if v, ok := e.Properties["bounces"]; ok && v.Kind == scene.KindInt {
			e.Properties["bounces"] = scene.Int(v.Int + 1)
		}
	}

	av := p.AngularVelocity
	speed := math.Sqrt(av[0]*av[0] + av[1]*av[1] + av[2]*av[2])
	if speed > 0 {
		spin := scene.QuatFromAxisAngle(av, speed*dt)
		tr.Orientation = spin.Mul(tr.Orientation).Normalized()
	}
}
