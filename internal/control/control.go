// Package control validates user playback commands and forwards them to the
// simulation.
package control

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/daviddao/scene_viewer/internal/fault"
)

// Sink receives validated playback commands. Each call is fire-and-forget:
// a returned error means the host rejected the command and its state is
// assumed unchanged.
type Sink interface {
	SetFrameRate(fps float64) error
	SetTimeScale(scale float64) error
	AdvanceOneFrame() error
	SetMouseVisible(visible bool) error
}

// Kind identifies a playback command.
type Kind int

const (
	SetFrameRate Kind = iota
	SetTimeScale
	Pause
	Play
	StepFrame
	ToggleMouseVisibility
	TogglePhysicsVisualization
)

func (k Kind) String() string {
	switch k {
	case SetFrameRate:
		return "set frame rate"
	case SetTimeScale:
		return "set time scale"
	case Pause:
		return "pause"
	case Play:
		return "play"
	case StepFrame:
		return "step frame"
	case ToggleMouseVisibility:
		return "toggle mouse visibility"
	case TogglePhysicsVisualization:
		return "toggle physics visualization"
	}
	return "unknown command"
}

// Command is a parsed, validated playback command. Value is only meaningful
// for SetFrameRate and SetTimeScale.
type Command struct {
	Kind  Kind
	Value float64
}

// Parse validates text for kind. Commands without an argument ignore text.
// Frame rates must be positive and time scales non-negative; both must be
// finite numbers.
func Parse(kind Kind, text string) (Command, error) {
	switch kind {
	case SetFrameRate, SetTimeScale:
	case Pause, Play, StepFrame, ToggleMouseVisibility, TogglePhysicsVisualization:
		return Command{Kind: kind}, nil
	default:
		return Command{}, fault.Errorf(fault.InputValidation, "parse command", "unknown command %d", int(kind))
	}

	s := strings.TrimSpace(text)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Command{}, fault.Errorf(fault.InputValidation, kind.String(), "%q is not a number", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Command{}, fault.Errorf(fault.InputValidation, kind.String(), "%q is not a finite number", text)
	}
	if kind == SetFrameRate && v <= 0 {
		return Command{}, fault.Errorf(fault.InputValidation, kind.String(), "frame rate must be positive, got %s", s)
	}
	if kind == SetTimeScale && v < 0 {
		return Command{}, fault.Errorf(fault.InputValidation, kind.String(), "time scale must not be negative, got %s", s)
	}
	return Command{Kind: kind, Value: v}, nil
}

// Reporter receives faults from failed commands.
type Reporter interface {
	Report(context string, err error)
}

// Dispatcher forwards commands to a Sink. It owns the mouse-visibility flag.
// It is not safe for concurrent use.
type Dispatcher struct {
	sink     Sink
	reporter Reporter
	logger   *slog.Logger

	mouseVisible bool
	physicsViz   bool
}

// NewDispatcher creates a dispatcher. mouseVisible is the host's initial
// cursor state.
func NewDispatcher(sink Sink, reporter Reporter, logger *slog.Logger, mouseVisible bool) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sink:         sink,
		reporter:     reporter,
		logger:       logger,
		mouseVisible: mouseVisible,
	}
}

// MouseVisible returns the last mouse visibility successfully forwarded.
func (d *Dispatcher) MouseVisible() bool { return d.mouseVisible }

// Submit parses text for kind and dispatches the result. Every failure is
// reported exactly once and also returned.
func (d *Dispatcher) Submit(kind Kind, text string) error {
	cmd, err := Parse(kind, text)
	if err != nil {
		d.reporter.Report(invalidContext(kind), err)
		return err
	}
	return d.Dispatch(cmd)
}

// Dispatch forwards cmd to the sink. Pause and Play set the time scale to 0
// and 1; no previous speed is remembered.
func (d *Dispatcher) Dispatch(cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.FromPanic(fault.Dispatch, cmd.Kind.String(), r)
		}
		if err != nil {
			if !fault.Is(err, fault.Dispatch) {
				err = fault.New(fault.Dispatch, cmd.Kind.String(), err)
			}
			d.reporter.Report("Error: "+cmd.Kind.String(), err)
		}
	}()

	switch cmd.Kind {
	case SetFrameRate:
		if err := d.sink.SetFrameRate(cmd.Value); err != nil {
			return err
		}
		d.logger.Info("frame rate set", "fps", cmd.Value)
	case SetTimeScale:
		if err := d.sink.SetTimeScale(cmd.Value); err != nil {
			return err
		}
		d.logger.Info("time scale set", "scale", cmd.Value)
	case Pause:
		if err := d.sink.SetTimeScale(0); err != nil {
			return err
		}
		d.logger.Info("simulation paused")
	case Play:
		if err := d.sink.SetTimeScale(1); err != nil {
			return err
		}
		d.logger.Info("simulation resumed")
	case StepFrame:
		if err := d.sink.AdvanceOneFrame(); err != nil {
			return err
		}
		d.logger.Info("stepped one frame")
	case ToggleMouseVisibility:
		next := !d.mouseVisible
		if err := d.sink.SetMouseVisible(next); err != nil {
			return err
		}
		d.mouseVisible = next
		d.logger.Info("mouse visibility set", "visible", next)
	case TogglePhysicsVisualization:
		d.physicsViz = !d.physicsViz
		d.logger.Info("physics visualization toggled (not implemented)", "requested", d.physicsViz)
	default:
		return fmt.Errorf("unknown command %d", int(cmd.Kind))
	}
	return nil
}

func invalidContext(kind Kind) string {
	switch kind {
	case SetFrameRate:
		return "Invalid FPS value"
	case SetTimeScale:
		return "Invalid game speed value"
	}
	return "Invalid command"
}
