// sv is a live-inspection overlay for a running simulation.
//
// It polls the scene on a fixed tick, lists live entities with a search box,
// shows the selected entity in six category panels and forwards playback
// commands (frame rate, time scale, pause, play, step, mouse cursor) to the
// host.
//
// Usage:
//
//	sv                          # Auto-discover .sv/scene.yaml
//	sv --scene <path>           # Use a specific scene file
//	sv --demo                   # Inspect the built-in demo simulation
//	sv --json                   # Dump every entity's panels as JSON and exit
//	sv --entity Cube            # Select an entity on startup
//	sv --refresh 250ms          # Set the refresh interval
//	sv --journal sv.db          # Also persist log records to SQLite
//	sv --history 20 --journal sv.db
//	sv --init                   # Write a sample scene and exit
//	sv --version                # Print version and exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/daviddao/scene_viewer/internal/config"
	"github.com/daviddao/scene_viewer/internal/control"
	"github.com/daviddao/scene_viewer/internal/datasource"
	"github.com/daviddao/scene_viewer/internal/fault"
	"github.com/daviddao/scene_viewer/internal/inspector"
	"github.com/daviddao/scene_viewer/internal/journal"
	"github.com/daviddao/scene_viewer/internal/scene"
	"github.com/daviddao/scene_viewer/internal/sim"
	"github.com/daviddao/scene_viewer/internal/snapshot"
)

// Version is set via ldflags at build time (e.g. -X main.Version=v0.1.0).
var Version = "dev"

// jsonOutput is the structure for --json mode.
type jsonOutput struct {
	Entities []jsonEntity `json:"entities"`
	Stats    jsonStats    `json:"stats"`
	BuiltAt  string       `json:"built_at"`
}

type jsonEntity struct {
	ID     string      `json:"id"`
	Panels []jsonPanel `json:"panels"`
	Faults []string    `json:"faults,omitempty"`
}

type jsonPanel struct {
	Category string   `json:"category"`
	Rows     []string `json:"rows"`
}

type jsonStats struct {
	TotalEntities  int `json:"total_entities"`
	PhysicsEnabled int `json:"physics_enabled"`
	WithTransform  int `json:"with_transform"`
	Dropped        int `json:"dropped"`
	Faults         int `json:"faults"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command line, before merging with a config file.
type options struct {
	configPath string
	jsonMode   bool
	entity     string
	filter     string
	history    int
	initScene  bool
	version    bool
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "sv: %v\n", err)
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "sv %s\n", Version)
		return 0
	}

	if opts.history > 0 {
		if err := printHistory(stdout, cfg.Journal, opts.history); err != nil {
			fmt.Fprintf(stderr, "sv: history: %v\n", err)
			return 1
		}
		return 0
	}

	if opts.initScene {
		path, err := writeSampleScene(cfg.Scene)
		if err != nil {
			fmt.Fprintf(stderr, "sv: init: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s\n", path)
		return 0
	}

	h, err := openHost(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "sv: %v\n", err)
		return 1
	}
	defer h.close()

	// --json mode: present every entity, print JSON, exit.
	if opts.jsonMode {
		snap, err := snapshot.Build(h.provider, opts.filter, cfg.Precision)
		if err != nil {
			fmt.Fprintf(stderr, "sv: snapshot: %v\n", err)
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(buildJSONOutput(snap)); err != nil {
			fmt.Fprintf(stderr, "sv: json: %v\n", err)
			return 1
		}
		return 0
	}

	logger, closeLog, err := openLogger(cfg, h.logDir)
	if err != nil {
		fmt.Fprintf(stderr, "sv: log: %v\n", err)
		return 1
	}
	// The watcher and the demo loop may still log while shutting down.
	h.closeLast(closeLog)

	if err := h.watch(logger); err != nil {
		fmt.Fprintf(stderr, "sv: %v\n", err)
		return 1
	}

	reporter := fault.NewReporter(logger, cfg.ReporterVerbosity())
	session := inspector.New(h.provider, reporter, inspector.Options{
		Precision: cfg.Precision,
		Logger:    logger,
	})
	dispatcher := control.NewDispatcher(h.sink, reporter, logger.With("component", "control"), h.mouseVisible)

	m := newModel(session, dispatcher, reporter, h.label)
	m.refreshInterval = cfg.Refresh
	m.scenePath = h.scenePath
	m.files = h.files
	m.logger = logger
	m.session.Start()
	if opts.filter != "" {
		m.search.SetValue(opts.filter)
		m.session.SetFilter(opts.filter)
	}
	m.display = m.session.Tick()
	m.lastRefresh = time.Now()

	// Apply --entity: select and present on startup.
	if opts.entity != "" {
		m.display = m.session.Select(opts.entity)
		m.syncCursor()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Feed scene file changes into the TUI.
	if h.watcher != nil {
		go func() {
			for range h.watcher.Changes() {
				p.Send(sceneChangedMsg{})
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "sv: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*config.Config, options, error) {
	fs := flag.NewFlagSet("sv", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	scenePath := fs.String("scene", "", "path to scene.yaml (default: auto-discover)")
	demo := fs.Bool("demo", false, "inspect the built-in demo simulation")
	refresh := fs.Duration("refresh", inspector.DefaultInterval, "refresh interval")
	precision := fs.Int("precision", 3, "decimal places shown for floats")
	verbosity := fs.String("verbosity", "notice", "fault verbosity: notice (log and show) or log (log only)")
	logFile := fs.String("log", "", "append-only log file (default: sv.log next to the scene)")
	journalPath := fs.String("journal", "", "also persist log records to this SQLite database")
	mouse := fs.Bool("mouse", false, "initial mouse visibility (demo mode)")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file; flags override its values")
	fs.BoolVar(&opts.jsonMode, "json", false, "dump every entity's panels as JSON and exit (no TUI)")
	fs.StringVar(&opts.entity, "entity", "", "select an entity on startup")
	fs.StringVar(&opts.filter, "filter", "", "initial search text")
	fs.IntVar(&opts.history, "history", 0, "print the last N journal records and exit (needs --journal)")
	fs.BoolVar(&opts.initScene, "init", false, "write a sample scene file and exit")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, opts, err
		}
		cfg = loaded
	}

	// Only flags given explicitly override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = *scenePath
		case "demo":
			cfg.Demo = *demo
		case "refresh":
			cfg.Refresh = *refresh
		case "precision":
			cfg.Precision = *precision
		case "verbosity":
			cfg.Verbosity = *verbosity
		case "log":
			cfg.LogFile = *logFile
		case "journal":
			cfg.Journal = *journalPath
		case "mouse":
			cfg.MouseVisible = *mouse
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

// host bundles the provider and sink the overlay talks to.
type host struct {
	provider     scene.Provider
	sink         control.Sink
	label        string
	scenePath    string
	logDir       string
	mouseVisible bool

	files   *datasource.FileProvider
	watcher *datasource.Watcher
	closers []func()
}

func (h *host) close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		h.closers[i]()
	}
	h.closers = nil
}

// closeLast registers f to run after every other closer.
func (h *host) closeLast(f func()) {
	h.closers = append([]func(){f}, h.closers...)
}

func openHost(cfg *config.Config) (*host, error) {
	if cfg.Demo {
		world := sim.NewDemo()
		world.SetMouseVisible(cfg.MouseVisible)
		stop := make(chan struct{})
		go world.RunSimulation(stop)
		return &host{
			provider:     world,
			sink:         world,
			label:        "demo",
			logDir:       ".",
			mouseVisible: cfg.MouseVisible,
			closers:      []func(){func() { close(stop) }},
		}, nil
	}

	if cfg.Scene != "" {
		os.Setenv(datasource.EnvScene, cfg.Scene)
	}
	files, path, err := datasource.Open()
	if err != nil {
		return nil, err
	}
	ctl, err := datasource.OpenControlFile(datasource.ControlPath(path))
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	h := &host{
		provider:     files,
		sink:         ctl,
		label:        path,
		scenePath:    path,
		logDir:       filepath.Dir(path),
		mouseVisible: ctl.State().MouseVisible,
		files:        files,
	}
	return h, nil
}

// watch starts the scene watcher for file hosts. Demo hosts have nothing
// to watch.
func (h *host) watch(logger *slog.Logger) error {
	if h.scenePath == "" {
		return nil
	}
	w, err := datasource.NewWatcher(h.scenePath, datasource.WithLogger(logger.With("component", "watch")))
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	h.watcher = w
	h.closers = append(h.closers, func() { w.Close() })
	return nil
}

// openLogger builds the session logger: JSON records to an append-only log
// file, teed into the SQLite journal when one is configured. Every record
// carries the session id.
func openLogger(cfg *config.Config, logDir string) (*slog.Logger, func(), error) {
	path := cfg.LogFile
	if path == "" {
		path = filepath.Join(logDir, "sv.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	var handler slog.Handler = slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
	closers := []func(){func() { f.Close() }}

	sessionID := uuid.NewString()
	if cfg.Journal != "" {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		sessionID = store.Session()
		handler = journal.Tee(handler, journal.NewHandler(store, slog.LevelInfo))
		closers = append(closers, func() { store.Close() })
	}

	logger := slog.New(handler).With("session", sessionID)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return logger, closeAll, nil
}

func printHistory(w io.Writer, path string, n int) error {
	if path == "" {
		return errors.New("--history needs --journal (or journal in the config file)")
	}
	store, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entries, err := store.Recent(ctx, n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s %-5s %-8s %s %s\n",
			e.Timestamp.Format(time.RFC3339), e.Level, shortSession(e.Session), e.Message, e.Attrs)
	}
	return nil
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeSampleScene writes the demo scene to path, or .sv/scene.yaml when
// path is empty. An existing file is never overwritten.
func writeSampleScene(path string) (string, error) {
	if path == "" {
		path = filepath.Join(".sv", "scene.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if err := datasource.Encode(f, sim.DemoScene()); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// buildJSONOutput converts a snapshot into the JSON output structure.
func buildJSONOutput(snap *snapshot.SceneSnapshot) jsonOutput {
	entities := make([]jsonEntity, len(snap.Entities))
	for i, ev := range snap.Entities {
		panels := make([]jsonPanel, len(ev.Panels))
		for j, p := range ev.Panels {
			rows := make([]string, len(p.Rows))
			for k, r := range p.Rows {
				rows[k] = r.String()
			}
			panels[j] = jsonPanel{Category: p.Category.String(), Rows: rows}
		}
		var faults []string
		for _, err := range ev.Faults {
			faults = append(faults, err.Error())
		}
		entities[i] = jsonEntity{ID: ev.ID, Panels: panels, Faults: faults}
	}

	return jsonOutput{
		Entities: entities,
		Stats: jsonStats{
			TotalEntities:  snap.TotalEntities,
			PhysicsEnabled: snap.PhysicsEnabled,
			WithTransform:  snap.WithTransform,
			Dropped:        snap.Dropped,
			Faults:         snap.Faults,
		},
		BuiltAt: snap.BuiltAt.Format(time.RFC3339),
	}
}
