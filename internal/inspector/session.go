// Package inspector drives the poll/reconcile/present cycle for one
// inspector session.
//
// A Session owns the user-visible state that survives refreshes (current
// selection and search filter) and the display derived from the latest
// snapshot. All methods run on the single goroutine that drives the tick and
// handles user input; Session does no locking.
package inspector

import (
	"log/slog"
	"time"

	"github.com/daviddao/scene_viewer/internal/fault"
	"github.com/daviddao/scene_viewer/internal/format"
	"github.com/daviddao/scene_viewer/internal/present"
	"github.com/daviddao/scene_viewer/internal/reconcile"
	"github.com/daviddao/scene_viewer/internal/scene"
)

// DefaultInterval is the nominal refresh period.
const DefaultInterval = 500 * time.Millisecond

// Display is the derived view of one refresh: the filtered entity list and
// the panels for the selected entity.
type Display struct {
	Entries  []string
	Selected string
	Panels   []present.Panel
	Total    int
	BuiltAt  time.Time
	Tick     uint64
}

// Reporter receives every fault the session captures.
type Reporter interface {
	Report(context string, err error)
}

// Options configure a Session.
type Options struct {
	// Precision is the number of decimals shown for floats; zero shows
	// whole numbers and a negative value selects format.DefaultPrecision.
	Precision int
	Logger    *slog.Logger
	Now       func() time.Time
}

// Session is one inspector lifetime.
type Session struct {
	provider  scene.Provider
	reporter  Reporter
	logger    *slog.Logger
	precision int
	now       func() time.Time

	started   bool
	selection string
	filter    string
	snap      *scene.Snapshot
	display   Display
	ticks     uint64

	// A fault that persists across refreshes is one occurrence: it is
	// reported when it first appears and again only after it has cleared.
	outage  bool
	active  map[string]bool
	current map[string]bool
}

// New creates a stopped session reading from provider.
func New(provider scene.Provider, reporter Reporter, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Precision < 0 {
		opts.Precision = format.DefaultPrecision
	}
	s := &Session{
		provider:  provider,
		reporter:  reporter,
		logger:    opts.Logger,
		precision: opts.Precision,
		now:       opts.Now,
	}
	s.display = s.emptyDisplay()
	return s
}

// Start begins the session. It reports whether this call started it;
// repeated calls on a running session are no-ops.
func (s *Session) Start() bool {
	if s.started {
		return false
	}
	s.started = true
	s.logger.Info("inspector started")
	return true
}

// Started reports whether the session is running.
func (s *Session) Started() bool { return s.started }

// Stop ends the session and releases all display state. Stopping the tick
// source is enough to halt refreshes; Stop makes later Ticks no-ops.
func (s *Session) Stop() {
	if !s.started {
		return
	}
	s.started = false
	s.selection = ""
	s.filter = ""
	s.snap = nil
	s.display = s.emptyDisplay()
	s.outage = false
	s.active = nil
	s.logger.Info("inspector stopped", "ticks", s.ticks)
}

// Display returns the current display.
func (s *Session) Display() Display { return s.display }

// Selection returns the selected identifier, or "".
func (s *Session) Selection() string { return s.selection }

// Filter returns the active search text.
func (s *Session) Filter() string { return s.filter }

// Precision returns the decimal precision used by presenters.
func (s *Session) Precision() int { return s.precision }

// Tick runs one refresh: acquire a snapshot, reconcile the list and
// selection, then present the selected entity. Any fault is reported and the
// tick still completes with a consistent display.
func (s *Session) Tick() Display {
	if !s.started {
		return s.display
	}
	s.ticks++

	snap, err := s.acquire()
	if err != nil {
		if !s.outage {
			s.outage = true
			s.active = nil
			s.reporter.Report("Error updating object list", err)
		}
		s.clear()
		return s.display
	}
	if s.outage {
		s.outage = false
		s.logger.Info("scene available again", "tick", s.ticks)
	}
	s.snap = snap

	s.current = make(map[string]bool)
	if err := s.safeRebuild(); err != nil {
		s.reportOnce("Error refreshing properties", err)
		s.clear()
	}
	s.active, s.current = s.current, nil
	return s.display
}

// reportOnce reports err unless the same fault was already reported on the
// previous refresh.
func (s *Session) reportOnce(context string, err error) {
	key := context + "\x00" + err.Error()
	if s.current != nil {
		s.current[key] = true
	}
	if s.active[key] {
		return
	}
	if s.active == nil {
		s.active = make(map[string]bool)
	}
	s.active[key] = true
	s.reporter.Report(context, err)
}

// clear drops the snapshot and shows empty panels. The selection is kept so
// that it survives a transient outage; the next successful reconcile
// revalidates it.
func (s *Session) clear() {
	s.snap = nil
	s.display = s.emptyDisplay()
	s.display.Entries = []string{}
	s.display.Tick = s.ticks
}

func (s *Session) safeRebuild() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.FromPanic(fault.Presentation, "rebuild display", r)
		}
	}()
	s.rebuild()
	return nil
}

// acquire calls the provider, converting errors and panics into
// SnapshotAccess faults.
func (s *Session) acquire() (snap *scene.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fault.FromPanic(fault.SnapshotAccess, "list entities", r)
		}
	}()
	entities, err := s.provider.List()
	if err != nil {
		return nil, fault.New(fault.SnapshotAccess, "list entities", err)
	}
	return scene.NewSnapshot(entities, s.now()), nil
}

// rebuild recomputes the display from the current snapshot, filter and
// selection. The display is replaced wholesale.
func (s *Session) rebuild() {
	var entities []scene.Entity
	if s.snap != nil {
		entities = s.snap.Entities
	}
	res := reconcile.Reconcile(s.selection, s.filter, entities)
	if res.Dropped > 0 {
		s.reportOnce("Error updating object list",
			fault.Errorf(fault.Presentation, "reconcile", "dropped %d entities with missing or duplicate identifiers", res.Dropped))
	}
	if s.selection != "" && res.Selection == "" {
		s.logger.Info("selection cleared", "entity", s.selection)
	}
	s.selection = res.Selection

	d := Display{
		Entries:  res.Entries,
		Selected: res.Selection,
		Total:    s.snap.Len(),
		Tick:     s.ticks,
	}
	if s.snap != nil {
		d.BuiltAt = s.snap.BuiltAt
	}
	if e, ok := s.snap.Lookup(res.Selection); ok && res.Selection != "" {
		d.Panels = s.present(e)
	} else {
		d.Panels = present.Empty()
	}
	s.display = d
}

func (s *Session) present(e scene.Entity) []present.Panel {
	panels, errs := present.All(e, s.precision)
	for _, err := range errs {
		s.reportOnce("Error updating properties for object "+e.ID, err)
	}
	return panels
}

// SetFilter changes the search text and re-filters the current snapshot
// without polling the provider. Selection and panels are unaffected: the
// filter only decides which entries are listed.
func (s *Session) SetFilter(text string) Display {
	if text == s.filter {
		return s.display
	}
	s.filter = text
	if s.started && s.snap != nil {
		res := reconcile.Reconcile(s.selection, s.filter, s.snap.Entities)
		s.display.Entries = res.Entries
	}
	return s.display
}

// Select makes id the current selection and presents it immediately. An
// identifier the provider does not know is a SnapshotAccess fault and
// leaves the selection empty.
func (s *Session) Select(id string) Display {
	if !s.started {
		return s.display
	}
	e, ok, err := s.lookup(id)
	if err != nil {
		s.reporter.Report("Error selecting object "+id, err)
		return s.display
	}
	if !ok {
		s.selection = ""
		s.reporter.Report("Error selecting object "+id,
			fault.Errorf(fault.SnapshotAccess, "lookup", "entity %q not found", id))
		s.display.Selected = ""
		s.display.Panels = present.Empty()
		return s.display
	}
	s.selection = id
	s.logger.Info("selected object", "entity", id)
	s.display.Selected = id
	s.display.Panels = s.present(e)
	return s.display
}

// ClearSelection drops the current selection.
func (s *Session) ClearSelection() Display {
	s.selection = ""
	s.display.Selected = ""
	s.display.Panels = present.Empty()
	return s.display
}

func (s *Session) lookup(id string) (e scene.Entity, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.FromPanic(fault.SnapshotAccess, "lookup "+id, r)
		}
	}()
	e, ok, err = s.provider.Lookup(id)
	if err != nil {
		return scene.Entity{}, false, fault.New(fault.SnapshotAccess, "lookup "+id, err)
	}
	return e, ok, nil
}

func (s *Session) emptyDisplay() Display {
	return Display{Panels: present.Empty()}
}
