package main

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/scene_viewer/internal/control"
	"github.com/daviddao/scene_viewer/internal/datasource"
	"github.com/daviddao/scene_viewer/internal/fault"
	"github.com/daviddao/scene_viewer/internal/inspector"
	"github.com/daviddao/scene_viewer/internal/present"
	"github.com/daviddao/scene_viewer/internal/scene"
)

// --- Messages ---

type tickMsg struct{}

type sceneChangedMsg struct{}

type sceneLoadedMsg struct {
	entities []scene.Entity
	err      error
}

// --- Key bindings ---

type keyMap struct {
	Quit      key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Esc       key.Binding
	Search    key.Binding
	NextPanel key.Binding
	PrevPanel key.Binding
	FPS       key.Binding
	Speed     key.Binding
	Pause     key.Binding
	Play      key.Binding
	Step      key.Binding
	Mouse     key.Binding
	Physics   key.Binding
	Refresh   key.Binding
	Help      key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select entity")),
	Esc:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	NextPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
	PrevPanel: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel")),
	FPS:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "set fps")),
	Speed:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "set speed")),
	Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Play:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "play")),
	Step:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "step frame")),
	Mouse:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle mouse")),
	Physics:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "physics viz")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// panelKeys maps single keys to panels for fast navigation.
var panelKeys = map[string]present.Category{
	"1": present.Physics,
	"2": present.Properties,
	"3": present.Transform,
	"4": present.Materials,
	"5": present.Animation,
	"6": present.Sensors,
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Search, k.NextPanel, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Esc, k.Search},
		{k.NextPanel, k.PrevPanel, k.Refresh, k.Help, k.Quit},
		{k.FPS, k.Speed, k.Pause, k.Play},
		{k.Step, k.Mouse, k.Physics},
	}
}

// contextHelp returns help text appropriate for the current focus.
func contextHelp(f focusID) string {
	switch f {
	case focusSearch:
		return "type to filter | enter: keep | esc: clear"
	case focusFPS, focusSpeed:
		return "enter: apply | esc: cancel"
	default:
		return "j/k: move | enter: select | /: search | tab/1-6: panels | f/s: fps/speed | p/g/n: pause/play/step | ?: help | q: quit"
	}
}

// --- Focus ---

type focusID int

const (
	focusList focusID = iota
	focusSearch
	focusFPS
	focusSpeed
)

// Defaults shown in the control inputs.
const (
	defaultFPSText   = "60"
	defaultSpeedText = "1.0"
)

// --- Model ---

type uiModel struct {
	session    *inspector.Session
	dispatcher *control.Dispatcher
	reporter   *fault.Reporter
	files      *datasource.FileProvider // nil unless a scene file is watched
	logger     *slog.Logger
	source     string
	scenePath  string

	display         inspector.Display
	cursor          int
	activePanel     present.Category
	focus           focusID
	refreshInterval time.Duration

	search textinput.Model
	fps    textinput.Model
	speed  textinput.Model

	width    int
	height   int
	help     help.Model
	showHelp bool

	lastRefresh time.Time
}

func newModel(s *inspector.Session, d *control.Dispatcher, r *fault.Reporter, source string) uiModel {
	search := textinput.New()
	search.Placeholder = "search entities"
	search.Prompt = "/ "
	search.CharLimit = 64
	search.Width = 24

	fps := textinput.New()
	fps.Prompt = "FPS: "
	fps.CharLimit = 8
	fps.Width = 8
	fps.SetValue(defaultFPSText)

	speed := textinput.New()
	speed.Prompt = "Speed: "
	speed.CharLimit = 8
	speed.Width = 8
	speed.SetValue(defaultSpeedText)

	return uiModel{
		session:         s,
		dispatcher:      d,
		reporter:        r,
		logger:          slog.Default(),
		source:          source,
		display:         s.Display(),
		refreshInterval: inspector.DefaultInterval,
		search:          search,
		fps:             fps,
		speed:           speed,
		help:            help.New(),
		lastRefresh:     time.Now(),
	}
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(
		tickEvery(m.refreshInterval),
	)
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m uiModel) quit() (tea.Model, tea.Cmd) {
	m.session.Stop()
	return m, tea.Quit
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		// A pending notice is modal until dismissed.
		if _, ok := m.reporter.Pending(); ok {
			if key.Matches(msg, keys.Esc, keys.Enter) {
				m.reporter.Dismiss()
			}
			return m, nil
		}

		if key.Matches(msg, keys.Quit) && m.focus == focusList {
			return m.quit()
		}

		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusFPS, focusSpeed:
			return m.updateControlInput(msg)
		}
		return m.updateList(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.refresh()
		return m, tickEvery(m.refreshInterval)

	case sceneChangedMsg:
		return m, m.reloadScene()

	case sceneLoadedMsg:
		if msg.err != nil {
			m.reporter.Report("Error reloading scene", fault.New(fault.SnapshotAccess, "load "+m.scenePath, msg.err))
			return m, nil
		}
		if m.files != nil {
			m.files.Install(msg.entities)
			m.logger.Info("scene reloaded", "path", m.scenePath, "entities", len(msg.entities))
		}
		m.refresh()
	}

	return m, nil
}

func (m uiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if c, ok := panelKeys[msg.String()]; ok {
		m.activePanel = c
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.display.Entries)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Enter):
		if m.cursor >= 0 && m.cursor < len(m.display.Entries) {
			m.display = m.session.Select(m.display.Entries[m.cursor])
			m.syncCursor()
		}

	case key.Matches(msg, keys.Esc):
		m.display = m.session.ClearSelection()

	case key.Matches(msg, keys.NextPanel):
		m.activePanel = (m.activePanel + 1) % present.Category(len(present.Categories))

	case key.Matches(msg, keys.PrevPanel):
		n := present.Category(len(present.Categories))
		m.activePanel = (m.activePanel + n - 1) % n

	case key.Matches(msg, keys.Search):
		m.focus = focusSearch
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, keys.FPS):
		m.focus = focusFPS
		m.fps.CursorEnd()
		cmd := m.fps.Focus()
		return m, cmd

	case key.Matches(msg, keys.Speed):
		m.focus = focusSpeed
		m.speed.CursorEnd()
		cmd := m.speed.Focus()
		return m, cmd

	case key.Matches(msg, keys.Pause):
		m.dispatch(control.Pause)

	case key.Matches(msg, keys.Play):
		m.dispatch(control.Play)

	case key.Matches(msg, keys.Step):
		m.dispatch(control.StepFrame)

	case key.Matches(msg, keys.Mouse):
		m.dispatch(control.ToggleMouseVisibility)

	case key.Matches(msg, keys.Physics):
		m.dispatch(control.TogglePhysicsVisualization)

	case key.Matches(msg, keys.Refresh):
		m.refresh()

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// updateSearch feeds keys to the search box and refilters on every edit.
// Filtering never polls the host.
func (m uiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		m.focus = focusList
		m.search.Blur()
		return m, nil
	case key.Matches(msg, keys.Esc):
		m.focus = focusList
		m.search.Blur()
		m.search.SetValue("")
		m.display = m.session.SetFilter("")
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.session.Filter() {
		m.display = m.session.SetFilter(m.search.Value())
		m.clampCursor()
	}
	return m, cmd
}

// updateControlInput edits the frame-rate or time-scale box; enter submits
// the text as typed, esc restores the default.
func (m uiModel) updateControlInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	input, kind, def := &m.fps, control.SetFrameRate, defaultFPSText
	if m.focus == focusSpeed {
		input, kind, def = &m.speed, control.SetTimeScale, defaultSpeedText
	}

	switch {
	case key.Matches(msg, keys.Enter):
		m.focus = focusList
		input.Blur()
		m.dispatcher.Submit(kind, input.Value())
		return m, nil
	case key.Matches(msg, keys.Esc):
		m.focus = focusList
		input.Blur()
		input.SetValue(def)
		return m, nil
	}

	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return m, cmd
}

func (m *uiModel) dispatch(kind control.Kind) {
	// Commands without an argument cannot fail to parse.
	cmd, _ := control.Parse(kind, "")
	m.dispatcher.Dispatch(cmd)
}

// refresh runs one inspector tick inline.
func (m *uiModel) refresh() {
	m.display = m.session.Tick()
	m.lastRefresh = time.Now()
	m.clampCursor()
}

func (m uiModel) reloadScene() tea.Cmd {
	path := m.scenePath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entities, err := datasource.Load(path)
		return sceneLoadedMsg{entities: entities, err: err}
	}
}

// syncCursor moves the cursor onto the selected entity when it is listed.
func (m *uiModel) syncCursor() {
	for i, id := range m.display.Entries {
		if id == m.display.Selected {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

// clampCursor keeps the cursor inside the list after it shrinks.
func (m *uiModel) clampCursor() {
	if len(m.display.Entries) == 0 {
		m.cursor = 0
	} else if m.cursor >= len(m.display.Entries) {
		m.cursor = len(m.display.Entries) - 1
	}
}
