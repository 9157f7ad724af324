package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/daviddao/scene_viewer/internal/fault"
	"github.com/daviddao/scene_viewer/internal/present"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086")).
				Background(lipgloss.Color("#313244")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	entityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAB387"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F38BA8")).
			Padding(1, 2)

	noticeTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F38BA8")).
				Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

// --- View rendering ---

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Title bar.
	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')
	b.WriteRune('\n')

	// Content area.
	contentHeight := m.height - 6 // title + controls + status + padding
	if m.showHelp {
		contentHeight -= 4
	}

	var content string
	if n, ok := m.reporter.Pending(); ok {
		content = lipgloss.Place(m.width, max(contentHeight, 1), lipgloss.Center, lipgloss.Center, renderNotice(n, m.width))
	} else {
		leftWidth := min(32, m.width/3)
		rightWidth := m.width - leftWidth - 3 // 3 for separator
		content = renderSplitPane(m.renderEntityList(contentHeight), m.renderPanels(), leftWidth, rightWidth, contentHeight)
	}

	b.WriteString(content)

	// Pad to fill screen.
	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-3 {
		b.WriteRune('\n')
		rendered++
	}

	b.WriteString(m.renderControls())
	b.WriteRune('\n')

	// Help / status bar.
	if m.showHelp {
		b.WriteString(m.help.View(keys))
	} else {
		b.WriteString(m.renderStatusBar())
	}

	return clipLines(b.String(), m.width)
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("scene viewer")
	mouse := "hidden"
	if m.dispatcher.MouseVisible() {
		mouse = "visible"
	}
	stats := dimStyle.Render(fmt.Sprintf(
		"%d entities | %s | mouse %s | %d faults",
		m.display.Total,
		m.source,
		mouse,
		m.reporter.Reported(),
	))
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)-2))
	return title + gap + stats
}

func (m uiModel) renderEntityList(height int) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Entities"))
	b.WriteRune('\n')
	if m.focus == focusSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteRune('\n')
	}

	entries := m.display.Entries
	if len(entries) == 0 {
		if m.session.Filter() != "" {
			b.WriteString(dimStyle.Render("  (no matches)"))
		} else {
			b.WriteString(dimStyle.Render("  (no entities)"))
		}
		b.WriteRune('\n')
		return b.String()
	}

	// Keep the cursor visible in long lists.
	rows := max(1, height-3)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(len(entries), start+rows)

	for i := start; i < end; i++ {
		id := entries[i]
		cursor := "  "
		if i == m.cursor && m.focus == focusList {
			cursor = "> "
		}
		marker := " "
		style := entityStyle
		if id == m.display.Selected {
			marker = "*"
			style = selectedStyle
		}
		b.WriteString(style.Render(cursor + marker + id))
		b.WriteRune('\n')
	}
	if end < len(entries) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(entries)-end)))
		b.WriteRune('\n')
	}
	return b.String()
}

func (m uiModel) renderTabBar() string {
	var tabs []string
	for i, c := range present.Categories {
		label := fmt.Sprintf("%d %s", i+1, c)
		if c == m.activePanel {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m uiModel) renderPanels() string {
	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteString("\n\n")

	if m.display.Selected != "" {
		b.WriteString(headerStyle.Render(m.display.Selected))
	} else {
		b.WriteString(dimStyle.Render("(none)"))
	}
	b.WriteRune('\n')

	for _, p := range m.display.Panels {
		if p.Category != m.activePanel {
			continue
		}
		if len(p.Rows) == 0 {
			b.WriteString(dimStyle.Render("  (no properties)"))
			b.WriteRune('\n')
		}
		for _, r := range p.Rows {
			if r.Placeholder {
				b.WriteString(dimStyle.Render("  " + r.Value))
			} else {
				b.WriteString("  " + labelStyle.Render(r.Label+":") + " " + r.Value)
			}
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m uiModel) renderControls() string {
	parts := []string{
		m.fps.View(),
		m.speed.View(),
		dimStyle.Render("p pause  g play  n step  m mouse  v physics"),
	}
	return strings.Join(parts, "   ")
}

func (m uiModel) renderStatusBar() string {
	ago := time.Since(m.lastRefresh).Truncate(time.Second)
	left := fmt.Sprintf(" %s", contextHelp(m.focus))
	right := fmt.Sprintf("refreshed %s ago ", shortDuration(ago))
	gap := strings.Repeat(" ", max(0, m.width-len(left)-len(right)))
	return statusBarStyle.Render(left + gap + right)
}

// renderNotice draws the modal shown for the most recent fault.
func renderNotice(n fault.Notice, width int) string {
	body := n.Context + "\n\n" + n.Message
	inner := max(20, min(60, width-8))
	lines := ansi.Wordwrap(body, inner, "")
	return noticeStyle.Render(
		noticeTitleStyle.Render(n.Title()) + "\n\n" + lines + "\n\n" + dimStyle.Render("esc / enter: dismiss"),
	)
}

// --- Layout ---

// renderSplitPane joins the entity list and the panels side by side. Both
// panes are clipped and padded to exactly height lines.
func renderSplitPane(left, right string, leftWidth, rightWidth, height int) string {
	height = max(height, 1)
	pane := func(content string, width int) string {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			MaxHeight(height).
			Render(clipLines(strings.TrimSuffix(content, "\n"), width))
	}
	sep := dimStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", height), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, pane(left, leftWidth), " ", sep, " ", pane(right, rightWidth)) + "\n"
}

// clipLines cuts every line to width cells, keeping ANSI styling intact, so
// the terminal never wraps after a resize.
func clipLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = ansi.Truncate(lines[i], width, "")
	}
	return strings.Join(lines, "\n")
}

func shortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
