package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/guide"
	"github.com/csheth/logopreview/internal/preview"
)

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	taglineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("147")).Italic(true)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	tabStyle           = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#e0def4"))
	activeTabStyle     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166"))
	focusStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166"))
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(0, 2)
	downloadStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
)

func (m *model) View() string {
	parts := []string{
		m.headerView(),
		m.payloadView(),
		m.controlsView(),
		m.previewView(),
		m.downloadView(),
		m.statusView(),
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	} else {
		parts = append(parts, helperStyle.Render("? help • q quit"))
	}
	return joinNonEmpty(parts)
}

func (m *model) headerView() string {
	current := m.engine.State().Mode
	tabs := make([]string, 0, 3)
	for i, mode := range []editor.Mode{editor.ModeImage, editor.ModeText, editor.ModeCard} {
		label := fmt.Sprintf("%d %s", i+1, modeTitle(mode))
		if mode == current {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	title := lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("logopreview"), "  ", strings.Join(tabs, " "))
	return lipgloss.JoinVertical(lipgloss.Left, title, taglineStyle.Render(heroTagline))
}

func (m *model) payloadView() string {
	state := m.engine.State()
	if state.Mode == editor.ModeText {
		label := sectionHeaderStyle.Render("Text ")
		hint := "i to edit"
		if m.input == inputText {
			hint = "enter to render • esc to stop editing"
		}
		return label + m.textInput.View() + "\n" + helperStyle.Render(hint)
	}

	label := "Logo "
	if state.Mode == editor.ModeCard {
		label = "Card logo "
	}
	if m.input == inputPath {
		return sectionHeaderStyle.Render(label) + m.pathInput.View() + "\n" +
			helperStyle.Render("enter to select • esc to cancel")
	}
	file := state.ActiveFile()
	if file == nil {
		return sectionHeaderStyle.Render(label) + helperStyle.Render("none selected (o to choose)")
	}
	info := fmt.Sprintf("%s  %s  %s", file.Name, file.MIME, humanSize(len(file.Data)))
	if m.watcher != nil {
		info += "  (watching)"
	}
	return sectionHeaderStyle.Render(label) + info
}

func (m *model) controlsView() string {
	view := m.engine.View()
	if !view.ControlsVisible {
		return helperStyle.Render("Adjustments appear after the first render.")
	}
	state := m.engine.State()
	limits := m.engine.Limits()
	rows := make([]string, 0, len(editor.Controls))
	for _, c := range editor.Controls {
		lo, hi, _ := limits.Bounds(c)
		marker := "  "
		name := fmt.Sprintf("%-10s", controlLabel(c))
		if c == m.focus {
			marker = focusStyle.Render("▸ ")
			name = focusStyle.Render(name)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s", marker, name, sliderBar(state.Value(c), lo, hi, barWidth), controlValue(state, c)))
	}
	return strings.Join(rows, "\n")
}

func controlLabel(c editor.Control) string {
	switch c {
	case editor.ControlVertical:
		return "Vertical"
	case editor.ControlScale:
		return "Scale"
	default:
		return "Horizontal"
	}
}

func controlValue(s editor.State, c editor.Control) string {
	switch c {
	case editor.ControlVertical:
		return fmt.Sprintf("%d px", s.Vertical)
	case editor.ControlScale:
		return fmt.Sprintf("%d%%", s.ScalePercent())
	default:
		return fmt.Sprintf("%d px", s.Horizontal)
	}
}

func (m *model) previewView() string {
	view := m.engine.View()
	width := m.layout.previewWidth
	switch view.Phase {
	case preview.PhaseLoading:
		return fmt.Sprintf("%s Rendering preview…", m.spinner.View())
	case preview.PhaseError:
		return errorStyle.Render(wordwrap.String(view.Error, width))
	case preview.PhaseReady:
		if !view.GuidesVisible || m.thumb == nil {
			return fmt.Sprintf("%s Loading %s…", m.spinner.View(), view.Artifact)
		}
		if len(m.thumb.Lines) == 0 {
			return helperStyle.Render(fmt.Sprintf("%s rendered; it cannot be drawn in the terminal. Press b to open it.", view.Artifact))
		}
		box := guide.Fit(m.thumb.Cols, m.thumb.Rows*2, m.layout.previewWidth, m.layout.previewHeight, guide.DefaultCellAspect)
		return guide.Frame(box, m.thumb.String())
	default:
		return helperStyle.Render(wordwrap.String(idleHint(m.engine.State().Mode), width))
	}
}

func idleHint(mode editor.Mode) string {
	switch mode {
	case editor.ModeText:
		return "Type some text and press enter to render it."
	case editor.ModeCard:
		return "Choose a logo and press enter to render it on the card."
	default:
		return "Choose a logo and press enter to render it."
	}
}

func (m *model) downloadView() string {
	url, ok := m.downloadURL()
	if !ok {
		return ""
	}
	return downloadStyle.Render("d export • y copy URL • b open") + " " + helperStyle.Render(url)
}

func (m *model) statusView() string {
	if m.statusMessage == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return errorStyle.Render(m.statusMessage)
	case statusSuccess:
		return successStyle.Render("✓ " + m.statusMessage)
	default:
		return helperStyle.Render(m.statusMessage)
	}
}

type keyHint struct {
	Key         string
	Description string
}

var keyHints = []keyHint{
	{"1/2/3", "Image, Text or Card mode"},
	{"o", "Choose logo file"},
	{"i", "Edit logo text"},
	{"enter", "Render now"},
	{"tab", "Focus next slider"},
	{"←/→", "Drag focused slider"},
	{"home/end", "Slider minimum or maximum"},
	{"h/l", "Nudge horizontal"},
	{"j/k", "Nudge vertical"},
	{"-/+", "Nudge scale"},
	{"d", "Export artifact and manifest"},
	{"y", "Copy download URL"},
	{"b", "Open download in browser"},
	{"q", "Quit"},
}

func (m *model) helpView() string {
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 2
	for i := 0; i < len(keyHints); i += columns {
		end := min(i+columns, len(keyHints))
		var cells []string
		for _, hint := range keyHints[i:end] {
			cell := lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(hint.Key), keyDescStyle.Render(" "+hint.Description))
			cells = append(cells, lipgloss.NewStyle().Width(38).Render(cell))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	rows = append(rows, helperStyle.Render("Edits render after a short pause; the preview always shows the latest edit."))
	return helpBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
