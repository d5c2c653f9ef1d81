package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minPaneWidth      = 24
	minPaneHeight     = 6
	horizontalPadding = 4
	// chromeHeight counts the lines drawn around the preview pane.
	chromeHeight = 14
	barWidth     = 30
)

type pageLayout struct {
	windowWidth   int
	windowHeight  int
	previewWidth  int
	previewHeight int
	inputWidth    int
}

func newPageLayout() pageLayout {
	return pageLayout{
		previewWidth:  60,
		previewHeight: 16,
		inputWidth:    60,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	l.previewWidth = max(width-horizontalPadding, minPaneWidth)
	l.previewHeight = max(height-chromeHeight, minPaneHeight)
	l.inputWidth = max(min(width-horizontalPadding-12, 80), 20)
}

// thumbSize is the cell area left inside the guide frame.
func (l pageLayout) thumbSize() (int, int) {
	return l.previewWidth - 2, l.previewHeight - 2
}

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barKnobStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

// sliderBar draws value within [lo, hi] as a track of width cells with a knob.
func sliderBar(value, lo, hi float64, width int) string {
	if width < 1 {
		return ""
	}
	pos := 0
	if hi > lo {
		frac := (value - lo) / (hi - lo)
		frac = math.Max(0, math.Min(1, frac))
		pos = int(math.Round(frac * float64(width-1)))
	}
	return barFilledStyle.Render(strings.Repeat("━", pos)) +
		barKnobStyle.Render("●") +
		barEmptyStyle.Render(strings.Repeat("─", width-pos-1))
}
