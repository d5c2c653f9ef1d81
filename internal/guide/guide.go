// Package guide lays out the alignment guides drawn around a rendered
// artifact: the artifact is fitted and centred in the preview pane, and a
// frame with centre marks surrounds it.
package guide

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultCellAspect is the height of a terminal cell divided by its width.
const DefaultCellAspect = 2.0

// Box is the area an artifact occupies inside a pane, in cells. Left and Top
// are measured from the pane origin and leave one cell for the frame.
type Box struct {
	Width  int
	Height int
	Left   int
	Top    int
}

// Empty reports whether there is no room to draw.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

var frameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

// Fit returns the largest box with the image's aspect ratio that fits in a
// paneW x paneH pane together with its frame, centred.
func Fit(imgW, imgH, paneW, paneH int, cellAspect float64) Box {
	innerW, innerH := paneW-2, paneH-2
	if imgW <= 0 || imgH <= 0 || innerW <= 0 || innerH <= 0 {
		return Box{}
	}
	if cellAspect <= 0 {
		cellAspect = DefaultCellAspect
	}
	ratio := float64(imgH) / float64(imgW) / cellAspect

	w := innerW
	h := int(float64(w)*ratio + 0.5)
	if h > innerH {
		h = innerH
		w = int(float64(h)/ratio + 0.5)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w > innerW {
		w = innerW
	}
	return Box{
		Width:  w,
		Height: h,
		Left:   1 + (innerW-w)/2,
		Top:    1 + (innerH-h)/2,
	}
}

// Frame draws the guides around body and offsets the result by the box
// position. Body lines are padded or cut to the box size.
func Frame(box Box, body string) string {
	if box.Empty() {
		return body
	}
	lines := strings.Split(body, "\n")
	midRow := box.Height / 2
	half := box.Width / 2

	indent := strings.Repeat(" ", max(box.Left-1, 0))
	var out []string
	for i := 0; i < box.Top-1; i++ {
		out = append(out, "")
	}
	out = append(out, indent+frameStyle.Render(edge("┌", "┬", "┐", half, box.Width)))
	for row := 0; row < box.Height; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		left, right := "│", "│"
		if row == midRow {
			left, right = "├", "┤"
		}
		out = append(out, indent+frameStyle.Render(left)+fit(line, box.Width)+frameStyle.Render(right))
	}
	out = append(out, indent+frameStyle.Render(edge("└", "┴", "┘", half, box.Width)))
	return strings.Join(out, "\n")
}

func edge(start, mark, end string, half, width int) string {
	return start + strings.Repeat("─", half) + mark + strings.Repeat("─", max(width-half-1, 0)) + end
}

// fit pads or truncates a styled line to exactly width cells.
func fit(line string, width int) string {
	w := lipgloss.Width(line)
	if w < width {
		return line + strings.Repeat(" ", width-w)
	}
	if w > width {
		return lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}
