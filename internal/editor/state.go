package editor

import (
	"math"
	"strings"
	"time"
)

// Mode selects which kind of logo the render service produces.
type Mode int

const (
	ModeImage Mode = iota
	ModeText
	ModeCard
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeCard:
		return "card"
	default:
		return "image"
	}
}

// FormType is the value of the `type` form field. Card requests carry no type.
func (m Mode) FormType() string {
	switch m {
	case ModeImage:
		return "image"
	case ModeText:
		return "text"
	default:
		return ""
	}
}

// ParseMode maps a CLI or config value to a Mode.
func ParseMode(value string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "image":
		return ModeImage, true
	case "text":
		return ModeText, true
	case "card":
		return ModeCard, true
	default:
		return ModeImage, false
	}
}

// Axis records which control moved last.
type Axis int

const (
	AxisNone Axis = iota
	AxisPosition
	AxisScale
)

// Override returns the wire value of the override hint.
func (a Axis) Override() string {
	switch a {
	case AxisPosition:
		return "pos"
	case AxisScale:
		return "scale"
	default:
		return ""
	}
}

// ParseAxis accepts the wire values "pos" and "scale".
func ParseAxis(value string) (Axis, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return AxisNone, true
	case "pos", "position":
		return AxisPosition, true
	case "scale":
		return AxisScale, true
	default:
		return AxisNone, false
	}
}

// Control identifies one of the three adjustable parameters.
type Control int

const (
	ControlHorizontal Control = iota
	ControlVertical
	ControlScale
)

// Controls lists the sliders in display order.
var Controls = []Control{ControlHorizontal, ControlVertical, ControlScale}

func (c Control) String() string {
	switch c {
	case ControlVertical:
		return "vertical"
	case ControlScale:
		return "scale"
	default:
		return "horizontal"
	}
}

// Axis reports which override hint the control produces.
func (c Control) Axis() Axis {
	if c == ControlScale {
		return AxisScale
	}
	return AxisPosition
}

// File is an uploaded logo held in memory until dispatch.
type File struct {
	Name    string
	Path    string
	MIME    string
	Data    []byte
	ModTime time.Time
}

// State is the single record of the editor's mode and parameters.
type State struct {
	Mode        Mode
	Horizontal  int
	Vertical    int
	Scale       float64
	LastChanged Axis

	Image *File
	Card  *File
	Text  string

	Artifact   string
	Generation uint64
}

// New returns the session's initial state.
func New() State {
	return State{
		Mode:  ModeImage,
		Scale: 1.0,
	}
}

// HasPayload reports whether the active mode has something to render.
func (s State) HasPayload() bool {
	switch s.Mode {
	case ModeImage:
		return s.Image != nil
	case ModeCard:
		return s.Card != nil
	default:
		return strings.TrimSpace(s.Text) != ""
	}
}

// ActiveFile returns the file payload of the active mode, if any.
func (s State) ActiveFile() *File {
	switch s.Mode {
	case ModeImage:
		return s.Image
	case ModeCard:
		return s.Card
	default:
		return nil
	}
}

// ScalePercent is the scale shown to the user.
func (s State) ScalePercent() int {
	return int(math.Round(s.Scale * 100))
}

// Value returns the current value of a control as a float.
func (s State) Value(c Control) float64 {
	switch c {
	case ControlVertical:
		return float64(s.Vertical)
	case ControlScale:
		return s.Scale
	default:
		return float64(s.Horizontal)
	}
}
