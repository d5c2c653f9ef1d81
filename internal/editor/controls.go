package editor

import "math"

// IntRange bounds an integer slider.
type IntRange struct {
	Min  int
	Max  int
	Step int
}

// Clamp saturates v to the range.
func (r IntRange) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// ScaleRange bounds the scale slider.
type ScaleRange struct {
	Min  float64
	Max  float64
	Step float64
}

// Clamp saturates v to the range.
func (r ScaleRange) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Limits holds the slider ranges for all controls.
type Limits struct {
	Horizontal IntRange
	Vertical   IntRange
	Scale      ScaleRange
}

// DefaultLimits mirrors the ranges of the web form.
func DefaultLimits() Limits {
	return Limits{
		Horizontal: IntRange{Min: -500, Max: 500, Step: 10},
		Vertical:   IntRange{Min: -500, Max: 500, Step: 10},
		Scale:      ScaleRange{Min: 0.2, Max: 3.0, Step: 0.05},
	}
}

// Bounds returns min, max and step of a control as floats.
func (l Limits) Bounds(c Control) (float64, float64, float64) {
	switch c {
	case ControlVertical:
		return float64(l.Vertical.Min), float64(l.Vertical.Max), float64(l.Vertical.Step)
	case ControlScale:
		return l.Scale.Min, l.Scale.Max, l.Scale.Step
	default:
		return float64(l.Horizontal.Min), float64(l.Horizontal.Max), float64(l.Horizontal.Step)
	}
}

// Slide sets a control to an absolute value, as a slider drag does.
func Slide(s State, limits Limits, c Control, value float64) State {
	switch c {
	case ControlHorizontal:
		s.Horizontal = limits.Horizontal.Clamp(int(math.Round(value)))
	case ControlVertical:
		s.Vertical = limits.Vertical.Clamp(int(math.Round(value)))
	case ControlScale:
		s.Scale = limits.Scale.Clamp(roundScale(value))
	}
	s.LastChanged = c.Axis()
	return s
}

// Nudge moves a control by delta steps and saturates at the range bounds.
func Nudge(s State, limits Limits, c Control, delta int) State {
	switch c {
	case ControlHorizontal:
		s.Horizontal = limits.Horizontal.Clamp(s.Horizontal + delta*limits.Horizontal.Step)
	case ControlVertical:
		s.Vertical = limits.Vertical.Clamp(s.Vertical + delta*limits.Vertical.Step)
	case ControlScale:
		next := s.Scale + float64(delta)*limits.Scale.Step
		s.Scale = limits.Scale.Clamp(roundScale(next))
	}
	s.LastChanged = c.Axis()
	return s
}

// roundScale keeps two decimals so repeated nudges do not drift.
func roundScale(v float64) float64 {
	return math.Round(v*100) / 100
}
