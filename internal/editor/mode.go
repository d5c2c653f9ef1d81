package editor

// SwitchMode moves the editor to mode and performs the reset protocol.
// Selecting the active mode is a no-op and reports false.
func SwitchMode(s State, mode Mode) (State, bool) {
	if s.Mode == mode {
		return s, false
	}
	switch s.Mode {
	case ModeImage:
		s.Image = nil
	case ModeCard:
		s.Card = nil
	case ModeText:
		s.Text = ""
	}
	s.Artifact = ""
	s.Horizontal = 0
	s.Vertical = 0
	s.Scale = 1.0
	s.LastChanged = AxisNone
	s.Mode = mode
	return s, true
}

// SelectFile stores file as the payload of the active file mode.
func SelectFile(s State, file *File) State {
	switch s.Mode {
	case ModeImage:
		s.Image = file
	case ModeCard:
		s.Card = file
	}
	return s
}

// SetText replaces the text field. The field exists in every mode but only
// Text mode renders it.
func SetText(s State, text string) State {
	s.Text = text
	return s
}
