package editor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestNewStateDefaults(t *testing.T) {
	s := New()
	if s.Mode != ModeImage {
		t.Fatalf("initial mode = %v, want image", s.Mode)
	}
	if s.Horizontal != 0 || s.Vertical != 0 || s.Scale != 1.0 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.HasPayload() {
		t.Fatal("fresh state should have no payload")
	}
	if s.ScalePercent() != 100 {
		t.Fatalf("scale percent = %d, want 100", s.ScalePercent())
	}
}

func TestNudgeScaleSaturatesAtBounds(t *testing.T) {
	limits := DefaultLimits()
	s := New()
	for i := 0; i < 200; i++ {
		s = Nudge(s, limits, ControlScale, -1)
	}
	if s.Scale != limits.Scale.Min {
		t.Fatalf("scale = %v, want min %v", s.Scale, limits.Scale.Min)
	}
	for i := 0; i < 200; i++ {
		s = Nudge(s, limits, ControlScale, 1)
	}
	if s.Scale != limits.Scale.Max {
		t.Fatalf("scale = %v, want max %v", s.Scale, limits.Scale.Max)
	}
	if s.LastChanged != AxisScale {
		t.Fatalf("last changed = %v, want scale", s.LastChanged)
	}
}

func TestNudgeOffsetsUseStep(t *testing.T) {
	t.Parallel()

	limits := DefaultLimits()
	tests := []struct {
		name    string
		control Control
		deltas  []int
		wantH   int
		wantV   int
	}{
		{"right twice", ControlHorizontal, []int{1, 1}, 20, 0},
		{"up then down", ControlVertical, []int{-1, -1, 1}, 0, -10},
		{"saturates", ControlHorizontal, []int{1000}, 500, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New()
			for _, d := range tt.deltas {
				s = Nudge(s, limits, tt.control, d)
			}
			if s.Horizontal != tt.wantH || s.Vertical != tt.wantV {
				t.Fatalf("offsets = (%d,%d), want (%d,%d)", s.Horizontal, s.Vertical, tt.wantH, tt.wantV)
			}
			if s.LastChanged != AxisPosition {
				t.Fatalf("last changed = %v, want position", s.LastChanged)
			}
		})
	}
}

func TestNudgeScaleKeepsTwoDecimals(t *testing.T) {
	limits := DefaultLimits()
	s := New()
	for i := 0; i < 3; i++ {
		s = Nudge(s, limits, ControlScale, 1)
	}
	if s.Scale != 1.15 {
		t.Fatalf("scale = %v, want 1.15", s.Scale)
	}
	if s.ScalePercent() != 115 {
		t.Fatalf("percent = %d, want 115", s.ScalePercent())
	}
}

func TestSlideSetsAbsoluteValue(t *testing.T) {
	limits := DefaultLimits()
	s := Slide(New(), limits, ControlHorizontal, 50)
	if s.Horizontal != 50 || s.LastChanged != AxisPosition {
		t.Fatalf("unexpected state after slide: %+v", s)
	}
	s = Slide(s, limits, ControlScale, 9)
	if s.Scale != limits.Scale.Max || s.LastChanged != AxisScale {
		t.Fatalf("slide should clamp scale to max, got %+v", s)
	}
}

func TestSwitchModeResetsState(t *testing.T) {
	s := New()
	s.Image = &File{Name: "logo.png", MIME: "image/png"}
	s.Horizontal = 10
	s.Scale = 1.2
	s.Artifact = "processed_logo.jpg"
	s.LastChanged = AxisScale
	s.Generation = 4

	next, changed := SwitchMode(s, ModeText)
	if !changed {
		t.Fatal("switching to text should report a transition")
	}
	if next.Horizontal != 0 || next.Vertical != 0 || next.Scale != 1.0 {
		t.Fatalf("parameters not reset: %+v", next)
	}
	if next.Artifact != "" {
		t.Fatalf("artifact not cleared: %q", next.Artifact)
	}
	if next.Image != nil {
		t.Fatal("payload of the left mode should be cleared")
	}
	if next.LastChanged != AxisNone {
		t.Fatalf("axis not reset: %v", next.LastChanged)
	}
	if next.Generation != 4 {
		t.Fatalf("generation must survive mode switches, got %d", next.Generation)
	}
	if next.HasPayload() {
		t.Fatal("text mode with empty field has no payload")
	}
}

func TestSwitchModeToSelfIsNoop(t *testing.T) {
	s := New()
	s.Horizontal = 30
	next, changed := SwitchMode(s, ModeImage)
	if changed {
		t.Fatal("self transition should be a no-op")
	}
	if next.Horizontal != 30 {
		t.Fatalf("state changed on no-op: %+v", next)
	}
}

func TestSwitchModeKeepsTextWhenLeavingCard(t *testing.T) {
	s, _ := SwitchMode(New(), ModeCard)
	s = SetText(s, "ACME")
	s.Card = &File{Name: "card.png", MIME: "image/png"}
	next, _ := SwitchMode(s, ModeText)
	if next.Card != nil {
		t.Fatal("card payload should be cleared when leaving card mode")
	}
	if next.Text != "ACME" || !next.HasPayload() {
		t.Fatalf("text field should survive, got %q", next.Text)
	}
}

func TestSelectFileIgnoredInTextMode(t *testing.T) {
	s, _ := SwitchMode(New(), ModeText)
	s = SelectFile(s, &File{Name: "a.png"})
	if s.Image != nil || s.Card != nil {
		t.Fatal("text mode should not hold a file payload")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	text, _ := SwitchMode(New(), ModeText)
	card, _ := SwitchMode(New(), ModeCard)
	bad := New()
	bad.Image = &File{Name: "logo.bmp", MIME: "image/bmp"}

	tests := []struct {
		name  string
		state State
		want  error
	}{
		{"image without file", New(), ErrNoFile},
		{"card without file", card, ErrNoCardFile},
		{"blank text", SetText(text, "   "), ErrEmptyText},
		{"unsupported type", bad, ErrUnsupportedType},
		{"text ok", SetText(text, "ACME"), nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Validate(tt.state); !errors.Is(got, tt.want) {
				t.Fatalf("Validate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"png", "logo.png", pngHeader, "image/png"},
		{"gif", "logo.gif", []byte("GIF89a\x01\x00\x01\x00"), "image/gif"},
		{"svg with xml prolog", "logo.svg", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`), "image/svg+xml"},
		{"bare svg", "mark", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), "image/svg+xml"},
		{"plain text", "notes.txt", []byte("hello world"), "text/plain"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DetectMIME(tt.file, tt.data); got != tt.want {
				t.Fatalf("DetectMIME(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(good, pngHeader, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	file, err := LoadFile(good, 0)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if file.MIME != "image/png" || file.Name != "logo.png" {
		t.Fatalf("unexpected file: %+v", file)
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("not a logo"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(txt, 0); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}

	if _, err := LoadFile(good, 4); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}

	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(empty, 0); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestParseModeAndAxis(t *testing.T) {
	if m, ok := ParseMode("Card"); !ok || m != ModeCard {
		t.Fatalf("ParseMode(Card) = %v, %v", m, ok)
	}
	if _, ok := ParseMode("banner"); ok {
		t.Fatal("unknown mode should not parse")
	}
	if a, ok := ParseAxis("pos"); !ok || a.Override() != "pos" {
		t.Fatalf("ParseAxis(pos) = %v, %v", a, ok)
	}
	if ModeCard.FormType() != "" {
		t.Fatal("card requests carry no type field")
	}
}
