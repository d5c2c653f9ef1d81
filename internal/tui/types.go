package tui

import (
	"github.com/csheth/logopreview/internal/artifact"
	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/preview"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputPath
	inputText
)

type loadReason int

const (
	loadSelect loadReason = iota
	loadWatch
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

const heroTagline = "Place your logo, see the render."

const (
	pathPlaceholder = "Path to a PNG, JPG, GIF or SVG logo…"
	textPlaceholder = "Type the logo text…"
)

type debounceMsg struct {
	ticket preview.Ticket
}

type renderResultMsg struct {
	result preview.Result
}

type artifactLoadedMsg struct {
	artifact string
	token    string
	path     string
	thumb    artifact.Thumb
	err      error
}

type fileLoadedMsg struct {
	path   string
	file   *editor.File
	reason loadReason
	err    error
}

type fileChangedMsg struct {
	path string
}

type exportResultMsg struct {
	path string
	err  error
}

type copyResultMsg struct {
	url string
	err error
}

type openResultMsg struct {
	url string
	err error
}

type clearStatusMsg struct {
	id int
}
