package preview

import (
	"strings"

	"github.com/csheth/logopreview/internal/editor"
)

// GenericError is shown when the service gave no message or could not be reached.
const GenericError = "An error occurred while processing the logo."

// Request is the immutable snapshot sent to the render service.
type Request struct {
	Mode       editor.Mode
	Horizontal int
	Vertical   int
	Scale      float64
	Override   editor.Axis
	File       *editor.File
	Text       string
	Generation uint64
}

// ErrorKind classifies a failed render.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorTransport
	ErrorService
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorTransport:
		return "transport"
	case ErrorService:
		return "service"
	default:
		return "none"
	}
}

// Result answers the request with the same generation.
type Result struct {
	Generation uint64
	Success    bool
	Artifact   string
	Error      string
	Kind       ErrorKind
}

// Succeeded builds a successful result.
func Succeeded(generation uint64, artifact string) Result {
	return Result{Generation: generation, Success: true, Artifact: artifact}
}

// FailedResult builds a failed result; an empty message falls back to GenericError.
func FailedResult(generation uint64, kind ErrorKind, message string) Result {
	message = strings.TrimSpace(message)
	if message == "" {
		message = GenericError
	}
	return Result{Generation: generation, Error: message, Kind: kind}
}

// Dispatch consumes the state into a request snapshot. Without a payload it
// returns the state unchanged and ok=false.
func Dispatch(s editor.State) (editor.State, Request, bool) {
	if !s.HasPayload() {
		return s, Request{}, false
	}
	s.Generation++
	req := Request{
		Mode:       s.Mode,
		Horizontal: s.Horizontal,
		Vertical:   s.Vertical,
		Scale:      s.Scale,
		Override:   s.LastChanged,
		Generation: s.Generation,
	}
	if s.Mode == editor.ModeText {
		req.Text = strings.TrimSpace(s.Text)
	} else {
		req.File = s.ActiveFile()
	}
	s.LastChanged = editor.AxisNone
	return s, req, true
}
