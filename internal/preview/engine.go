package preview

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/logger"
)

// ActionKind tells the event loop what to do after an engine call.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSchedule
	ActionDispatch
)

// Action is the side effect an engine call asks the event loop to perform.
type Action struct {
	Kind    ActionKind
	Ticket  Ticket
	Request Request
}

// Options configures a new Engine.
type Options struct {
	Limits   editor.Limits
	Window   time.Duration
	Initial  *editor.State
	NewToken func() string
}

// Engine owns the editor state and presenter view of one session. It is
// not safe for concurrent use; the event loop calls it from one goroutine.
type Engine struct {
	state    editor.State
	view     View
	limits   editor.Limits
	debounce *Debouncer
	newToken func() string
}

// NewEngine returns an engine in Image mode with default parameters.
func NewEngine(opts Options) *Engine {
	limits := opts.Limits
	if limits == (editor.Limits{}) {
		limits = editor.DefaultLimits()
	}
	state := editor.New()
	if opts.Initial != nil {
		state = *opts.Initial
	}
	tokens := opts.NewToken
	if tokens == nil {
		tokens = timestampTokens()
	}
	return &Engine{
		state:    state,
		view:     Idle(),
		limits:   limits,
		debounce: NewDebouncer(opts.Window),
		newToken: tokens,
	}
}

func timestampTokens() func() string {
	var seq atomic.Uint64
	return func() string {
		return fmt.Sprintf("%d%03d", time.Now().UnixMilli(), seq.Add(1)%1000)
	}
}

// State returns a copy of the editor state.
func (e *Engine) State() editor.State { return e.state }

// View returns a copy of the presenter state.
func (e *Engine) View() View { return e.view }

// Limits returns the slider ranges.
func (e *Engine) Limits() editor.Limits { return e.limits }

// Window is the debounce window.
func (e *Engine) Window() time.Duration { return e.debounce.Window }

// SwitchMode runs the mode state machine. Entering Text with text already
// present dispatches at once; mode entry is a discrete event.
func (e *Engine) SwitchMode(mode editor.Mode) Action {
	next, changed := editor.SwitchMode(e.state, mode)
	if !changed {
		return Action{}
	}
	e.state = next
	e.view = Idle()
	e.debounce.Cancel()
	logger.Debugf("mode -> %s", mode)
	if mode == editor.ModeText && e.state.HasPayload() {
		return e.dispatch()
	}
	return Action{}
}

// Slide applies an absolute slider value.
func (e *Engine) Slide(c editor.Control, value float64) Action {
	e.state = editor.Slide(e.state, e.limits, c, value)
	return e.scheduleIfPayload()
}

// Nudge applies a fixed step to a control.
func (e *Engine) Nudge(c editor.Control, delta int) Action {
	e.state = editor.Nudge(e.state, e.limits, c, delta)
	return e.scheduleIfPayload()
}

// EditText updates the text field. Only Text mode renders text, so edits in
// other modes schedule nothing.
func (e *Engine) EditText(text string) Action {
	e.state = editor.SetText(e.state, text)
	if e.state.Mode != editor.ModeText {
		return Action{}
	}
	return e.scheduleIfPayload()
}

// SelectFile stores a validated file for the active mode. Choosing a file
// does not render by itself; Submit does.
func (e *Engine) SelectFile(file *editor.File) Action {
	e.state = editor.SelectFile(e.state, file)
	return Action{}
}

// Refresh schedules a debounced render when a preview is already on screen,
// as after the payload file changed on disk.
func (e *Engine) Refresh() Action {
	if e.state.Artifact == "" {
		return Action{}
	}
	return e.scheduleIfPayload()
}

// Submit validates the active payload and renders immediately. Validation
// failures are shown in the view and never reach the service.
func (e *Engine) Submit() (Action, error) {
	if err := editor.Validate(e.state); err != nil {
		e.view = Failed(e.view, err.Error())
		return Action{}, err
	}
	e.debounce.Cancel()
	return e.dispatch(), nil
}

// Reject shows a validation error raised outside the engine, such as a file
// that failed to load.
func (e *Engine) Reject(err error) {
	if err == nil {
		return
	}
	e.view = Failed(e.view, err.Error())
}

// Fire handles a debounce timer. Superseded timers and timers that find no
// payload do nothing.
func (e *Engine) Fire(t Ticket) Action {
	if !e.debounce.Fire(t) {
		return Action{}
	}
	return e.dispatch()
}

// Reconcile applies a render result and reports whether it was current.
func (e *Engine) Reconcile(r Result) bool {
	if Stale(e.state.Generation, r.Generation) {
		logger.Debugf("discarding stale result for generation %d (current %d)", r.Generation, e.state.Generation)
		return false
	}
	token := ""
	if r.Success {
		token = e.newToken()
	}
	e.state, e.view, _ = Reconcile(e.state, e.view, r, token)
	if r.Success {
		logger.Infof("generation %d rendered %s", r.Generation, r.Artifact)
	} else {
		logger.Warnf("generation %d failed (%s): %s", r.Generation, r.Kind, r.Error)
	}
	return true
}

// ImageLoaded reports that the displayed artifact finished loading.
func (e *Engine) ImageLoaded(artifact, token string) bool {
	view, ok := ImageLoaded(e.view, artifact, token)
	e.view = view
	return ok
}

// ImageFailed reports that the displayed artifact could not be loaded.
func (e *Engine) ImageFailed(artifact, token string, err error) bool {
	if e.view.Artifact != artifact || e.view.Token != token {
		return false
	}
	message := GenericError
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = err.Error()
	}
	e.view = Failed(e.view, message)
	return true
}

func (e *Engine) scheduleIfPayload() Action {
	if !e.state.HasPayload() {
		return Action{}
	}
	return Action{Kind: ActionSchedule, Ticket: e.debounce.Schedule()}
}

func (e *Engine) dispatch() Action {
	state, req, ok := Dispatch(e.state)
	if !ok {
		return Action{}
	}
	e.state = state
	e.view = Loading(e.view)
	logger.Debugf("dispatch generation %d mode=%s h=%d v=%d scale=%.2f override=%q",
		req.Generation, req.Mode, req.Horizontal, req.Vertical, req.Scale, req.Override.Override())
	return Action{Kind: ActionDispatch, Request: req}
}
