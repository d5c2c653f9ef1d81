package preview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/logopreview/internal/editor"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	n := 0
	return NewEngine(Options{NewToken: func() string {
		n++
		return fmt.Sprintf("tok-%d", n)
	}})
}

func pngFile(name string) *editor.File {
	return &editor.File{Name: name, Path: "/tmp/" + name, MIME: "image/png", Data: []byte("png")}
}

func TestEngineStartsIdleInImageMode(t *testing.T) {
	e := newTestEngine(t)
	s := e.State()
	assert.Equal(t, editor.ModeImage, s.Mode)
	assert.Equal(t, 1.0, s.Scale)
	assert.Equal(t, PhaseIdle, e.View().Phase)
	assert.Equal(t, DefaultWindow, e.Window())
}

func TestControlsWithoutPayloadScheduleNothing(t *testing.T) {
	e := newTestEngine(t)
	act := e.Nudge(editor.ControlHorizontal, 1)
	assert.Equal(t, ActionNone, act.Kind)
	assert.Equal(t, 10, e.State().Horizontal)
	assert.Equal(t, editor.AxisPosition, e.State().LastChanged)
}

func TestBurstCollapsesToOneDispatch(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))

	var tickets []Ticket
	for i := 0; i < 5; i++ {
		act := e.Nudge(editor.ControlVertical, 1)
		require.Equal(t, ActionSchedule, act.Kind)
		tickets = append(tickets, act.Ticket)
	}

	dispatched := 0
	for _, tk := range tickets {
		if act := e.Fire(tk); act.Kind == ActionDispatch {
			dispatched++
			assert.Equal(t, 50, act.Request.Vertical)
			assert.Equal(t, editor.AxisPosition, act.Request.Override)
		}
	}
	assert.Equal(t, 1, dispatched)

	// Firing the surviving ticket again does nothing.
	assert.Equal(t, ActionNone, e.Fire(tickets[len(tickets)-1]).Kind)
}

func TestOverrideIsOneShot(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))

	act := e.Fire(e.Nudge(editor.ControlScale, 1).Ticket)
	require.Equal(t, ActionDispatch, act.Kind)
	assert.Equal(t, editor.AxisScale, act.Request.Override)
	assert.InDelta(t, 1.05, act.Request.Scale, 1e-9)
	assert.Equal(t, editor.AxisNone, e.State().LastChanged)

	act, err := e.Submit()
	require.NoError(t, err)
	assert.Equal(t, editor.AxisNone, act.Request.Override)
	assert.InDelta(t, 1.05, act.Request.Scale, 1e-9)
}

func TestLastChangedAxisWins(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	e.Nudge(editor.ControlScale, 1)
	act := e.Fire(e.Nudge(editor.ControlHorizontal, -1).Ticket)
	require.Equal(t, ActionDispatch, act.Kind)
	assert.Equal(t, editor.AxisPosition, act.Request.Override)
	assert.Equal(t, -10, act.Request.Horizontal)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))

	first, err := e.Submit()
	require.NoError(t, err)
	second, err := e.Submit()
	require.NoError(t, err)
	require.Greater(t, second.Request.Generation, first.Request.Generation)

	assert.True(t, e.Reconcile(Succeeded(second.Request.Generation, "new.png")))
	before := e.View()

	assert.False(t, e.Reconcile(Succeeded(first.Request.Generation, "old.png")))
	assert.Equal(t, before, e.View())
	assert.Equal(t, "new.png", e.State().Artifact)
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	first, _ := e.Submit()
	second, _ := e.Submit()

	require.True(t, e.Reconcile(Succeeded(second.Request.Generation, "ok.png")))
	assert.False(t, e.Reconcile(FailedResult(first.Request.Generation, ErrorService, "boom")))
	assert.Equal(t, PhaseReady, e.View().Phase)
	assert.Empty(t, e.View().Error)
}

func TestSubmitValidation(t *testing.T) {
	e := newTestEngine(t)

	act, err := e.Submit()
	assert.ErrorIs(t, err, editor.ErrNoFile)
	assert.Equal(t, ActionNone, act.Kind)
	assert.Equal(t, PhaseError, e.View().Phase)
	assert.Equal(t, editor.ErrNoFile.Error(), e.View().Error)
	assert.Zero(t, e.State().Generation)

	e.SwitchMode(editor.ModeText)
	e.EditText("   ")
	_, err = e.Submit()
	assert.ErrorIs(t, err, editor.ErrEmptyText)

	e.SwitchMode(editor.ModeCard)
	_, err = e.Submit()
	assert.ErrorIs(t, err, editor.ErrNoCardFile)
}

func TestSubmitCancelsPendingDebounce(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	tk := e.Nudge(editor.ControlHorizontal, 1).Ticket

	act, err := e.Submit()
	require.NoError(t, err)
	assert.Equal(t, ActionDispatch, act.Kind)
	assert.Equal(t, ActionNone, e.Fire(tk).Kind)
}

func TestModeSwitchResetsWithoutDispatch(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	e.Nudge(editor.ControlHorizontal, 3)
	e.Nudge(editor.ControlScale, 2)
	act, _ := e.Submit()
	require.True(t, e.Reconcile(Succeeded(act.Request.Generation, "r.png")))
	pending := e.Nudge(editor.ControlVertical, 1).Ticket

	act = e.SwitchMode(editor.ModeCard)
	assert.Equal(t, ActionNone, act.Kind)

	s := e.State()
	assert.Equal(t, editor.ModeCard, s.Mode)
	assert.Zero(t, s.Horizontal)
	assert.Zero(t, s.Vertical)
	assert.Equal(t, 1.0, s.Scale)
	assert.Equal(t, editor.AxisNone, s.LastChanged)
	assert.Nil(t, s.Image)
	assert.Empty(t, s.Artifact)
	assert.Equal(t, Idle(), e.View())

	// A timer armed before the switch never fires.
	assert.Equal(t, ActionNone, e.Fire(pending).Kind)
}

func TestEnteringTextWithTextDispatches(t *testing.T) {
	e := newTestEngine(t)
	e.EditText("  ACME  ")

	act := e.SwitchMode(editor.ModeText)
	require.Equal(t, ActionDispatch, act.Kind)
	assert.Equal(t, "ACME", act.Request.Text)
	assert.Equal(t, editor.ModeText, act.Request.Mode)
	assert.Equal(t, PhaseLoading, e.View().Phase)
}

func TestTextEditsScheduleOnlyInTextMode(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, ActionNone, e.EditText("hello").Kind)

	e.SwitchMode(editor.ModeCard)
	e.SwitchMode(editor.ModeText)
	act := e.EditText("hello")
	assert.Equal(t, ActionSchedule, act.Kind)
	assert.Equal(t, ActionNone, e.EditText("").Kind)
}

func TestSelectFileNeverDispatches(t *testing.T) {
	e := newTestEngine(t)
	act := e.SelectFile(pngFile("abc.png"))
	assert.Equal(t, ActionNone, act.Kind)
	assert.Zero(t, e.State().Generation)
}

func TestLoadingAndReadyVisibility(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	act, _ := e.Submit()

	v := e.View()
	assert.Equal(t, PhaseLoading, v.Phase)
	assert.False(t, v.PreviewVisible)
	assert.False(t, v.DownloadVisible)

	require.True(t, e.Reconcile(Succeeded(act.Request.Generation, "out.png")))
	v = e.View()
	assert.Equal(t, PhaseReady, v.Phase)
	assert.True(t, v.PreviewVisible)
	assert.True(t, v.ControlsVisible)
	assert.True(t, v.DownloadVisible)
	assert.False(t, v.GuidesVisible)
	assert.Equal(t, "tok-1", v.Token)

	assert.False(t, e.ImageLoaded("out.png", "tok-0"))
	assert.True(t, e.ImageLoaded("out.png", "tok-1"))
	assert.True(t, e.View().GuidesVisible)
}

func TestFailureShowsMessageOrFallback(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))

	act, _ := e.Submit()
	require.True(t, e.Reconcile(FailedResult(act.Request.Generation, ErrorService, "bad logo")))
	assert.Equal(t, "bad logo", e.View().Error)

	act, _ = e.Submit()
	require.True(t, e.Reconcile(FailedResult(act.Request.Generation, ErrorTransport, "")))
	assert.Equal(t, GenericError, e.View().Error)
	assert.Equal(t, PhaseError, e.View().Phase)
}

func TestImageFailedOnlyForCurrentDisplay(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	act, _ := e.Submit()
	require.True(t, e.Reconcile(Succeeded(act.Request.Generation, "out.png")))

	assert.False(t, e.ImageFailed("other.png", "tok-1", errors.New("x")))
	assert.True(t, e.ImageFailed("out.png", "tok-1", nil))
	assert.Equal(t, GenericError, e.View().Error)
}

func TestRefreshNeedsArtifact(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	assert.Equal(t, ActionNone, e.Refresh().Kind)

	act, _ := e.Submit()
	require.True(t, e.Reconcile(Succeeded(act.Request.Generation, "out.png")))
	assert.Equal(t, ActionSchedule, e.Refresh().Kind)
}

func TestSelectedFileFeedsNextRender(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("first.png"))
	act, _ := e.Submit()
	require.Equal(t, "first.png", act.Request.File.Name)
	require.True(t, e.Reconcile(Succeeded(act.Request.Generation, "first_out.png")))

	e.SelectFile(pngFile("second.png"))
	act = e.Fire(e.Nudge(editor.ControlHorizontal, 1).Ticket)
	require.Equal(t, ActionDispatch, act.Kind)
	assert.Equal(t, "second.png", act.Request.File.Name)
}

func TestDragBurstThenStaleSuccess(t *testing.T) {
	e := newTestEngine(t)
	logo := pngFile("logo.png")
	logo.Data = make([]byte, 2<<20)
	e.SelectFile(logo)

	var last Ticket
	for i := 0; i < 3; i++ {
		last = e.Slide(editor.ControlHorizontal, 50).Ticket
	}
	act := e.Fire(last)
	require.Equal(t, ActionDispatch, act.Kind)
	assert.Equal(t, 50, act.Request.Horizontal)
	assert.Equal(t, "pos", act.Request.Override.Override())
	gen := act.Request.Generation

	require.True(t, e.Reconcile(Succeeded(gen, "abc.png")))
	assert.Equal(t, "abc.png", e.View().Artifact)
	assert.True(t, e.View().ControlsVisible)

	assert.False(t, e.Reconcile(Succeeded(gen-1, "old.png")))
	assert.Equal(t, "abc.png", e.View().Artifact)
	assert.Equal(t, "abc.png", e.State().Artifact)
}

func TestImageToTextResetWithEmptyText(t *testing.T) {
	e := newTestEngine(t)
	e.SelectFile(pngFile("abc.png"))
	e.Slide(editor.ControlHorizontal, 10)
	e.Slide(editor.ControlScale, 1.2)
	act, _ := e.Submit()
	require.True(t, e.Reconcile(Succeeded(act.Request.Generation, "abc.png")))

	act = e.SwitchMode(editor.ModeText)
	assert.Equal(t, ActionNone, act.Kind)
	assert.Zero(t, e.State().Horizontal)
	assert.Equal(t, 1.0, e.State().Scale)
	assert.Empty(t, e.State().Artifact)
}

func TestDebouncerSupersedes(t *testing.T) {
	d := NewDebouncer(0)
	assert.Equal(t, DefaultWindow, d.Window)
	a := d.Schedule()
	b := d.Schedule()
	assert.True(t, d.Pending())
	assert.False(t, d.Fire(a))
	assert.True(t, d.Fire(b))
	assert.False(t, d.Pending())
	c := d.Schedule()
	d.Cancel()
	assert.False(t, d.Fire(c))
}

func TestDispatchWithoutPayload(t *testing.T) {
	s := editor.New()
	next, _, ok := Dispatch(s)
	assert.False(t, ok)
	assert.Equal(t, s, next)
}
