package preview

// Phase is the presenter state of the preview pane.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// View is everything the presentation layer needs to paint the preview.
// Token is the cache-busting value of the current display.
type View struct {
	Phase           Phase
	Artifact        string
	Token           string
	Error           string
	PreviewVisible  bool
	ControlsVisible bool
	DownloadVisible bool
	GuidesVisible   bool
}

// Idle is the view after a mode switch.
func Idle() View {
	return View{Phase: PhaseIdle}
}

// Loading hides the previous preview, error and download while a request is in flight.
func Loading(v View) View {
	v.Phase = PhaseLoading
	v.Error = ""
	v.PreviewVisible = false
	v.DownloadVisible = false
	v.GuidesVisible = false
	return v
}

// Failed shows message and ends the loading state.
func Failed(v View, message string) View {
	v.Phase = PhaseError
	v.Error = message
	v.PreviewVisible = false
	v.DownloadVisible = false
	v.GuidesVisible = false
	return v
}
