package preview

import "github.com/csheth/logopreview/internal/editor"

// Stale reports whether a response belongs to a superseded request.
func Stale(current, response uint64) bool {
	return current != response
}

// Reconcile applies a render result to the state and view. Results whose
// generation is not the latest dispatched one are dropped unchanged.
func Reconcile(s editor.State, v View, r Result, token string) (editor.State, View, bool) {
	if Stale(s.Generation, r.Generation) {
		return s, v, false
	}
	if !r.Success {
		message := r.Error
		if message == "" {
			message = GenericError
		}
		return s, Failed(v, message), true
	}
	s.Artifact = r.Artifact
	v.Phase = PhaseReady
	v.Artifact = r.Artifact
	v.Token = token
	v.Error = ""
	v.PreviewVisible = true
	v.ControlsVisible = true
	v.DownloadVisible = true
	v.GuidesVisible = false
	return s, v, true
}

// ImageLoaded marks the displayed artifact as loaded so the guides can be
// aligned to it. Loads of an artifact or token no longer on screen are ignored.
func ImageLoaded(v View, artifact, token string) (View, bool) {
	if v.Phase != PhaseReady || v.Artifact != artifact || v.Token != token {
		return v, false
	}
	v.GuidesVisible = true
	return v, true
}
