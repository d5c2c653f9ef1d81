package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/csheth/logopreview/internal/artifact"
	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/preview"
	"github.com/csheth/logopreview/internal/watch"
)

const statusTimeout = 3 * time.Second

func renderJob(r Renderer, req preview.Request) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		result := r.Preview(parent, req)
		var err error
		if !result.Success {
			err = fmt.Errorf("%s error: %s", result.Kind, result.Error)
		}
		return renderResultMsg{result: result}, err
	}
}

func artifactJob(r Renderer, store ArtifactStore, name, token string, cols, rows int) jobRunner {
	url := r.ArtifactURL(name, token, false)
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		path, err := store.Fetch(ctx, url, name)
		if err != nil {
			return artifactLoadedMsg{artifact: name, token: token, err: err}, err
		}
		thumb, err := thumbnailFor(path, cols, rows)
		return artifactLoadedMsg{artifact: name, token: token, path: path, thumb: thumb, err: err}, err
	}
}

func thumbnailJob(name, token, path string, cols, rows int) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		thumb, err := thumbnailFor(path, cols, rows)
		return artifactLoadedMsg{artifact: name, token: token, path: path, thumb: thumb, err: err}, err
	}
}

// thumbnailFor treats artifacts the terminal cannot draw as loaded, with
// an empty thumbnail.
func thumbnailFor(path string, cols, rows int) (artifact.Thumb, error) {
	thumb, err := artifact.Thumbnail(path, cols, rows)
	if errors.Is(err, artifact.ErrUndecodable) {
		return artifact.Thumb{}, nil
	}
	return thumb, err
}

func loadFileJob(path string, maxBytes int64, reason loadReason) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		file, err := editor.LoadFile(path, maxBytes)
		return fileLoadedMsg{path: path, file: file, reason: reason, err: err}, err
	}
}

func exportJob(storePath, dir string, manifest artifact.Manifest) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		path, err := artifact.Export(storePath, dir, manifest)
		return exportResultMsg{path: path, err: err}, err
	}
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-w.Events
		if !ok {
			return nil
		}
		return fileChangedMsg{path: path}
	}
}

func copyURLCmd(copyFn func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{url: url, err: copyFn(url)}
	}
}

func openURLCmd(openFn func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{url: url, err: openFn(url)}
	}
}

func clearStatusAfter(id int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// systemBrowser keeps the launcher's output off the alt screen.
func systemBrowser(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
