package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/logopreview/internal/artifact"
	"github.com/csheth/logopreview/internal/editor"
	"github.com/csheth/logopreview/internal/logger"
	"github.com/csheth/logopreview/internal/preview"
	"github.com/csheth/logopreview/internal/watch"
)

// Renderer is the part of the render client the TUI needs.
type Renderer interface {
	Preview(ctx context.Context, req preview.Request) preview.Result
	ArtifactURL(name, token string, download bool) string
}

// ArtifactStore downloads rendered artifacts to disk.
type ArtifactStore interface {
	Fetch(ctx context.Context, url, name string) (string, error)
}

// Config wires runtime options into the TUI program.
type Config struct {
	Renderer    Renderer
	Store       ArtifactStore
	Engine      preview.Options
	MaxUpload   int64
	OutputDir   string
	InitialMode editor.Mode
	InitialFile string
	InitialText string
	// WatchFiles re-renders when the selected logo changes on disk.
	WatchFiles bool
	Clipboard  func(string) error
	Browser    func(string) error
}

type model struct {
	config Config
	engine *preview.Engine
	jobs   *jobBus
	layout pageLayout

	pathInput textinput.Model
	textInput textinput.Model
	spinner   spinner.Model
	input     inputMode
	focus     editor.Control

	thumb        *artifact.Thumb
	artifactPath string
	watcher      *watch.Watcher
	running      int

	statusMessage string
	statusKind    statusKind
	statusID      int
	helpVisible   bool

	startup []tea.Cmd
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.MaxUpload <= 0 {
		config.MaxUpload = editor.DefaultMaxUpload
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.Clipboard == nil {
		config.Clipboard = systemClipboard
	}
	if config.Browser == nil {
		config.Browser = systemBrowser
	}

	pathInput := textinput.New()
	pathInput.Placeholder = pathPlaceholder
	pathInput.CharLimit = 1024
	pathInput.Width = 60

	textInput := textinput.New()
	textInput.Placeholder = textPlaceholder
	textInput.CharLimit = 200
	textInput.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:    config,
		engine:    preview.NewEngine(config.Engine),
		jobs:      newJobBus(),
		layout:    newPageLayout(),
		pathInput: pathInput,
		textInput: textInput,
		spinner:   spin,
		focus:     editor.ControlHorizontal,
	}

	if text := config.InitialText; text != "" {
		m.textInput.SetValue(text)
		m.engine.EditText(text)
	}
	if config.InitialMode != editor.ModeImage {
		m.startup = append(m.startup, m.perform(m.engine.SwitchMode(config.InitialMode)))
		m.syncTextInput()
	}
	if path := strings.TrimSpace(config.InitialFile); path != "" && config.InitialMode != editor.ModeText {
		m.pathInput.SetValue(path)
		m.startup = append(m.startup, m.jobs.Start(jobKindLoad, filepath.Base(path), loadFileJob(path, config.MaxUpload, loadSelect)))
	}
	switch {
	case config.InitialMode == editor.ModeText:
		m.statusMessage = "Press i to type the logo text."
	default:
		m.statusMessage = "Press o to choose a logo file."
	}
	return m
}

func (m *model) Init() tea.Cmd {
	cmds := append([]tea.Cmd{textinput.Blink}, m.startup...)
	m.startup = nil
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.pathInput.Width = m.layout.inputWidth
		m.textInput.Width = m.layout.inputWidth
		return m, m.refreshThumbnail()
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.running++
		return m, nil
	case jobResultEnvelope:
		if m.running > 0 {
			m.running--
		}
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case debounceMsg:
		return m, m.perform(m.engine.Fire(msg.ticket))
	case renderResultMsg:
		return m, m.handleRenderResult(msg.result)
	case artifactLoadedMsg:
		return m, m.handleArtifactLoaded(msg)
	case fileLoadedMsg:
		return m, m.handleFileLoaded(msg)
	case fileChangedMsg:
		if m.watcher == nil || msg.path != m.watcher.Path() {
			return m, nil
		}
		logger.Debugf("logo changed on disk: %s", msg.path)
		load := m.jobs.Start(jobKindLoad, filepath.Base(msg.path), loadFileJob(msg.path, m.config.MaxUpload, loadWatch))
		return m, tea.Batch(load, waitForChange(m.watcher))
	case exportResultMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, fmt.Sprintf("Export failed: %v", msg.err))
		}
		return m, m.setStatus(statusSuccess, fmt.Sprintf("Exported %s", msg.path))
	case copyResultMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, fmt.Sprintf("Clipboard unavailable: %v", msg.err))
		}
		return m, m.setStatus(statusSuccess, "Download URL copied.")
	case openResultMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, fmt.Sprintf("Could not open browser: %v", msg.err))
		}
		return m, m.setStatus(statusSuccess, "Opened download in browser.")
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.statusMessage = ""
		}
		return m, nil
	}
	return m, nil
}

func (m *model) busy() bool {
	return m.engine.View().Phase == preview.PhaseLoading || m.running > 0
}

// perform runs the side effect an engine call asked for.
func (m *model) perform(act preview.Action) tea.Cmd {
	switch act.Kind {
	case preview.ActionSchedule:
		ticket := act.Ticket
		return tea.Tick(ticket.Window, func(time.Time) tea.Msg {
			return debounceMsg{ticket: ticket}
		})
	case preview.ActionDispatch:
		if m.config.Renderer == nil {
			return nil
		}
		m.thumb = nil
		m.artifactPath = ""
		tag := fmt.Sprintf("gen-%d", act.Request.Generation)
		return tea.Batch(
			m.jobs.Start(jobKindRender, tag, renderJob(m.config.Renderer, act.Request)),
			m.spinner.Tick,
		)
	default:
		return nil
	}
}

func (m *model) handleRenderResult(result preview.Result) tea.Cmd {
	if !m.engine.Reconcile(result) {
		return nil
	}
	view := m.engine.View()
	if view.Phase != preview.PhaseReady || m.config.Store == nil {
		return nil
	}
	cols, rows := m.layout.thumbSize()
	return m.jobs.Start(jobKindArtifact, view.Artifact,
		artifactJob(m.config.Renderer, m.config.Store, view.Artifact, view.Token, cols, rows))
}

func (m *model) handleArtifactLoaded(msg artifactLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.engine.ImageFailed(msg.artifact, msg.token, msg.err)
		return nil
	}
	view := m.engine.View()
	if view.Artifact != msg.artifact || view.Token != msg.token {
		return nil
	}
	thumb := msg.thumb
	m.thumb = &thumb
	m.artifactPath = msg.path
	m.engine.ImageLoaded(msg.artifact, msg.token)
	return nil
}

// refreshThumbnail redraws the current artifact at the new pane size.
func (m *model) refreshThumbnail() tea.Cmd {
	view := m.engine.View()
	if m.artifactPath == "" || view.Phase != preview.PhaseReady {
		return nil
	}
	cols, rows := m.layout.thumbSize()
	return m.jobs.Start(jobKindArtifact, view.Artifact,
		thumbnailJob(view.Artifact, view.Token, m.artifactPath, cols, rows))
}

func (m *model) handleFileLoaded(msg fileLoadedMsg) tea.Cmd {
	if msg.err != nil {
		if msg.reason == loadWatch {
			logger.Warnf("reloading %s: %v", msg.path, msg.err)
			return nil
		}
		m.engine.Reject(msg.err)
		return m.setStatus(statusError, msg.err.Error())
	}
	state := m.engine.State()
	if state.Mode == editor.ModeText {
		return nil
	}
	if msg.reason == loadWatch {
		current := state.ActiveFile()
		if current == nil || current.Path != msg.file.Path {
			return nil
		}
	}

	cmds := []tea.Cmd{m.perform(m.engine.SelectFile(msg.file))}
	if msg.reason == loadWatch {
		cmds = append(cmds, m.perform(m.engine.Refresh()), m.setStatus(statusInfo, fmt.Sprintf("Reloaded %s", msg.file.Name)))
		return tea.Batch(cmds...)
	}
	cmds = append(cmds, m.watchFile(msg.file.Path))
	cmds = append(cmds, m.setStatus(statusInfo, fmt.Sprintf("Selected %s (%s). Press enter to render.", msg.file.Name, humanSize(len(msg.file.Data)))))
	return tea.Batch(cmds...)
}

func (m *model) watchFile(path string) tea.Cmd {
	if !m.config.WatchFiles {
		return nil
	}
	if m.watcher != nil {
		if abs, err := filepath.Abs(path); err == nil && abs == m.watcher.Path() {
			return nil
		}
	}
	m.stopWatching()
	w, err := watch.New(path)
	if err != nil {
		logger.Warnf("cannot watch %s: %v", path, err)
		return nil
	}
	m.watcher = w
	return waitForChange(w)
}

func (m *model) stopWatching() {
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
}

func (m *model) setStatus(kind statusKind, message string) tea.Cmd {
	m.statusID++
	m.statusKind = kind
	m.statusMessage = message
	if kind == statusError {
		return nil
	}
	return clearStatusAfter(m.statusID)
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m.quit()
	}
	switch m.input {
	case inputPath:
		return m, m.handlePathKey(key)
	case inputText:
		return m, m.handleTextKey(key)
	}

	switch key.String() {
	case "q":
		return m.quit()
	case "1":
		return m, m.switchMode(editor.ModeImage)
	case "2":
		return m, m.switchMode(editor.ModeText)
	case "3":
		return m, m.switchMode(editor.ModeCard)
	case "o":
		if m.engine.State().Mode == editor.ModeText {
			return m, m.setStatus(statusInfo, "Text mode renders text. Press i to edit it.")
		}
		m.input = inputPath
		return m, m.pathInput.Focus()
	case "i":
		if m.engine.State().Mode != editor.ModeText {
			return m, m.setStatus(statusInfo, "Press 2 to switch to Text mode first.")
		}
		m.input = inputText
		return m, m.textInput.Focus()
	case "enter":
		return m, m.submit()
	case "tab":
		m.focus = nextControl(m.focus, 1)
		return m, nil
	case "shift+tab":
		m.focus = nextControl(m.focus, -1)
		return m, nil
	case "left":
		return m, m.slideBy(-1)
	case "right":
		return m, m.slideBy(1)
	case "home", "end":
		lo, hi, _ := m.engine.Limits().Bounds(m.focus)
		value := lo
		if key.String() == "end" {
			value = hi
		}
		return m, m.perform(m.engine.Slide(m.focus, value))
	case "h":
		return m, m.perform(m.engine.Nudge(editor.ControlHorizontal, -1))
	case "l":
		return m, m.perform(m.engine.Nudge(editor.ControlHorizontal, 1))
	case "j":
		return m, m.perform(m.engine.Nudge(editor.ControlVertical, -1))
	case "k":
		return m, m.perform(m.engine.Nudge(editor.ControlVertical, 1))
	case "-", "_":
		return m, m.perform(m.engine.Nudge(editor.ControlScale, -1))
	case "+", "=":
		return m, m.perform(m.engine.Nudge(editor.ControlScale, 1))
	case "d":
		return m, m.export()
	case "y":
		if url, ok := m.downloadURL(); ok {
			return m, copyURLCmd(m.config.Clipboard, url)
		}
		return m, nil
	case "b":
		if url, ok := m.downloadURL(); ok {
			return m, openURLCmd(m.config.Browser, url)
		}
		return m, nil
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	}
	return m, nil
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.stopWatching()
	return m, tea.Quit
}

func (m *model) handlePathKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.input = inputNone
		m.pathInput.Blur()
		return nil
	case tea.KeyEnter:
		path := expandHome(strings.TrimSpace(m.pathInput.Value()))
		m.input = inputNone
		m.pathInput.Blur()
		if path == "" {
			return nil
		}
		return m.jobs.Start(jobKindLoad, filepath.Base(path), loadFileJob(path, m.config.MaxUpload, loadSelect))
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(key)
	return cmd
}

func (m *model) handleTextKey(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.input = inputNone
		m.textInput.Blur()
		return nil
	case tea.KeyEnter:
		m.input = inputNone
		m.textInput.Blur()
		return m.submit()
	}
	before := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(key)
	if after := m.textInput.Value(); after != before {
		return tea.Batch(cmd, m.perform(m.engine.EditText(after)))
	}
	return cmd
}

func (m *model) switchMode(mode editor.Mode) tea.Cmd {
	if mode == m.engine.State().Mode {
		return nil
	}
	act := m.engine.SwitchMode(mode)
	m.thumb = nil
	m.artifactPath = ""
	if mode == editor.ModeText {
		m.stopWatching()
	}
	m.pathInput.SetValue("")
	m.syncTextInput()
	return tea.Batch(m.perform(act), m.setStatus(statusInfo, fmt.Sprintf("%s mode", modeTitle(mode))))
}

// syncTextInput mirrors the engine's text, which a mode switch may clear.
func (m *model) syncTextInput() {
	if text := m.engine.State().Text; text != m.textInput.Value() {
		m.textInput.SetValue(text)
	}
}

func (m *model) submit() tea.Cmd {
	act, err := m.engine.Submit()
	if err != nil {
		return m.setStatus(statusError, err.Error())
	}
	return m.perform(act)
}

// slideBy moves the focused slider one step, as dragging it would.
func (m *model) slideBy(dir int) tea.Cmd {
	_, _, step := m.engine.Limits().Bounds(m.focus)
	current := m.engine.State().Value(m.focus)
	return m.perform(m.engine.Slide(m.focus, current+float64(dir)*step))
}

func (m *model) downloadURL() (string, bool) {
	view := m.engine.View()
	if !view.DownloadVisible || m.config.Renderer == nil {
		return "", false
	}
	return m.config.Renderer.ArtifactURL(view.Artifact, view.Token, true), true
}

func (m *model) export() tea.Cmd {
	view := m.engine.View()
	if !view.DownloadVisible || m.artifactPath == "" {
		return m.setStatus(statusInfo, "Nothing to export yet.")
	}
	manifest := artifact.NewManifest(m.engine.State(), view.Artifact)
	return m.jobs.Start(jobKindExport, view.Artifact, exportJob(m.artifactPath, m.config.OutputDir, manifest))
}

func nextControl(c editor.Control, dir int) editor.Control {
	n := len(editor.Controls)
	idx := 0
	for i, candidate := range editor.Controls {
		if candidate == c {
			idx = i
		}
	}
	return editor.Controls[((idx+dir)%n+n)%n]
}

func modeTitle(mode editor.Mode) string {
	s := mode.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
