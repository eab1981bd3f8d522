package editor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"scriptsmith/internal/export"
	"scriptsmith/internal/logging"
	"scriptsmith/internal/synth"
	"scriptsmith/internal/watch"
)

// =============================================================================
// MESSAGES
// =============================================================================

type generatedMsg struct{ res synth.Result }

type revealTickMsg struct{ gen uint64 }

type keySavedMsg struct{ err error }

type exportedMsg struct {
	path string
	err  error
}

type copiedMsg struct{ err error }

type fileChangedMsg struct{ change watch.Change }

type watcherClosedMsg struct{}

const reloadedPrefix = "Reloaded "

// =============================================================================
// COMMANDS
// =============================================================================

func generateCmd(req synth.Request, gen synth.Generator, creds synth.CredentialSource) tea.Cmd {
	return func() tea.Msg {
		return generatedMsg{res: synth.Dispatch(req, gen, creds)}
	}
}

func revealTickCmd(gen uint64, interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return func() tea.Msg { return revealTickMsg{gen: gen} }
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return revealTickMsg{gen: gen} })
}

func waitForChange(w *watch.FileWatcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-w.Changes()
		if !ok {
			return watcherClosedMsg{}
		}
		return fileChangedMsg{change: c}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Init starts the spinner and the file watcher pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.watch))
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.syncPreview()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case generatedMsg:
		if !m.ctrl.Resolve(msg.res) {
			return m, nil
		}
		m.applyEvents()
		// A failure restores the preview, possibly over a superseded partial reveal.
		m.syncPreview()
		if m.ctrl.State() != synth.Revealing {
			return m, nil
		}
		return m, revealTickCmd(m.ctrl.Generation(), m.ctrl.Interval())

	case revealTickMsg:
		if !m.ctrl.Advance(synth.Tick{Generation: msg.gen}) {
			return m, nil
		}
		m.applyEvents()
		m.syncPreview()
		if m.ctrl.State() == synth.Revealing {
			return m, revealTickCmd(msg.gen, m.ctrl.Interval())
		}
		return m, nil

	case keySavedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Failed to save API key: %v", msg.err)
			return m, nil
		}
		m.hasKey = true
		m.errMsg = ""
		m.status = "API key saved"
		m.keyInput.SetValue("")
		m.setFocus(focusInstruction)
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
			m.status = "Saved " + msg.path
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
			m.status = "Copied to clipboard"
		}
		return m, nil

	case fileChangedMsg:
		if msg.change.Content != m.ctrl.Buffer().Authoritative() {
			logging.Editor("Reloading %s after external edit", msg.change.Path)
			m.ctrl.Edit(msg.change.Content)
			m.applyEvents()
			m.textarea.SetValue(msg.change.Content)
			m.syncPreview()
			m.status = reloadedPrefix + filepath.Base(msg.change.Path)
		}
		return m, waitForChange(m.watch)

	case watcherClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.ctrl.Cancel()
		m.cancel()
		m.quitting = true
		return m, tea.Quit

	case tea.KeyTab:
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil

	case tea.KeyShiftTab:
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil

	case tea.KeyEsc:
		if m.ctrl.Cancel() {
			m.applyEvents()
			m.syncEditor()
		}
		return m, nil

	case tea.KeyCtrlS:
		return m, m.exportCmd()

	case tea.KeyCtrlY:
		text, clip := m.ctrl.Buffer().Authoritative(), m.clip
		return m, func() tea.Msg { return copiedMsg{err: export.Copy(clip, text)} }

	case tea.KeyEnter:
		switch m.focus {
		case focusKey:
			return m.saveKey()
		case focusInstruction:
			return m.submit()
		}
	}

	return m.routeKey(msg)
}

// routeKey forwards a keystroke to the focused component.
func (m Model) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusKey:
		m.keyInput, cmd = m.keyInput.Update(msg)
	case focusInstruction:
		m.instruction, cmd = m.instruction.Update(msg)
	case focusEditor:
		before := m.textarea.Value()
		m.textarea, cmd = m.textarea.Update(msg)
		if after := m.textarea.Value(); after != before {
			m.ctrl.Edit(after)
			m.applyEvents()
			m.syncPreview()
		}
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.ctrl.Submit(m.ctx, m.instruction.Value())
	if err != nil {
		m.errMsg = synth.Describe(err)
		return m, nil
	}
	m.applyEvents()
	m.syncPreview()
	logging.Editor("Submitted gen=%d: %q", req.Generation, req.Instruction)
	return m, generateCmd(req, m.gen, m.creds)
}

func (m Model) saveKey() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.keyInput.Value())
	if value == "" {
		m.errMsg = "Please enter an API key"
		return m, nil
	}
	if m.creds == nil {
		m.errMsg = "No credential store configured"
		return m, nil
	}
	ctx, creds := m.ctx, m.creds
	return m, func() tea.Msg { return keySavedMsg{err: creds.Save(ctx, value)} }
}

func (m Model) exportCmd() tea.Cmd {
	path := m.filePath
	if path == "" {
		path = m.exportPath
	}
	text := m.ctrl.Buffer().Authoritative()
	if m.watch != nil && m.watch.Path() == absPath(path) {
		m.watch.Seed(text)
	}
	return func() tea.Msg {
		abs, err := export.WriteFile(path, text)
		return exportedMsg{path: abs, err: err}
	}
}

// applyEvents folds controller events into the status and error lines.
func (m *Model) applyEvents() {
	for _, ev := range m.sink.drain() {
		switch ev.Kind {
		case synth.EventStarted:
			m.errMsg = ""
			m.status = ev.Message
		case synth.EventRevealing:
			m.status = "Writing script..."
		case synth.EventCompleted:
			m.status = ev.Message
			m.instruction.SetValue("")
			m.syncEditor()
		case synth.EventFailed:
			m.status = ""
			m.errMsg = ev.Message
		case synth.EventCancelled:
			m.status = ev.Message
		}
	}
}

// syncEditor reloads the textarea from the committed script.
func (m *Model) syncEditor() {
	if auth := m.ctrl.Buffer().Authoritative(); m.textarea.Value() != auth {
		m.textarea.SetValue(auth)
	}
	m.syncPreview()
}

func (m *Model) syncPreview() {
	m.preview.SetContent(m.ctrl.Buffer().Preview())
	if m.ctrl.State() == synth.Revealing {
		m.preview.GotoBottom()
	}
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
