// Package editor is the interactive host surface for the synthesis engine: a
// bubbletea program with a credential field, an instruction field, the script
// editor and a live preview of the script being revealed.
//
// The bubbletea Update loop is the engine's single thread. Generator calls run as
// tea.Cmds and come back as generatedMsg; reveal ticks are revealTickMsg. Both are
// stamped with the generation they belong to.
package editor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"scriptsmith/cmd/smith/ui"
	"scriptsmith/internal/export"
	"scriptsmith/internal/synth"
	"scriptsmith/internal/watch"
)

// focus identifies the component receiving keystrokes.
type focus int

const (
	focusInstruction focus = iota
	focusEditor
	focusKey
	focusCount
)

// CredentialStore reads and persists the generation service credential.
type CredentialStore interface {
	synth.CredentialSource
	Save(ctx context.Context, value string) error
}

// Options configures a Model.
type Options struct {
	Text           string        // initial buffer
	RevealInterval time.Duration // per unit; <= 0 reveals in one burst of ticks
	Generator      synth.Generator
	Credentials    CredentialStore
	Clipboard      export.Clipboard // nil means the system clipboard
	FilePath       string           // file being edited, "" for a scratch buffer
	ExportPath     string           // Ctrl+S target for a scratch buffer
	Watcher        *watch.FileWatcher
	Provider       string
	Styles         *ui.Styles
}

// eventSink collects controller events between Update calls.
type eventSink struct {
	events []synth.Event
}

func (s *eventSink) push(e synth.Event) { s.events = append(s.events, e) }

func (s *eventSink) drain() []synth.Event {
	out := s.events
	s.events = nil
	return out
}

// Model is the editor's bubbletea model.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl  *synth.Controller
	sink  *eventSink
	gen   synth.Generator
	creds CredentialStore
	clip  export.Clipboard
	watch *watch.FileWatcher

	keyInput    textinput.Model
	instruction textinput.Model
	textarea    textarea.Model
	preview     viewport.Model
	spinner     spinner.Model
	styles      ui.Styles

	focus      focus
	filePath   string
	exportPath string
	provider   string
	hasKey     bool

	status   string
	errMsg   string
	width    int
	height   int
	quitting bool
}

// New builds an editor model.
func New(opts Options) Model {
	styles := ui.DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	sink := &eventSink{}
	interval := opts.RevealInterval
	ctrl := synth.NewController(synth.NewBuffer(opts.Text),
		synth.WithRevealInterval(interval),
		synth.WithObserver(sink.push),
	)

	key := textinput.New()
	key.Placeholder = "Paste your API key"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.CharLimit = 256

	instr := textinput.New()
	instr.Placeholder = "Describe the change, e.g. add menu for Browsers"
	instr.CharLimit = 1000
	instr.Focus()

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.MaxWidth = 0
	ta.SetValue(opts.Text)
	ta.Blur()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	exportPath := opts.ExportPath
	if exportPath == "" {
		exportPath = export.DefaultFileName
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		ctx:         ctx,
		cancel:      cancel,
		ctrl:        ctrl,
		sink:        sink,
		gen:         opts.Generator,
		creds:       opts.Credentials,
		clip:        opts.Clipboard,
		watch:       opts.Watcher,
		keyInput:    key,
		instruction: instr,
		textarea:    ta,
		preview:     viewport.New(80, 20),
		spinner:     sp,
		styles:      styles,
		focus:       focusInstruction,
		filePath:    opts.FilePath,
		exportPath:  exportPath,
		provider:    opts.Provider,
	}
	if m.creds != nil {
		if v, err := m.creds.Credential(ctx); err == nil && v != "" {
			m.hasKey = true
		}
	}
	if !m.hasKey {
		m.setFocus(focusKey)
	}
	m.resize(100, 30)
	m.preview.SetContent(opts.Text)
	return m
}

// Script returns the committed script.
func (m Model) Script() string { return m.ctrl.Buffer().Authoritative() }

// Snapshot exposes the engine view.
func (m Model) Snapshot() synth.Snapshot { return m.ctrl.Snapshot() }

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.keyInput.Blur()
	m.instruction.Blur()
	m.textarea.Blur()
	switch f {
	case focusKey:
		m.keyInput.Focus()
	case focusInstruction:
		m.instruction.Focus()
	case focusEditor:
		m.textarea.Focus()
	}
}

// resize lays the components out for a terminal of w x h cells.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	inner := w - 4
	if inner < 20 {
		inner = 20
	}
	// header, key, instruction, divider, caption, status, footer and panel borders
	body := h - 14
	if body < 5 {
		body = 5
	}
	m.keyInput.Width = inner - 12
	m.instruction.Width = inner - 12
	m.textarea.SetWidth(inner)
	m.textarea.SetHeight(body)
	m.preview.Width = inner
	m.preview.Height = body
}
