package editor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scriptsmith/internal/synth"
)

// View renders the editor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.styles
	snap := m.ctrl.Snapshot()

	var b strings.Builder

	title := "scriptsmith"
	if m.filePath != "" {
		title += " · " + filepath.Base(m.filePath)
	}
	header := s.Header.Render(title)
	if m.provider != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", s.Badge.Render(m.provider))
	}
	b.WriteString(header + "\n\n")

	keyLabel := "API key"
	if m.hasKey {
		keyLabel += " " + s.Success.Render("✓")
	}
	b.WriteString(m.field(keyLabel, m.keyInput.View(), m.focus == focusKey) + "\n")
	b.WriteString(m.field("Change", m.instruction.View(), m.focus == focusInstruction) + "\n")
	b.WriteString(s.RenderDivider(m.width-2) + "\n")

	caption := "Script"
	if snap.Busy {
		caption = "Preview"
	}
	b.WriteString(s.Title.Render(caption) + "\n")
	if snap.Busy {
		b.WriteString(s.Preview.Render(m.preview.View()))
	} else if m.focus == focusEditor {
		b.WriteString(s.FocusedPanel.Render(m.textarea.View()))
	} else {
		b.WriteString(s.Panel.Render(m.textarea.View()))
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine(snap) + "\n")
	b.WriteString(s.Footer.Render("tab focus · enter submit · esc cancel · ctrl+s save · ctrl+y copy · ctrl+c quit"))
	return b.String()
}

func (m Model) field(label, input string, focused bool) string {
	l := m.styles.Muted.Render(fmt.Sprintf("%-10s", label))
	if focused {
		l = m.styles.Label.Render(fmt.Sprintf("%-10s", label))
	}
	return l + " " + input
}

func (m Model) statusLine(snap synth.Snapshot) string {
	s := m.styles
	switch {
	case m.errMsg != "":
		return s.Error.Render(m.errMsg)
	case snap.State == synth.Requesting:
		return m.spinner.View() + " " + s.Info.Render(m.status)
	case snap.State == synth.Revealing:
		return m.spinner.View() + " " + s.Info.Render(fmt.Sprintf("%s %d/%d", m.status, snap.Position, snap.Length))
	case m.status == synth.MsgCancelled || strings.HasPrefix(m.status, reloadedPrefix):
		return s.Warning.Render(m.status)
	case m.status != "":
		return s.Success.Render(m.status)
	default:
		return s.Muted.Render(fmt.Sprintf("%d lines", strings.Count(snap.Authoritative, "\n")))
	}
}
