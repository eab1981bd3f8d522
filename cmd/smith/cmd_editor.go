package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"scriptsmith/cmd/smith/editor"
	"scriptsmith/internal/logging"
	"scriptsmith/internal/watch"
)

// runEditor opens the interactive editor, optionally on a file.
func runEditor(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var file string
	if len(args) > 0 {
		file = args[0]
	}
	text, err := a.initialScript(file, "")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var w *watch.FileWatcher
	if file != "" && a.cfg.Editor.Watch {
		w, err = watch.New(file, 0)
		if err == nil {
			w.Seed(text)
			if err = w.Start(ctx); err != nil {
				w.Stop()
			}
		}
		if err != nil {
			logging.Get(logging.CategoryWatch).Warn("Not watching %s: %v", file, err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	m := editor.New(editor.Options{
		Text:           text,
		RevealInterval: a.cfg.GetRevealInterval(),
		Generator:      a.gen,
		Credentials:    a.creds,
		FilePath:       file,
		ExportPath:     a.cfg.Editor.ExportPath,
		Watcher:        w,
		Provider:       a.gen.Provider(),
	})

	logging.Editor("Starting editor (file=%q, %d bytes)", file, len(text))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}
