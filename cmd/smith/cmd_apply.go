package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scriptsmith/internal/export"
	"scriptsmith/internal/synth"
)

var (
	applyFile     string
	applyWrite    bool
	applyInstant  bool
	applyTemplate string
)

// applyCmd runs one synthesis without the editor
var applyCmd = &cobra.Command{
	Use:   "apply [instruction...]",
	Short: "Apply one change request and print the resulting script",
	Long: `Sends the script (from --file, or a starter template) and the instruction to
the generation service, waits for the reveal to finish and prints the new script.

Example:
  smith apply -f setup.sh --write "add menu for Browsers"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	base, err := a.initialScript(applyFile, applyTemplate)
	if err != nil {
		return err
	}
	instruction := strings.Join(args, " ")

	interval := a.cfg.GetRevealInterval()
	if applyInstant {
		interval = 0
	}
	events := make(chan synth.Event, 16)
	ctrl := synth.NewController(synth.NewBuffer(base),
		synth.WithRevealInterval(interval),
		synth.WithObserver(func(e synth.Event) { events <- e }),
	)
	runner := synth.NewRunner(ctrl, a.gen, a.creds)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stopRunner := context.WithCancel(gctx)

	g.Go(func() error {
		err := runner.Run(runCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer stopRunner()
		if err := runner.Submit(gctx, instruction); err != nil {
			return errors.New(synth.Describe(err))
		}
		for {
			select {
			case ev := <-events:
				logger.Debug("Synthesis event",
					zap.Stringer("kind", ev.Kind),
					zap.Uint64("generation", ev.Generation),
					zap.String("request", ev.RequestID.String()))
				switch ev.Kind {
				case synth.EventStarted:
					logger.Info(ev.Message, zap.String("instruction", instruction))
				case synth.EventCompleted:
					logger.Info(ev.Message)
					return nil
				case synth.EventFailed:
					return fmt.Errorf("%s (%w)", ev.Message, ev.Err)
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New(synth.MsgCancelled)
		}
		return err
	}

	// The loop has exited; the controller is ours now.
	script := ctrl.Buffer().Authoritative()
	if applyWrite {
		target := applyFile
		if target == "" {
			target = a.cfg.Editor.ExportPath
		}
		path, err := export.WriteFile(target, script)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), script)
	return nil
}
