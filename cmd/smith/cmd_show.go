package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"scriptsmith/internal/templates"
)

var showWidth int

// showCmd pretty-prints a script
var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Render a script with syntax highlighting",
	Long: `Renders a script (or the configured starter template when no file is given)
as a highlighted bash block.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var script string
		if len(args) > 0 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			script = string(data)
		} else {
			_, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if script, err = templates.Lookup(cfg.Editor.Template); err != nil {
				return err
			}
		}

		out, err := renderScript(script, showWidth)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	showCmd.Flags().IntVar(&showWidth, "width", 100, "Word wrap width")
}

// renderScript wraps script in a bash fence and renders it for the terminal.
func renderScript(script string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	return r.Render("```bash\n" + script + "```\n")
}
