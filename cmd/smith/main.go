package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	provider   string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "smith [file]",
	Short: "scriptsmith - grow shell scripts by asking for changes",
	Long: `scriptsmith edits a shell script by sending it, together with a plain-language
request, to a text-generation service. The service returns the complete new
script, which is revealed as it is written and then replaces the buffer.

Run without arguments to open the interactive editor on a new script.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive editor owns the terminal; it logs to files only.
		if name := cmd.Name(); name == "smith" || name == "edit" {
			logger = zap.NewNop()
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runEditor,
}

// editCmd opens the editor on a file
var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Open the interactive editor",
	Long: `Opens the interactive editor. With a file argument the script is loaded from
(and saved back to) that file, and external edits to it are picked up.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEditor,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.smith/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Generation provider: gemini, openai or anthropic")

	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Script to modify (default: the configured starter template)")
	applyCmd.Flags().BoolVar(&applyWrite, "write", false, "Write the result back to --file (or the export path)")
	applyCmd.Flags().BoolVar(&applyInstant, "instant", false, "Skip the paced reveal")
	applyCmd.Flags().StringVarP(&applyTemplate, "template", "t", "", "Starter template when no --file is given")

	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)

	rootCmd.AddCommand(
		editCmd,
		applyCmd,
		keyCmd,
		showCmd,
		templatesCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
