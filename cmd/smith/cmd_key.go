package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scriptsmith/internal/store"
)

// keyCmd groups credential management
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the generation service API key",
	Long: `The API key is kept in the local credential store, keyed by provider. A key
found in the environment (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY)
takes precedence over the stored one.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [value]",
	Short: "Store the API key (read from stdin when no value is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value string
		if len(args) > 0 {
			value = args[0]
		} else {
			fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
			sc := bufio.NewScanner(cmd.InOrStdin())
			if sc.Scan() {
				value = sc.Text()
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("failed to read key: %w", err)
			}
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("no API key given")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.creds.Save(context.Background(), value); err != nil {
			return err
		}
		logger.Info("API key saved", zap.String("key", a.creds.Key()), zap.String("store", a.kv.Path()))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s key %s\n", a.cfg.Generator.Provider, store.Mask(value))
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the masked API key and where it comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		value, source, err := a.creds.Lookup(context.Background())
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s API key configured\n", a.cfg.Generator.Provider)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", a.cfg.Generator.Provider, store.Mask(value), source)
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.creds.Clear(context.Background()); err != nil {
			return err
		}
		logger.Info("API key removed", zap.String("key", a.creds.Key()))
		fmt.Fprintf(cmd.OutOrStdout(), "Removed stored %s key\n", a.cfg.Generator.Provider)
		return nil
	},
}
