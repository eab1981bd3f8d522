package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scriptsmith/internal/templates"
)

// templatesCmd lists or prints the starter templates
var templatesCmd = &cobra.Command{
	Use:   "templates [name]",
	Short: "List starter templates, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			text, err := templates.Lookup(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}
		for _, name := range templates.Names() {
			marker := " "
			if name == templates.Default {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		return nil
	},
}
