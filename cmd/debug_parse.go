package cmd

import (
	"fmt"

	"crm-mailmerge/internal/placeholder"
	"crm-mailmerge/internal/tmplfile"

	"github.com/spf13/cobra"
)

var debugParseCmd = &cobra.Command{
	Use:   "debug-parse <template_file>",
	Short: "Debug: print the placeholders found in a template file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := tmplfile.Source{}.FetchTemplate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		text := tmpl.Text()
		matches := placeholder.Tokenize(text)
		ds := placeholder.ParseAll(text, nil)
		fmt.Fprintf(cmd.ErrOrStderr(), "matches: %d, parsed: %d, malformed: %d\n", len(matches), len(ds), len(matches)-len(ds))
		return writeJSON(cmd.OutOrStdout(), ds)
	},
}

func init() {
	rootCmd.AddCommand(debugParseCmd)
}
