package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templatesLimit int

var templatesCmd = &cobra.Command{
	Use:   "templates <module>",
	Short: "List CRM email templates available for a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := cmd.Context()

		svc, err := newServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.close()

		list, err := svc.crm.ListTemplates(ctx, args[0], templatesLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, t := range list {
			fmt.Fprintf(out, "%s\t%s\t%s\n", t.ID, t.Name, t.Subject)
		}
		if len(list) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "no templates for module %s\n", args[0])
		}
		return nil
	},
}

func init() {
	templatesCmd.Flags().IntVar(&templatesLimit, "limit", 50, "maximum number of templates to list")
	rootCmd.AddCommand(templatesCmd)
}
