package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var composeDraft bool

var composeCmd = &cobra.Command{
	Use:   "compose <module> <record_id> <template_id>",
	Short: "Resolve a CRM email template against a record and print the email payload",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := cmd.Context()
		module, recordID, templateID := args[0], args[1], args[2]

		svc, err := newServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.close()

		subject, err := svc.crm.FetchRecord(ctx, module, recordID)
		if err != nil {
			return fmt.Errorf("fetch %s/%s: %w", module, recordID, err)
		}

		payload, err := svc.engine(cfg, svc.crm).Compose(ctx, subject, templateID)
		if err != nil {
			return err
		}

		if composeDraft {
			id, err := svc.crm.CreateDraftEmail(ctx, payload)
			if err != nil {
				return fmt.Errorf("create draft: %w", err)
			}
			slog.Info("compose: draft created", "email_id", id, "module", module, "record", recordID)
		}
		return writeJSON(cmd.OutOrStdout(), payload)
	},
}

func init() {
	composeCmd.Flags().BoolVar(&composeDraft, "draft", false, "also store the result as a draft email in the CRM")
	rootCmd.AddCommand(composeCmd)
}
