package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"crm-mailmerge/internal/model"
	"crm-mailmerge/internal/tmplfile"

	"github.com/spf13/cobra"
)

var (
	renderModule     string
	renderRecord     string
	renderRecordFile string
)

var renderCmd = &cobra.Command{
	Use:   "render <template_file>",
	Short: "Resolve a local template file against a record and print the email payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := cmd.Context()
		path := args[0]

		svc, err := newServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.close()

		var subject model.Record
		switch {
		case renderRecordFile != "":
			b, err := os.ReadFile(renderRecordFile)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(b, &subject); err != nil {
				return fmt.Errorf("parse %s: %w", renderRecordFile, err)
			}
			if renderModule != "" {
				subject.Module = renderModule
			}
			if renderRecord != "" {
				subject.ID = renderRecord
			}
		case renderModule != "" && renderRecord != "":
			subject, err = svc.crm.FetchRecord(ctx, renderModule, renderRecord)
			if err != nil {
				return fmt.Errorf("fetch %s/%s: %w", renderModule, renderRecord, err)
			}
		default:
			return errors.New("either --record-file or both --module and --record are required")
		}

		// Paths that do not exist as given are looked up in the templates dir.
		src := tmplfile.Source{}
		if _, err := os.Stat(path); err != nil {
			src.Dir = cfg.Compose.TemplatesDir
		}

		payload, err := svc.engine(cfg, src).Compose(ctx, subject, path)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), payload)
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderModule, "module", "", "subject record module, e.g. Contacts")
	renderCmd.Flags().StringVar(&renderRecord, "record", "", "subject record id")
	renderCmd.Flags().StringVar(&renderRecordFile, "record-file", "", "read the subject record from a JSON file instead of the CRM")
	rootCmd.AddCommand(renderCmd)
}
