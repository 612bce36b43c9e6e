package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"enrollment-manager/feature/schemacheck"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// archivesCmd lists the archived rows of a table.
var archivesCmd = &cobra.Command{
	Use:   "archives <table> [name]",
	Short: "List or print rows archived by destructive rebuilds",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		svc, err := rt.service("")
		if err != nil {
			return err
		}

		if len(args) == 2 {
			doc, err := svc.GetArchive(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}

		objects, err := svc.ListArchives(cmd.Context(), args[0])
		if errors.Is(err, schemacheck.ErrArchivesDisabled) {
			rt.logger.Warn("Archiving is disabled; set SCHEMA_ARCHIVE_DISCARDED=true")
			return nil
		}
		if err != nil {
			return err
		}
		for _, o := range objects {
			rt.logger.Info("Archive", zap.String("key", o.Key), zap.Int64("size", o.Size), zap.Time("modified", o.LastModified))
		}
		rt.logger.Info("Archives listed", zap.String("table", args[0]), zap.Int("count", len(objects)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(archivesCmd)
}
