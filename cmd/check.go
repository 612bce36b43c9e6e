package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	checkTables      []string
	checkJSON        bool
	checkOutput      string
	checkFailOnDirty bool
)

// checkCmd diagnoses the governed tables without modifying them.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report schema drift without changing anything",
	Long: `Compares the governed tables with their canonical schema and reports every
discrepancy. Nothing is modified.

Exits non-zero when drift is found and --fail-on-dirty (or SCHEMA_FAIL_ON_DIRTY) is set.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSliceVar(&checkTables, "table", nil, "Table to check (repeatable, default: all)")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", outputText, "Output format: text, json or yaml")
	checkCmd.Flags().BoolVar(&checkFailOnDirty, "fail-on-dirty", false, "Exit non-zero when any table drifted")
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(checkOutput, checkJSON)
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	svc, err := rt.service("")
	if err != nil {
		return err
	}

	summary, err := svc.Check(cmd.Context(), checkTables...)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	if err := writeSummary(os.Stdout, rt.logger, format, summary); err != nil {
		return err
	}

	if summary.Dirty > 0 && (checkFailOnDirty || rt.cfg.Schema.FailOnDirty) {
		return fmt.Errorf("schema drift detected in %d tables", summary.Dirty)
	}
	return nil
}
