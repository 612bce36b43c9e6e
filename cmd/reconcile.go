package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"enrollment-manager/core/reconcile"
	"enrollment-manager/feature/schemacheck"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileTables []string
	reconcileMode   string
	reconcileJSON   bool
	reconcileOutput string
	reconcileDryRun bool
	yesConfirm      bool
)

// reconcileCmd rebuilds drifted tables.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rebuild tables that drifted from their canonical schema",
	Long: `Checks the governed tables and rebuilds every table that drifted or is missing.

In replace mode a rebuild discards the rows of the old table; preserve mode copies
the columns both shapes share. Enable SCHEMA_ARCHIVE_DISCARDED to upload discarded
rows to object storage first.

Examples:
  # Report what would change
  reconcile --dry-run

  # Rebuild one table, keeping shared columns
  reconcile --table class_assignments --mode preserve

  # Non-interactive, YAML report
  reconcile --yes --output yaml`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringSliceVar(&reconcileTables, "table", nil, "Table to reconcile (repeatable, default: all)")
	reconcileCmd.Flags().StringVar(&reconcileMode, "mode", "", "Rebuild mode: replace or preserve (default: SCHEMA_REBUILD_MODE)")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Print the report as JSON")
	reconcileCmd.Flags().StringVarP(&reconcileOutput, "output", "o", outputText, "Output format: text, json or yaml")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "Only report, do not rebuild")
	reconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm rebuilds that discard data (non-interactive)")
	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, err := outputFormat(reconcileOutput, reconcileJSON)
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	svc, err := rt.service(reconcileMode)
	if err != nil {
		return err
	}

	plan, err := svc.Check(ctx, reconcileTables...)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	if plan.Dirty == 0 || reconcileDryRun {
		if reconcileDryRun {
			rt.logger.Info("Dry-run mode: no changes were made")
		}
		return writeSummary(os.Stdout, rt.logger, format, plan)
	}

	if lossy := discarding(plan); len(lossy) > 0 {
		rt.logger.Warn("Rebuild will discard existing rows", zap.Strings("tables", lossy))
		if !confirmDestructiveAction() {
			rt.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}
	}

	summary, err := svc.Reconcile(ctx, reconcileTables...)
	if err != nil {
		return fmt.Errorf("schema reconciliation aborted: %w", err)
	}
	if err := writeSummary(os.Stdout, rt.logger, format, summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d tables failed to reconcile", summary.Failed)
	}
	return nil
}

// discarding lists the tables whose rebuild would lose data.
func discarding(plan *schemacheck.Summary) []string {
	var tables []string
	for _, r := range plan.Tables {
		if r.Outcome == reconcile.OutcomeDirty && r.RowsBefore > 0 {
			tables = append(tables, r.Table)
		}
	}
	return tables
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Fprintln(os.Stderr, "Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(os.Stderr, "Type 'yes' to confirm rebuilding tables that hold data: ")
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
