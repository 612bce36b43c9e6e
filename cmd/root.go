package cmd

import (
	"fmt"
	"os"

	"enrollment-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "enrollment-manager",
	Short: "Enrollment Manager Service",
	Long: `Enrollment Manager keeps the enrollment database on its canonical schema.
It detects legacy tables, rebuilds them and reports what changed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console output with ISO8601 timestamps reads better on a terminal.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
