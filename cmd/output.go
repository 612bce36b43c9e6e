package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"enrollment-manager/feature/schemacheck"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func outputFormat(format string, asJSON bool) (string, error) {
	if asJSON {
		return outputJSON, nil
	}
	switch format {
	case "", outputText:
		return outputText, nil
	case outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// writeSummary prints summary as JSON or YAML to w, or through the logger for text.
func writeSummary(w io.Writer, l *zap.Logger, format string, summary *schemacheck.Summary) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(summary)
	}

	for _, r := range summary.Tables {
		fields := []zap.Field{
			zap.String("table", r.Table),
			zap.String("outcome", string(r.Outcome)),
			zap.Int("discrepancies", r.DiscrepanciesFound),
		}
		if r.RowsBefore > 0 {
			fields = append(fields, zap.Int64("rows", r.RowsBefore))
		}
		if r.DataDiscarded {
			fields = append(fields, zap.Bool("data_discarded", true))
		}
		if r.ArchiveKey != "" {
			fields = append(fields, zap.String("archive", r.ArchiveKey))
		}
		if r.Error != "" {
			fields = append(fields, zap.String("error", r.Error))
		}
		l.Info("Table report", fields...)
		for _, d := range r.Discrepancies {
			l.Info("  Discrepancy", zap.String("table", r.Table), zap.String("kind", string(d.Kind)), zap.String("detail", d.Detail))
		}
	}
	l.Info("Summary", zap.Int("tables", len(summary.Tables)), zap.Int("dirty", summary.Dirty), zap.Int("failed", summary.Failed))
	return nil
}
