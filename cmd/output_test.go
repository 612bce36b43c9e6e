package cmd

import (
	"bytes"
	"testing"

	"enrollment-manager/core/reconcile"
	"enrollment-manager/core/schema"
	"enrollment-manager/feature/schemacheck"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
)

func sampleSummary() *schemacheck.Summary {
	return &schemacheck.Summary{
		Tables: []*reconcile.Report{
			{Table: "users", Outcome: reconcile.OutcomeNoop},
			{
				Table:              "class_assignments",
				Outcome:            reconcile.OutcomeDirty,
				DiscrepanciesFound: 1,
				Discrepancies: []schema.Discrepancy{
					{Kind: schema.ForbiddenColumnPresent, Detail: "column teacher must not exist"},
				},
				RowsBefore: 3,
			},
			{Table: "sections", Outcome: reconcile.OutcomeMissing},
		},
		Dirty: 2,
	}
}

func TestOutputFormat(t *testing.T) {
	f, err := outputFormat("", false)
	require.NoError(t, err)
	assert.Equal(t, outputText, f)

	f, err = outputFormat("yaml", true)
	require.NoError(t, err)
	assert.Equal(t, outputJSON, f, "--json wins")

	_, err = outputFormat("xml", false)
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, zap.NewNop(), outputYAML, sampleSummary()))

		var decoded struct {
			Tables []struct {
				Table   string `yaml:"table"`
				Outcome string `yaml:"outcome"`
			} `yaml:"tables"`
			Dirty int `yaml:"dirty"`
		}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, 2, decoded.Dirty)
		assert.Equal(t, "dirty", decoded.Tables[1].Outcome)
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, zap.NewNop(), outputJSON, sampleSummary()))
		assert.Contains(t, buf.String(), `"outcome": "dirty"`)
		assert.Contains(t, buf.String(), `"kind": "forbidden_column_present"`)
	})

	t.Run("Text", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		var buf bytes.Buffer
		require.NoError(t, writeSummary(&buf, zap.New(core), outputText, sampleSummary()))

		assert.Empty(t, buf.String())
		assert.Equal(t, 3, logs.FilterMessage("Table report").Len())
		assert.Equal(t, 1, logs.FilterMessage("  Discrepancy").Len())
		assert.Equal(t, 1, logs.FilterMessage("Summary").Len())
	})
}

func TestDiscarding(t *testing.T) {
	assert.Equal(t, []string{"class_assignments"}, discarding(sampleSummary()))
}
