package reconcile

import (
	"time"

	"enrollment-manager/core/schema"
)

// Outcome is the terminal state of a single table reconciliation.
type Outcome string

const (
	// OutcomeNoop means the table already matched its canonical schema.
	OutcomeNoop Outcome = "noop"
	// OutcomeFixed means a drifted table was rebuilt and verified.
	OutcomeFixed Outcome = "fixed"
	// OutcomeCreated means a missing table was created and verified.
	OutcomeCreated Outcome = "created"
	// OutcomeSkipped means the store dialect is not handled.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the rebuild or its verification failed.
	OutcomeFailed Outcome = "failed"

	// OutcomeDirty is reported by Check when drift was found.
	OutcomeDirty Outcome = "dirty"
	// OutcomeMissing is reported by Check when the table does not exist.
	OutcomeMissing Outcome = "missing"
)

// Mode selects how a rebuild treats the rows of the table it replaces.
type Mode string

const (
	// ModeCreate builds a table that did not exist.
	ModeCreate Mode = "create"
	// ModeReplace drops the table and every row in it.
	ModeReplace Mode = "replace"
	// ModePreserve copies rows over for the columns both shapes share.
	ModePreserve Mode = "preserve"
)

// ParseMode validates a rebuild mode coming from configuration or flags.
func ParseMode(value string) (Mode, bool) {
	switch Mode(value) {
	case ModeReplace, ModePreserve:
		return Mode(value), true
	case "":
		return ModeReplace, true
	default:
		return "", false
	}
}

// Report describes what one reconciliation did to one table.
type Report struct {
	Table   string  `json:"table" yaml:"table"`
	Dialect string  `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Mode    Mode    `json:"mode,omitempty" yaml:"mode,omitempty"`

	DiscrepanciesFound int                  `json:"discrepanciesFound" yaml:"discrepancies_found"`
	Discrepancies      []schema.Discrepancy `json:"discrepancies,omitempty" yaml:"discrepancies,omitempty"`
	// Remaining holds what verification still found after a rebuild.
	Remaining []schema.Discrepancy `json:"remaining,omitempty" yaml:"remaining,omitempty"`

	RowsBefore    int64  `json:"rowsBefore" yaml:"rows_before"`
	RowsDiscarded int64  `json:"rowsDiscarded" yaml:"rows_discarded"`
	RowsPreserved int64  `json:"rowsPreserved" yaml:"rows_preserved"`
	DataDiscarded bool   `json:"dataDiscarded" yaml:"data_discarded"`
	ArchiveKey    string `json:"archiveKey,omitempty" yaml:"archive_key,omitempty"`

	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	err error
}

// Err returns the failure behind a failed outcome, if any.
func (r *Report) Err() error { return r.err }

// Dirty reports whether the table needed, or still needs, work.
func (r *Report) Dirty() bool {
	switch r.Outcome {
	case OutcomeNoop, OutcomeSkipped:
		return false
	default:
		return true
	}
}

func (r *Report) fail(err error) {
	r.Outcome = OutcomeFailed
	r.err = err
	r.Error = err.Error()
}

// Options tune a Reconciler.
type Options struct {
	// Mode is the rebuild mode applied to drifted tables.
	Mode Mode
	// Archiver, when set, receives discarded rows before a destructive rebuild.
	Archiver Archiver
}
