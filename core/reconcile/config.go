package reconcile

import "fmt"

// Config holds the schema reconciliation settings.
type Config struct {
	// RebuildMode is replace or preserve.
	RebuildMode string `mapstructure:"rebuild_mode" default:"replace"`
	// ArchiveDiscarded uploads rows to object storage before they are discarded.
	ArchiveDiscarded bool `mapstructure:"archive_discarded" default:"false"`
	// ArchivePrefix is the object prefix archives are written under.
	ArchivePrefix string `mapstructure:"archive_prefix" default:"discarded"`
	// FailOnDirty makes check exit non-zero when any table drifted.
	FailOnDirty bool `mapstructure:"fail_on_dirty" default:"false"`
	// ReconcileOnStart runs a reconciliation before the HTTP server starts.
	ReconcileOnStart bool `mapstructure:"reconcile_on_start" default:"true"`
}

// Options converts the configuration into reconciler options.
func (c Config) Options(archiver Archiver) (Options, error) {
	mode, ok := ParseMode(c.RebuildMode)
	if !ok {
		return Options{}, fmt.Errorf("invalid rebuild mode %q (want replace or preserve)", c.RebuildMode)
	}
	opts := Options{Mode: mode}
	if c.ArchiveDiscarded {
		opts.Archiver = archiver
	}
	return opts, nil
}
