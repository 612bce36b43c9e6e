package reconcile

import (
	"errors"

	"enrollment-manager/core/database"
)

var (
	// ErrStoreUnavailable is returned when the store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrIntrospection is returned when the store's catalog cannot be read.
	ErrIntrospection = database.ErrIntrospection
	// ErrRebuild marks a rebuild that failed and was rolled back.
	ErrRebuild = errors.New("table rebuild failed")
	// ErrVerification marks a rebuild whose result still differs from the canonical schema.
	ErrVerification = errors.New("post-rebuild verification failed")
	// ErrArchive marks discarded rows that could not be archived; the rebuild is abandoned.
	ErrArchive = errors.New("archiving discarded rows failed")
	// ErrReferenced is returned when a rename swap would carry other tables'
	// foreign keys along to the retired table.
	ErrReferenced = errors.New("table is referenced by foreign keys")
)
