package database_test

import (
	"errors"
	"testing"

	"enrollment-manager/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := database.Config{
			Driver:         database.DriverMySQL,
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "enrollment",
			TimeoutSeconds: 1,
		}

		db, err := database.Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
		assert.Nil(t, db)
	})

	t.Run("SQLite Memory", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, "sqlite", db.Dialector.Name())

		d, err := database.DialectFor(db)
		require.NoError(t, err)
		assert.True(t, d.TransactionalDDL())
	})
}

func TestIsAlreadyExistsError(t *testing.T) {
	assert.True(t, database.IsAlreadyExistsError(errors.New("index idx_users_email already exists")))
	assert.True(t, database.IsAlreadyExistsError(errors.New("Error 1061 (42000): Duplicate key name 'idx_users_email'")))
	assert.False(t, database.IsAlreadyExistsError(assert.AnError))
	assert.False(t, database.IsAlreadyExistsError(nil))
}
