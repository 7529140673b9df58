package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity.db")

	db, err := OpenAndMigrate(path)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))

	version, dirty, err := SchemaVersion(db)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)

	for _, table := range []string{"roi_calculations", "offer_interests", "match_acceptances"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
	require.NoError(t, db.Close())

	db, err = OpenAndMigrate(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
