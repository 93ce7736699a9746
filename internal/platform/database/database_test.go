package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	db, cleanup, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.Equal(t, "sqlite", db.Dialector.Name())
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, _, err := Open(context.Background(), Config{Driver: DriverPostgres})
	require.Error(t, err)

	_, _, err = Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	require.ErrorContains(t, err, "unsupported")
}
