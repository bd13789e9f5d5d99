package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.DB().Ping())
	assert.Equal(t, "sqlite3", db.Dialect().GetName())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "root@/menu")
	assert.Error(t, err)
}
