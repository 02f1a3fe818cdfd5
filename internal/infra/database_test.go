package infra

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLiteMigrates(t *testing.T) {
	db, err := NewDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared&_foreign_keys=on")
	require.NoError(t, err)

	for _, table := range ExpectedTables {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex("quotes", "idx_quotes_created_id"))

	// second run is a no-op
	require.NoError(t, RunMigrations(db))
}

func TestNewDatabase_UnknownDriver(t *testing.T) {
	_, err := NewDatabase("oracle", "whatever")
	assert.Error(t, err)
}

func TestNewRedis_EmptyURLDisables(t *testing.T) {
	rdb, err := NewRedis("")
	require.NoError(t, err)
	assert.Nil(t, rdb)
}
