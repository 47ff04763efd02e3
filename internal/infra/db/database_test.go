package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-tracker/backend/config"
)

func TestNewConnection_SQLite(t *testing.T) {
	database, err := NewConnection(&config.DatabaseConfig{
		Driver:     DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.AutoMigrate())
	assert.True(t, database.HealthCheck())
	assert.True(t, database.DB().Migrator().HasTable("expenses"))
	assert.True(t, database.DB().Migrator().HasTable("budgets"))
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{Driver: "mysql"})

	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
