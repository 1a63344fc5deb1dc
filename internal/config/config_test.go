package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "pedidos.csv", cfg.Storage.FilePath)
	assert.True(t, cfg.Storage.AutoAssignIDs)
	assert.Equal(t, 4, cfg.Storage.IDPadding)
	assert.Equal(t, "noop", cfg.Cache.Driver, "cache defaults to disabled")
	assert.Equal(t, "noop", cfg.Messaging.Driver, "messaging defaults to disabled")
	assert.Equal(t, "Sheet1", cfg.Export.SheetName)
	assert.Equal(t, "relatorio_pedidos.xlsx", cfg.Export.Filename)
}

func TestUnsupportedStorageDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongodb")

	_, err := New()
	assert.Error(t, err)
}

func TestSQLStorageRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sql")
	t.Setenv("DB_WRITER_DSN", "")

	_, err := New()
	assert.Error(t, err)
}

func TestStorageDriverNormalized(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", " SQL ")
	t.Setenv("DB_WRITER_DSN", "file:pedidos.db")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.Storage.Driver)
}
