package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-desk/internal/config"
	"query-desk/internal/repository/sqlstore"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()

	var cfg config.Config
	cfg.Database.Driver = "oracle"
	err := run(cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open database")
}

func TestRunReturnsListenErrorAfterSchemaInit(t *testing.T) {
	logger, _ := test.NewNullLogger()
	dsn := filepath.Join(t.TempDir(), "desk.db")

	var cfg config.Config
	cfg.Server.Addr = "127.0.0.1:-1"
	cfg.Database.Driver = sqlstore.DriverSQLite
	cfg.Database.DSN = dsn

	err := run(cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")

	// run released its pool; the file opens cleanly with the schema in place
	db, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, dsn, 0)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.Get(&tables, `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('login', 'query')`))
	assert.Equal(t, 2, tables)
}
