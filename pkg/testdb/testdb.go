// Package testdb opens migrated in-memory SQLite databases for package tests.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/migrate"
)

// New returns a client over a private in-memory database with every embedded
// migration applied. The pool is capped at one connection like the runtime
// SQLite setup.
func New(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	goose.SetLogger(goose.NopLogger())
	require.NoError(t, migrate.Run(context.Background(), sqlDB, config.DBDriverSQLite, "", "up"))

	return db.NewFromGorm(conn, config.DBDriverSQLite)
}
