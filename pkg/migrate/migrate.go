package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"strconv"

	"github.com/pressly/goose/v3"

	// database/sql drivers for the standalone migrate binary
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/angelmondragon/trackwise-backend/pkg/config"
)

// DefaultDir is the on-disk root of the per-dialect migration folders.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedded embed.FS

// EmbeddedDir is the directory inside the embedded FS holding driver's migrations.
func EmbeddedDir(driver string) string {
	return path.Join("migrations", driver)
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case config.DBDriverSQLite:
		return "sqlite3", nil
	case config.DBDriverPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported migration driver %q", driver)
	}
}

// prepare points goose at the right dialect and source. An empty dir selects
// the migrations compiled into the binary.
func prepare(driver, dir string) (string, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return "", err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == "" {
		goose.SetBaseFS(embedded)
		return EmbeddedDir(driver), nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}

// OpenSQL opens a plain database/sql handle for cfg, bypassing GORM.
func OpenSQL(cfg config.DBConfig) (*sql.DB, error) {
	var name string
	switch cfg.Driver {
	case config.DBDriverSQLite:
		name = "sqlite3"
	case config.DBDriverPostgres:
		name = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	db, err := sql.Open(name, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return db, nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	source, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, source, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	source, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, source, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, source, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
