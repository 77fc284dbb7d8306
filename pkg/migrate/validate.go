package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every .sql file in dir. All problems are reported
// together.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	return validateFS(os.DirFS(dir), ".")
}

// ValidateEmbedded checks the migrations compiled in for driver.
func ValidateEmbedded(driver string) error {
	if _, err := gooseDialect(driver); err != nil {
		return err
	}
	return validateFS(embedded, EmbeddedDir(driver))
}

func validateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	byVersion := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}

		match := migrationFileRe.FindStringSubmatch(name)
		if match == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: filename must look like YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		if other, dup := byVersion[match[1]]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s already used by %s", name, match[1], other))
		}
		byVersion[match[1]] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkAnnotations(name, string(body)))
	}
	return errs
}

func checkAnnotations(name, body string) error {
	up := strings.Index(body, gooseUp)
	down := strings.Index(body, gooseDown)
	switch {
	case up < 0:
		return fmt.Errorf("%s: missing %q", name, gooseUp)
	case down < 0:
		return fmt.Errorf("%s: missing %q", name, gooseDown)
	case down < up:
		return fmt.Errorf("%s: %q must come before %q", name, gooseUp, gooseDown)
	}
	return nil
}
