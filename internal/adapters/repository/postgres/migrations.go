package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migration returns the content of the first migration file whose name ends
// in name.sql.
func Migration(name string) ([]byte, error) {
	pattern, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(name)))
	if err != nil {
		return nil, err
	}

	files, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if !f.IsDir() && pattern.MatchString(f.Name()) {
			return fs.ReadFile(migrations, "migrations/"+f.Name())
		}
	}

	return nil, fmt.Errorf("migration file not found: %s", name)
}

// MigrateUp applies every up migration in file name order.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	files, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return err
	}

	var names []string
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".up.sql") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := fs.ReadFile(migrations, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return nil
}
