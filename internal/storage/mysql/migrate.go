package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Migrate executes every *.sql file in dir in lexical order and returns how
// many ran. Files must be safe to re-run (CREATE ... IF NOT EXISTS); there is
// no version table. Multi-statement files need multiStatements=true in the DSN.
func Migrate(ctx context.Context, db *sql.DB, dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for i, f := range files {
		stmt, err := os.ReadFile(f)
		if err != nil {
			return i, fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return i, fmt.Errorf("exec %s: %w", filepath.Base(f), err)
		}
	}
	return len(files), nil
}
