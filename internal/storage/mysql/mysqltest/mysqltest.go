// Package mysqltest starts a throwaway MySQL container with the repository
// migrations applied. Tests skip when docker is not reachable.
package mysqltest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	mysqlrepo "review_insights/internal/storage/mysql"
)

// MigrationsDir honours MIGRATIONS_DIR, else the repo's migrations/ folder
// located relative to this file so callers in any package resolve the same path.
func MigrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

func Start(t testing.TB) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=reviews"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	// plain DSN: Open adds the time parsing and multi-statement options
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reviews", resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		if db, e = mysqlrepo.Open(dsn); e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := mysqlrepo.Migrate(context.Background(), db, MigrationsDir()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
