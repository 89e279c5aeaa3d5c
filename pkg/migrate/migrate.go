// Package migrate runs the engine_events schema migrations using
// golang-migrate, the same tool and source-from-file layout joripage's
// OMS uses for its own schema.
package migrate

import (
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var mu sync.Mutex

// Up applies every pending migration under sourceURL (e.g.
// "file://migration/sql") to the database at connStr. Safe to call
// from multiple processes racing to migrate on startup — a dirty
// version left over from a prior failed attempt is forced back one
// step before retrying, the same recovery joripage's migrate tool uses.
func Up(sourceURL, connStr string) error {
	mu.Lock()
	defer mu.Unlock()

	mg, err := migrate.New(sourceURL, connStr)
	if err != nil {
		return fmt.Errorf("migrate: new: %w", err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("migrate: version: %w", err)
	}
	if dirty {
		if err := mg.Force(int(version) - 1); err != nil {
			return fmt.Errorf("migrate: force: %w", err)
		}
	}

	if err := mg.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}
