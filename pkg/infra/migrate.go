package infra

import (
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

var migrateMu sync.Mutex

// Migrate runs schema migrations from source (e.g. file://migrations)
// against connStr, serialized process-wide.
func Migrate(source, connStr string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	zap.S().Info("migrating...")

	mg, err := migrate.New(source, connStr)
	if err != nil {
		return err
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return err
	}
	if dirty {
		if err := mg.Force(int(version) - 1); err != nil {
			return err
		}
	}

	if err := mg.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	zap.S().Info("migration done")
	return nil
}
