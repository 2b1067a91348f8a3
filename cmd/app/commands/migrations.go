package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/slimtrack/internal/database"
)

// openMigrator points golang-migrate at basePath/<driver folder>.
func openMigrator(basePath, driver, connectionString string) (*migrate.Migrate, error) {
	dir, err := database.MigrationsDir(driver)
	if err != nil {
		return nil, err
	}

	m, err := migrate.New("file://"+filepath.ToSlash(filepath.Join(basePath, dir)), connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration from basePath for the given driver.
// Having nothing to apply is not an error.
func RunMigrations(logger *slog.Logger, basePath, driver, connectionString string) error {
	m, err := openMigrator(basePath, driver, connectionString)
	if err != nil {
		return err
	}
	defer closeMigrate(m, logger)

	logger.Info("applying migrations", slog.String("driver", driver), slog.String("path", basePath))

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations applied")
	return nil
}

// RollbackMigrations reverts the last steps migrations.
func RollbackMigrations(logger *slog.Logger, basePath, driver, connectionString string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	m, err := openMigrator(basePath, driver, connectionString)
	if err != nil {
		return err
	}
	defer closeMigrate(m, logger)

	logger.Info("reverting migrations", slog.String("driver", driver), slog.Int("steps", steps))

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("failed to revert migrations: %w", err)
	}

	logger.Info("migrations reverted")
	return nil
}

// PrintMigrationVersion writes the applied schema version to w, flagging a
// dirty database left behind by a failed migration.
func PrintMigrationVersion(
	w io.Writer,
	logger *slog.Logger,
	basePath, driver, connectionString string,
) error {
	m, err := openMigrator(basePath, driver, connectionString)
	if err != nil {
		return err
	}
	defer closeMigrate(m, logger)

	version, dirty, err := m.Version()
	return writeMigrationVersion(w, version, dirty, err)
}

func writeMigrationVersion(w io.Writer, version uint, dirty bool, err error) error {
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		_, err = fmt.Fprintln(w, "no migrations applied")
		return err
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case dirty:
		_, err = fmt.Fprintf(w, "version %d (dirty)\n", version)
		return err
	default:
		_, err = fmt.Fprintf(w, "version %d\n", version)
		return err
	}
}
