// Package database opens the PostgreSQL or MySQL pool behind the order store
// and scopes repository calls to transactions.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Supported driver names, as accepted by DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// ErrUnsupportedDriver is returned for any DB_DRIVER other than postgres or mysql.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// migrationDirs maps each driver to its folder under migrations/.
var migrationDirs = map[string]string{
	DriverPostgres: "postgresql",
	DriverMySQL:    "mysql",
}

const pingTimeout = 10 * time.Second

// Config holds the pool settings read from DB_* variables.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// CheckDriver returns ErrUnsupportedDriver unless driver is postgres or mysql.
func CheckDriver(driver string) error {
	if _, ok := migrationDirs[driver]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	return nil
}

// MigrationsDir returns the migrations/ subfolder holding driver's schema.
func MigrationsDir(driver string) (string, error) {
	if err := CheckDriver(driver); err != nil {
		return "", err
	}
	return migrationDirs[driver], nil
}

// Connect opens a pool and pings it, giving up after pingTimeout.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := CheckDriver(cfg.Driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	return db, nil
}

// StatementBuilder returns a squirrel builder with driver's placeholder style.
func StatementBuilder(driver string) squirrel.StatementBuilderType {
	if driver == DriverPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}
