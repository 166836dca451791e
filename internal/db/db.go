package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/constants"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

func InitDB(cfg *config.Config, logger zerolog.Logger) (*sqlx.DB, error) {
	db, err := Open(cfg.Database.Path + "?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", cfg.Database.Path).Msg("database connected")
	return db, nil
}

// Open connects to a SQLite database with foreign keys enforced. SQLite allows
// one writer, so the pool is capped to a single connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded migrations. The migrate instance is not
// closed because that would close db as well.
func RunMigrations(db *sqlx.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
