// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/*.sql
var sqliteMigrations embed.FS

// RunSQLiteUp applies the embedded SQLite migrations to the database file.
//
// A dedicated connection is used because closing the migrator closes the
// database handle it was given.
func RunSQLiteUp(dbPath string, logger *slog.Logger) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("migration: open sqlite database: %w", err)
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		_ = migrateDB.Close()
		return fmt.Errorf("migration: create sqlite driver: %w", err)
	}

	source, err := iofs.New(sqliteMigrations, "sqlite")
	if err != nil {
		_ = migrateDB.Close()
		return fmt.Errorf("migration: create iofs source: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		_ = migrateDB.Close()
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer closeMigrator(migrator, logger)

	return apply(migrator, logger)
}
