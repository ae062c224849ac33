package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/config"
)

const migrationTableName = "migrations"

func main() {
	var (
		migrationsPathFlag string
		down               bool
	)
	flag.String("config", "", "path to config file")
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back all migrations")
	flag.Parse()

	cfg := config.MustLoad()

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	// Создаем объект мигратора
	m, err := migrate.New(
		"file://"+migrationsPath,
		app.DSN(cfg.Database, "x-migrations-table", migrationTableName),
	)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}

	apply := m.Up
	if down {
		apply = m.Down
	}
	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migrations to apply")
		} else {
			log.Fatalf("migration failed: %v", err)
		}
	} else {
		log.Println("Migrations applied successfully")
	}

	if err := printTables(app.DSN(cfg.Database)); err != nil {
		log.Fatal(err)
	}
}

// printTables выводит таблицы схемы public после миграции
func printTables(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		return fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	fmt.Println("Current tables in the database:")
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		fmt.Println(" -", tableName)
	}
	return rows.Err()
}
