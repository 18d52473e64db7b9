package repository

import (
	"fmt"
	"log"
	"time"

	"goingmarry-api/internal/config"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver - no CGO required
)

// Open connects to the configured database backend and ensures the schema
// exists. Queries throughout this package are written with `?` placeholders
// and rebound per driver, so the same repositories run against SQLite,
// PostgreSQL and MySQL.
func Open(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Type {
	case "postgres", "postgresql":
		db, err = sqlx.Open("postgres", cfg.PostgresDSN())
		if err == nil {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(10)
			db.SetConnMaxLifetime(5 * time.Minute)
		}
	case "mysql":
		db, err = sqlx.Open("mysql", cfg.MySQLDSN())
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)
		}
	default: // sqlite
		dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", cfg.Path)
		db, err = sqlx.Open("sqlite", dsn)
		if err == nil {
			// SQLite only supports 1 writer
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
			db.SetConnMaxLifetime(0)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Type, err)
	}

	if err := EnsureSchema(db); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Printf("[repository] %s database initialized", cfg.Type)
	return db, nil
}

// EnsureSchema creates the sellers and products tables and applies the
// additive column migrations. Safe to run on every startup.
func EnsureSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sellers (
			id TEXT PRIMARY KEY,
			name TEXT,
			email TEXT UNIQUE,
			boutiqueName TEXT,
			password TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT,
			description TEXT,
			price REAL,
			category TEXT,
			condition TEXT,
			imageUrl TEXT,
			seller TEXT,
			sellerId TEXT,
			createdAt BIGINT
		)`,
	}
	if db.DriverName() == "mysql" {
		// MySQL needs sized key columns.
		statements = []string{
			`CREATE TABLE IF NOT EXISTS sellers (
				id VARCHAR(64) PRIMARY KEY,
				name TEXT,
				email VARCHAR(255) UNIQUE,
				boutiqueName TEXT,
				password TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS products (
				id VARCHAR(64) PRIMARY KEY,
				name TEXT,
				description TEXT,
				price DOUBLE,
				category TEXT,
				condition_label TEXT,
				imageUrl TEXT,
				seller TEXT,
				sellerId VARCHAR(64),
				createdAt BIGINT
			)`,
		}
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	migrate(db)
	return nil
}

// migrate applies additive column changes. Each ALTER fails once the column
// exists; those errors are expected and swallowed, which keeps the
// migrations idempotent across restarts and backends.
func migrate(db *sqlx.DB) {
	alters := []string{
		`ALTER TABLE sellers ADD COLUMN isAdmin INTEGER DEFAULT 0`,
		`ALTER TABLE products ADD COLUMN isSold INTEGER DEFAULT 0`,
		`ALTER TABLE products ADD COLUMN quantity INTEGER DEFAULT 1`,
		`ALTER TABLE products ADD COLUMN notes TEXT`,
	}
	for _, stmt := range alters {
		if _, err := db.Exec(stmt); err != nil {
			continue
		}
	}

	// Resync denormalized seller labels with current boutique names, in case
	// a previous deployment wrote listings before the rename cascade existed.
	resync := `UPDATE products SET seller = (SELECT boutiqueName FROM sellers WHERE sellers.id = products.sellerId)
		WHERE sellerId IN (SELECT id FROM sellers)`
	if _, err := db.Exec(resync); err != nil {
		log.Printf("[repository] seller label resync skipped: %v", err)
	}
}

// condCol returns the condition column name for the active backend.
// MySQL reserves CONDITION as a keyword.
func condCol(db *sqlx.DB) string {
	if db.DriverName() == "mysql" {
		return "condition_label"
	}
	return `condition`
}
