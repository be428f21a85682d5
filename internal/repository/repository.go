package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Repository is the document store of the site, kept in a SQL database.
// Every collection of the site maps to one table.
type Repository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewRepository connects to the database with the given driver ("postgres" or "sqlite3")
func NewRepository(ctx context.Context, log *slog.Logger, driver, dsn string, maxConn, maxIdleConn int) (*Repository, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite serializes writers; one connection avoids "database is locked"
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(maxConn)
		db.SetMaxIdleConns(maxIdleConn)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(2 * time.Minute)
	}

	return &Repository{db: db, log: log}, nil
}

// NewWithDB wraps an existing connection
func NewWithDB(db *sqlx.DB, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// Migrate creates the tables if they don't already exist.
func (r *Repository) Migrate(ctx context.Context) error {
	const migrationQuery = `
	CREATE TABLE IF NOT EXISTS flats (
		id TEXT PRIMARY KEY,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		area DOUBLE PRECISION NOT NULL DEFAULT 0,
		offer_type TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		location TEXT,
		bedrooms INTEGER NOT NULL DEFAULT 0,
		bathrooms INTEGER NOT NULL DEFAULT 0,
		amenities TEXT NOT NULL DEFAULT '[]',
		image_urls TEXT NOT NULL DEFAULT '[]',
		description TEXT
	);

	CREATE INDEX IF NOT EXISTS flats_price_idx ON flats (price, id);
	CREATE INDEX IF NOT EXISTS flats_area_idx ON flats (area, id);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		favorites TEXT NOT NULL DEFAULT '[]',
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS testimonials (
		id TEXT PRIMARY KEY,
		quote TEXT NOT NULL,
		author TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS inquiries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS apartment_details (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL DEFAULT '',
		built_year INTEGER NOT NULL DEFAULT 0,
		total_flats INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		amenities TEXT NOT NULL DEFAULT '[]'
	);
	`
	if _, err := r.db.ExecContext(ctx, migrationQuery); err != nil {
		return fmt.Errorf("repository.Migrate: failed to execute migration query: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}
	return nil
}

// DB is a getter for the database handle.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}
