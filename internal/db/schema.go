package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user'
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 10
	)`,
	`CREATE TABLE IF NOT EXISTS cart (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_email TEXT NOT NULL,
		book_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		UNIQUE (user_email, book_id)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user'
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 10
	)`,
	`CREATE TABLE IF NOT EXISTS cart (
		id BIGSERIAL PRIMARY KEY,
		user_email TEXT NOT NULL,
		book_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		UNIQUE (user_email, book_id)
	)`,
}

// Migrate creates the users, books and cart tables when they are absent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := sqliteSchema
	if db.DriverName() == DriverPostgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: migrate: %w", err)
		}
	}
	return nil
}
