package database

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// Database is the PostgreSQL-backed key-value medium. It satisfies
// store.KeyValue so the post and settings stores can live in Postgres.
type Database struct {
	DB *sql.DB
}

func NewDatabase(connStr string) (*Database, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{DB: db}
	if err := database.createTables(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

// NewWithDB wraps an existing handle without running migrations.
func NewWithDB(db *sql.DB) *Database {
	return &Database{DB: db}
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			key VARCHAR(255) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := d.DB.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return nil
}
