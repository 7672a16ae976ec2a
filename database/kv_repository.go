package database

import (
	"context"
	"database/sql"
	"errors"
)

func (d *Database) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := `SELECT value FROM kv_store WHERE key = $1`

	err := d.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (d *Database) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_store (key, value, updated_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (key)
			  DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err := d.DB.ExecContext(ctx, query, key, value)
	return err
}
