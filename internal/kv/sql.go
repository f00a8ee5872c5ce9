package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQL keeps the key space in a single MySQL table:
//
//	menu_kv(k VARCHAR(191) PRIMARY KEY, v MEDIUMTEXT)
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL { return &SQL{db: db} }

// EnsureSchema creates the table when it does not exist.
func (s *SQL) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS menu_kv (
	             k VARCHAR(191) NOT NULL PRIMARY KEY,
	             v MEDIUMTEXT NOT NULL,
	             updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	           ) CHARACTER SET utf8mb4`
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT v FROM menu_kv WHERE k = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mysql get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	const q = `INSERT INTO menu_kv (k, v) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE v = VALUES(v)`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("mysql set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := "DELETE FROM menu_kv WHERE k IN (?" + strings.Repeat(",?", len(keys)-1) + ")"
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("mysql delete: %w", err)
	}
	return nil
}
