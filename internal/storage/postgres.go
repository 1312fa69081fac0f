package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	connectAttempts = 10
	connectBackoff  = 3 * time.Second
)

// Postgres stores values in a shared database, for kiosk installs where the
// learner profile must survive a machine swap.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects to dsn, retrying while the database is starting up.
func NewPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres storage requires STORAGE_DSN")
	}

	// sql.Open only prepares the pool; Ping below opens the first connection.
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection (driver error): %w", err)
	}

	var pingErr error
	for i := 1; i <= connectAttempts; i++ {
		pingErr = db.Ping()
		if pingErr == nil {
			break
		}
		log.Printf("[storage] postgres not ready (attempt %d/%d), retrying in %v", i, connectAttempts, connectBackoff)
		time.Sleep(connectBackoff)
	}
	if pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, pingErr)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var value string
	err := p.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		log.Printf("[storage] postgres get %q: %v", key, err)
		return "", false
	}
	return value, true
}

func (p *Postgres) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	sqlStatement := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := p.db.ExecContext(ctx, sqlStatement, key, value); err != nil {
		return fmt.Errorf("failed to store %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Remove(keys ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	for _, key := range keys {
		if _, err := p.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = $1", key); err != nil {
			return fmt.Errorf("failed to remove %q: %w", key, err)
		}
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
