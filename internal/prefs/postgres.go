package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PostgresStore persists one user's preferences in the user_prefs table:
//
//	CREATE TABLE user_prefs (
//	    clerk_id   TEXT NOT NULL,
//	    key        TEXT NOT NULL,
//	    value      TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (clerk_id, key)
//	);
type PostgresStore struct {
	db      *pgxpool.Pool
	clerkID string
}

func NewPostgresStore(db *pgxpool.Pool, clerkID string) *PostgresStore {
	return &PostgresStore{db: db, clerkID: clerkID}
}

func (s *PostgresStore) get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRow(ctx,
		`SELECT value FROM user_prefs WHERE clerk_id = $1 AND key = $2`,
		s.clerkID, key,
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("prefs: failed to read key %s for user %s: %v", key, s.clerkID, err)
		}
		return "", false
	}
	return value, true
}

func (s *PostgresStore) GetString(ctx context.Context, key, def string) string {
	if v, ok := s.get(ctx, key); ok {
		return v
	}
	return def
}

func (s *PostgresStore) GetInt(ctx context.Context, key string, def int) int {
	raw, ok := s.get(ctx, key)
	if !ok {
		return def
	}
	return parseInt(key, raw, def)
}

func (s *PostgresStore) GetFloat(ctx context.Context, key string, def float64) float64 {
	raw, ok := s.get(ctx, key)
	if !ok {
		return def
	}
	return parseFloat(key, raw, def)
}

func (s *PostgresStore) PutString(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO user_prefs (clerk_id, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (clerk_id, key)
        DO UPDATE SET value = $3, updated_at = NOW()
    `, s.clerkID, key, value)
	if err != nil {
		return fmt.Errorf("failed to write pref %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) PutInt(ctx context.Context, key string, value int) error {
	return s.PutString(ctx, key, FormatInt(value))
}

func (s *PostgresStore) PutFloat(ctx context.Context, key string, value float64) error {
	return s.PutString(ctx, key, FormatFloat(value))
}

// PutAll upserts every entry inside one transaction.
func (s *PostgresStore) PutAll(ctx context.Context, values map[string]string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin prefs transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, value := range values {
		if _, err := tx.Exec(ctx, `
            INSERT INTO user_prefs (clerk_id, key, value, updated_at)
            VALUES ($1, $2, $3, NOW())
            ON CONFLICT (clerk_id, key)
            DO UPDATE SET value = $3, updated_at = NOW()
        `, s.clerkID, key, value); err != nil {
			return fmt.Errorf("failed to write pref %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit prefs transaction: %w", err)
	}
	return nil
}
