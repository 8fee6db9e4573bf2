package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// DefaultSessionKey is the single dashboard session; there is no multi-account support.
const DefaultSessionKey = "default"

// TokenRepository persists the bearer token in postgres so it survives restarts of the
// dashboard on shared hosts where the working directory is not writable.
type TokenRepository struct {
	db  *gorm.DB
	key string
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db, key: DefaultSessionKey}
}

type tokenRow struct {
	Token string
}

func (r *TokenRepository) Load(ctx context.Context) (string, error) {
	var row tokenRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT token
		FROM session_tokens
		WHERE session_key = ?
		LIMIT 1
	`, r.key).Scan(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return row.Token, nil
}

func (r *TokenRepository) Save(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			INSERT INTO session_tokens (session_key, token, updated_at)
			VALUES (?, ?, NOW())
			ON CONFLICT (session_key) DO UPDATE
			SET token = EXCLUDED.token, updated_at = NOW()
		`, r.key, token).Error; err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		return r.record(tx, "login")
	})
}

func (r *TokenRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM session_tokens WHERE session_key = ?`, r.key).Error; err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		return r.record(tx, "logout")
	})
}

func (r *TokenRepository) record(tx *gorm.DB, event string) error {
	if err := tx.Exec(`
		INSERT INTO session_events (session_key, event)
		VALUES (?, ?)
	`, r.key, event).Error; err != nil {
		return fmt.Errorf("record session event: %w", err)
	}
	return nil
}
