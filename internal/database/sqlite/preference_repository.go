package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cloudmesa/console-backend-go/internal/database/repositories"
)

// PreferenceRepository is the sqlite implementation of
// repositories.PreferenceRepository.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository creates a PreferenceRepository.
func NewPreferenceRepository(db *sqlx.DB) repositories.PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		`SELECT value FROM console_preferences WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying preference %s: %w", key, err)
	}
	return value, true, nil
}

func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO console_preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing preference %s: %w", key, err)
	}
	return nil
}

func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM console_preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting preference %s: %w", key, err)
	}
	return nil
}
