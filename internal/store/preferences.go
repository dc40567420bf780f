package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Zachkp/folio/internal/theme"
)

// Preferences returns the theme storage for one visitor.
func (s *SQLiteStore) Preferences(visitorID string) theme.Storage {
	return &sqlitePreferences{s: s, visitorID: visitorID}
}

type sqlitePreferences struct {
	s         *SQLiteStore
	visitorID string
}

func (p *sqlitePreferences) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE visitor_id = ? AND key = ?`,
		p.visitorID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", theme.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading preference: %w", err)
	}
	return value, nil
}

func (p *sqlitePreferences) Set(ctx context.Context, key, value string) error {
	_, err := p.s.db.ExecContext(ctx, `
		INSERT INTO preferences (visitor_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(visitor_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, p.visitorID, key, value, now())
	if err != nil {
		return fmt.Errorf("writing preference: %w", err)
	}
	return nil
}

// DeletePreferences forgets every stored choice of a visitor.
func (s *SQLiteStore) DeletePreferences(ctx context.Context, visitorID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM preferences WHERE visitor_id = ?`, visitorID); err != nil {
		return fmt.Errorf("deleting preferences: %w", err)
	}
	return nil
}
