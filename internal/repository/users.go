package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"residence/internal/model"
)

// GetFavorites returns the favorites list of a user; unknown users have none
func (r *Repository) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	const op = "repository.GetFavorites"

	var favorites model.StringList
	query := r.db.Rebind("SELECT favorites FROM users WHERE id = ?")
	if err := r.db.GetContext(ctx, &favorites, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%s: failed to get favorites: %w", op, err)
	}
	return []string(favorites), nil
}

// SetFavorites writes the favorites field of the user document, creating it when missing.
// Other fields of the document are left untouched.
func (r *Repository) SetFavorites(ctx context.Context, userID string, favorites []string) error {
	const op = "repository.SetFavorites"

	query := r.db.Rebind(`
		INSERT INTO users (id, favorites, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET favorites = excluded.favorites, updated_at = CURRENT_TIMESTAMP`)
	if _, err := r.db.ExecContext(ctx, query, userID, model.StringList(favorites)); err != nil {
		return fmt.Errorf("%s: failed to save favorites: %w", op, err)
	}

	r.log.DebugContext(ctx, "favorites saved", "op", op, "user_id", userID, "count", len(favorites))
	return nil
}
