package browse

import (
	"context"
	"errors"
	"fmt"

	"residence/internal/localstore"
)

const (
	msgSignInForFavorites = "Please sign in to save favorites."
	msgFavoritesFull      = "You can keep up to 30 favorites. Remove one to add another."
	msgFavoriteFailed     = "Could not update favorites. Please try again."
)

// Favorites returns a copy of the favorite flat ids
func (s *Session) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.favorites...)
}

// IsFavorite reports whether id is a favorite
func (s *Session) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.favorites, id)
}

// ToggleFavorite flips the favorite state of a flat and returns the new state.
// The remote user record is written first; the local set only changes once
// that write succeeded, so a failed write leaves both sides as they were.
func (s *Session) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	const op = "browse.ToggleFavorite"

	s.favMu.Lock()
	defer s.favMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	if s.user == nil {
		s.mu.Unlock()
		s.notify(NoticeInfo, msgSignInForFavorites)
		return false, ErrNotAuthenticated
	}

	userID := s.user.ID
	adding := !contains(s.favorites, id)
	if adding && len(s.favorites) >= MaxFavorites {
		s.mu.Unlock()
		s.notify(NoticeInfo, msgFavoritesFull)
		return false, ErrFavoritesLimit
	}

	next := make([]string, 0, len(s.favorites)+1)
	for _, fav := range s.favorites {
		if fav != id {
			next = append(next, fav)
		}
	}
	if adding {
		next = append(next, id)
	}
	s.mu.Unlock()

	if err := s.store.SetFavorites(ctx, userID, next); err != nil {
		s.log.ErrorContext(ctx, "failed to save favorites", "op", op, "user_id", userID, "flat_id", id, "error", err)
		s.notify(NoticeError, msgFavoriteFailed)
		return !adding, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	if s.user == nil || s.user.ID != userID {
		// signed out while the write was in flight
		s.mu.Unlock()
		return false, ErrNotAuthenticated
	}
	s.favorites = next
	showFavorites := s.filters.ShowFavorites
	view := s.listView()
	recent := s.recentViews()
	s.mu.Unlock()

	s.saveLocal(localstore.KeyFavorites, next)

	if adding {
		s.notify(NoticeSuccess, "Added to favorites.")
	} else {
		s.notify(NoticeInfo, "Removed from favorites.")
	}

	if !adding && showFavorites {
		if _, err := s.fetch(ctx, true); err != nil && !errors.Is(err, ErrStaleFetch) {
			return false, err
		}
		return false, nil
	}

	s.renderList(view)
	s.renderRecent(recent)
	return adding, nil
}
