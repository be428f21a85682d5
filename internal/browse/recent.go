package browse

import (
	"context"
	"fmt"

	"residence/internal/localstore"
	"residence/internal/model"
)

// MaxRecentlyViewed is how many flats the recently viewed strip keeps
const MaxRecentlyViewed = 3

// ViewFlat opens the details of a flat and records it as recently viewed
func (s *Session) ViewFlat(ctx context.Context, id string) (*model.Flat, error) {
	const op = "browse.ViewFlat"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	var flat *model.Flat
	for i := range s.records {
		if s.records[i].ID == id {
			f := s.records[i]
			flat = &f
			break
		}
	}
	s.mu.Unlock()

	if flat == nil {
		loaded, err := s.store.GetFlat(ctx, id)
		if err != nil {
			s.log.ErrorContext(ctx, "failed to load flat", "op", op, "flat_id", id, "error", err)
			s.notify(NoticeError, "Could not load flat details. Please try again.")
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if loaded == nil {
			s.notify(NoticeError, "This flat is no longer available.")
			return nil, fmt.Errorf("%s: %w: %s", op, ErrFlatNotFound, id)
		}
		flat = loaded
	}

	s.mu.Lock()
	s.recent = pushRecent(s.recent, *flat)
	recent := append([]model.Flat(nil), s.recent...)
	details := s.flatView(*flat)
	recentViews := s.recentViews()
	s.mu.Unlock()

	s.saveLocal(localstore.KeyRecentlyViewed, recent)

	if s.renderer == nil {
		s.log.Warn("renderer missing, details not drawn", "op", op, "flat_id", id)
	} else {
		s.renderer.RenderDetails(details)
	}
	s.renderRecent(recentViews)

	return flat, nil
}

// RecentlyViewed returns the recently viewed flats, most recent first
func (s *Session) RecentlyViewed() []model.Flat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Flat(nil), s.recent...)
}

// pushRecent puts f first, dropping an older entry with the same id and
// anything past MaxRecentlyViewed
func pushRecent(list []model.Flat, f model.Flat) []model.Flat {
	out := make([]model.Flat, 0, MaxRecentlyViewed)
	out = append(out, f)
	for _, old := range list {
		if len(out) == MaxRecentlyViewed {
			break
		}
		if old.ID != f.ID {
			out = append(out, old)
		}
	}
	return out
}

// recentViews must be called with mu held
func (s *Session) recentViews() []FlatView {
	views := make([]FlatView, len(s.recent))
	for i, f := range s.recent {
		views[i] = s.flatView(f)
	}
	return views
}

func (s *Session) renderRecent(views []FlatView) {
	if s.renderer == nil || len(views) == 0 {
		return
	}
	s.renderer.RenderRecentlyViewed(views)
}

func (s *Session) loadRecent() []model.Flat {
	if s.local == nil {
		return []model.Flat{}
	}
	var list []model.Flat
	if _, err := s.local.Load(localstore.KeyRecentlyViewed, &list); err != nil {
		s.log.Warn("cannot restore recently viewed", "error", err)
		return []model.Flat{}
	}

	var out []model.Flat
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].ID != "" {
			out = pushRecent(out, list[i])
		}
	}
	if out == nil {
		out = []model.Flat{}
	}
	return out
}
