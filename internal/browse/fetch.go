package browse

import (
	"context"
	"fmt"
	"strings"

	"residence/internal/model"
)

const msgLoadFailed = "Could not load flats. Please try again."

// FetchResult summarizes one Apply or LoadMore call
type FetchResult struct {
	Fetched int
	Status  Status
	HasMore bool
}

// Apply replaces every filter field from the form snapshot and reloads the
// listing from the first page.
func (s *Session) Apply(ctx context.Context, in FilterInput) (FetchResult, error) {
	filters := in.Filters()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return FetchResult{}, ErrSessionClosed
	}
	s.filters = filters
	s.mu.Unlock()

	s.log.DebugContext(ctx, "filters applied", "op", "browse.Apply",
		"offer_type", filters.OfferType, "flat_type", filters.FlatType,
		"sort_by", filters.SortBy, "show_favorites", filters.ShowFavorites)

	return s.fetch(ctx, true)
}

// SetShowFavorites switches the favorites-only view and reloads
func (s *Session) SetShowFavorites(ctx context.Context, on bool) (FetchResult, error) {
	in := InputFromFilters(s.Filters())
	in.ShowFavorites = on
	return s.Apply(ctx, in)
}

// Refresh reloads the listing from the first page with the current filters
func (s *Session) Refresh(ctx context.Context) (FetchResult, error) {
	return s.fetch(ctx, true)
}

// LoadMore appends the next page to the listing
func (s *Session) LoadMore(ctx context.Context) (FetchResult, error) {
	return s.fetch(ctx, false)
}

// fetch loads one page. A reset starts a new filter generation, which turns
// any page still loading for the previous one stale.
func (s *Session) fetch(ctx context.Context, reset bool) (FetchResult, error) {
	const op = "browse.fetch"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return FetchResult{}, ErrSessionClosed
	}

	if reset {
		s.generation++
		s.records = nil
		s.cursor = nil
		s.hasMore = false
		s.exhausted = false
	} else {
		if s.inFlight && s.inFlightGen == s.generation {
			s.mu.Unlock()
			return FetchResult{}, ErrFetchInFlight
		}
		if s.exhausted {
			s.status = StatusEndOfPagination
			view := s.listView()
			s.mu.Unlock()

			s.renderList(view)
			return FetchResult{Status: StatusEndOfPagination}, nil
		}
	}

	q, ok := BuildQuery(s.filters, s.favorites, s.cursor, s.pageSize)
	if !ok {
		// favorites view without favorites never reaches the store
		s.records = nil
		s.cursor = nil
		s.hasMore = false
		s.exhausted = true
		s.status = StatusNoFavorites
		view := s.listView()
		s.mu.Unlock()

		s.renderList(view)
		return FetchResult{Status: StatusNoFavorites}, nil
	}

	gen := s.generation
	s.inFlight = true
	s.inFlightGen = gen
	s.status = StatusLoading
	s.mu.Unlock()

	page, err := s.store.QueryFlats(ctx, q)

	s.mu.Lock()
	if s.inFlightGen == gen {
		s.inFlight = false
	}
	if gen != s.generation {
		s.mu.Unlock()
		s.log.DebugContext(ctx, "discarding stale page", "op", op, "generation", gen)
		return FetchResult{}, ErrStaleFetch
	}

	if err != nil {
		s.status = StatusError
		s.mu.Unlock()

		s.log.ErrorContext(ctx, "failed to load flats", "op", op, "reset", reset, "error", err)
		s.notify(NoticeError, msgLoadFailed)
		return FetchResult{Status: StatusError}, fmt.Errorf("%s: %w", op, err)
	}

	flats := page.Flats
	if reset {
		s.records = append([]model.Flat(nil), flats...)
	} else {
		s.records = append(s.records, flats...)
	}

	if len(flats) > 0 {
		s.cursor = model.CursorAfter(flats[len(flats)-1], q.OrderBy)
	} else {
		s.cursor = nil
	}
	s.hasMore = page.HasMore && len(flats) > 0
	s.exhausted = !s.hasMore

	switch {
	case len(flats) > 0:
		s.status = StatusReady
	case reset:
		s.status = StatusNoResults
	default:
		s.status = StatusEndOfPagination
	}

	result := FetchResult{Fetched: len(flats), Status: s.status, HasMore: s.hasMore}
	view := s.listView()
	s.mu.Unlock()

	s.log.DebugContext(ctx, "page loaded", "op", op, "reset", reset, "fetched", result.Fetched, "has_more", result.HasMore)
	s.renderList(view)
	return result, nil
}

// SetCurrency redraws the accumulated flats in another currency without fetching
func (s *Session) SetCurrency(code string) error {
	if _, err := s.rates.Rate(code); err != nil {
		s.notify(NoticeError, fmt.Sprintf("Currency %s is not supported.", code))
		return fmt.Errorf("browse.SetCurrency: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.currency = strings.ToUpper(code)
	view := s.listView()
	recent := s.recentViews()
	s.mu.Unlock()

	s.renderList(view)
	s.renderRecent(recent)
	return nil
}
