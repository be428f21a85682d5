// Package browse holds the browsing state of one visitor: the filter form,
// the paginated listing built from it, favorites, recently viewed flats and
// the selected display currency.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"residence/internal/currency"
	"residence/internal/localstore"
	"residence/internal/model"
)

// DefaultPageSize is the number of flats fetched per page
const DefaultPageSize = 6

var (
	// ErrFetchInFlight is returned when a page of the current filter generation is already loading
	ErrFetchInFlight = errors.New("a fetch is already in flight")
	// ErrStaleFetch is returned when the filters changed while the page was loading
	ErrStaleFetch = errors.New("fetch superseded by a newer filter")
	// ErrNotAuthenticated is returned for actions that need a signed in user
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrFavoritesLimit is returned when adding a favorite beyond MaxFavorites
	ErrFavoritesLimit = errors.New("favorites limit reached")
	// ErrFlatNotFound is returned when a flat does not exist
	ErrFlatNotFound = errors.New("flat not found")
	// ErrSessionClosed is returned by every action after Close
	ErrSessionClosed = errors.New("session closed")
	// ErrNoAuthProvider is returned when no auth provider is wired
	ErrNoAuthProvider = errors.New("no auth provider configured")
)

// Status describes the outcome of the latest listing fetch
type Status string

const (
	StatusIdle            Status = "idle"
	StatusLoading         Status = "loading"
	StatusReady           Status = "ready"
	StatusNoResults       Status = "no-results"
	StatusNoFavorites     Status = "no-favorites"
	StatusEndOfPagination Status = "end-of-pagination"
	StatusError           Status = "error"
)

// Store is the document store the session reads and writes
type Store interface {
	QueryFlats(ctx context.Context, q model.FlatQuery) (*model.FlatPage, error)
	GetFlat(ctx context.Context, id string) (*model.Flat, error)
	GetFavorites(ctx context.Context, userID string) ([]string, error)
	SetFavorites(ctx context.Context, userID string, favorites []string) error
	AddInquiry(ctx context.Context, inquiry *model.Inquiry) error
}

// LocalState persists client side values between runs
type LocalState interface {
	Load(key string, dst any) (bool, error)
	Save(key string, v any) error
	Delete(key string) error
}

// FlatView is a flat prepared for display in the selected currency
type FlatView struct {
	model.Flat
	DisplayPrice float64
	PriceLabel   string
	Favorite     bool
}

// ListView is everything needed to draw the listing
type ListView struct {
	Flats    []FlatView
	Status   Status
	HasMore  bool
	Currency string
}

// Renderer draws session state. Calls are made without session locks held.
type Renderer interface {
	RenderList(view ListView)
	RenderDetails(flat FlatView)
	RenderRecentlyViewed(flats []FlatView)
}

// NoticeKind classifies a user notification
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notifier shows transient notifications
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// Deps are the collaborators of a session. Store is required; a missing
// Renderer, Notifier, Auth or LocalState disables that part and is logged.
type Deps struct {
	Store    Store
	Auth     Auth
	Local    LocalState
	Renderer Renderer
	Notifier Notifier
	Rates    currency.Rates
	Log      *slog.Logger
}

// Session is the application state of one visitor, created when the visit
// starts and closed when it ends.
type Session struct {
	store    Store
	auth     Auth
	local    LocalState
	renderer Renderer
	notifier Notifier
	rates    currency.Rates
	log      *slog.Logger
	pageSize int

	mu          sync.Mutex
	filters     model.Filters
	records     []model.Flat
	cursor      *model.Cursor
	hasMore     bool
	exhausted   bool
	status      Status
	generation  uint64
	inFlight    bool
	inFlightGen uint64
	currency    string
	user        *User
	favorites   []string
	recent      []model.Flat
	closed      bool

	// serializes favorite writes so each one starts from the committed set
	favMu sync.Mutex
}

// Option customizes a session
type Option func(*Session)

// WithPageSize overrides DefaultPageSize
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithFilters sets the initial filters
func WithFilters(f model.Filters) Option {
	return func(s *Session) {
		s.filters = f
	}
}

// WithCurrency sets the initial display currency
func WithCurrency(code string) Option {
	return func(s *Session) {
		s.currency = code
	}
}

// New starts a session and restores the persisted favorites and recently viewed flats
func New(deps Deps, opts ...Option) (*Session, error) {
	if deps.Store == nil {
		return nil, errors.New("browse: store is required")
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Rates.Rates == nil {
		deps.Rates = currency.Default()
	}

	s := &Session{
		store:    deps.Store,
		auth:     deps.Auth,
		local:    deps.Local,
		renderer: deps.Renderer,
		notifier: deps.Notifier,
		rates:    deps.Rates,
		log:      deps.Log.With("component", "browse"),
		pageSize: DefaultPageSize,
		filters:  model.DefaultFilters(),
		status:   StatusIdle,
		currency: deps.Rates.Base,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.currency = strings.ToUpper(s.currency)

	if _, err := s.rates.Rate(s.currency); err != nil {
		return nil, fmt.Errorf("browse: %w", err)
	}

	s.favorites = s.loadList(localstore.KeyFavorites)
	if len(s.favorites) > MaxFavorites {
		s.favorites = s.favorites[:MaxFavorites]
	}
	s.recent = s.loadRecent()

	return s, nil
}

// Close ends the session. Fetches still in flight are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.generation++
}

// Filters returns the active filters
func (s *Session) Filters() model.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Records returns a copy of the accumulated flats
func (s *Session) Records() []model.Flat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Flat(nil), s.records...)
}

// Status returns the outcome of the latest fetch
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// HasMore reports whether another page can be loaded
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Currency returns the display currency
func (s *Session) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

// User returns the signed in user, or nil
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) notify(kind NoticeKind, message string) {
	if s.notifier == nil {
		s.log.Warn("notifier missing, notification dropped", "kind", kind, "message", message)
		return
	}
	s.notifier.Notify(kind, message)
}

// flatView must be called with mu held
func (s *Session) flatView(f model.Flat) FlatView {
	price := f.Price
	if converted, err := s.rates.Convert(f.Price, s.currency); err == nil {
		price = converted
	}
	return FlatView{
		Flat:         f,
		DisplayPrice: price,
		PriceLabel:   currency.Format(price, s.currency),
		Favorite:     contains(s.favorites, f.ID),
	}
}

// listView must be called with mu held
func (s *Session) listView() ListView {
	views := make([]FlatView, len(s.records))
	for i, f := range s.records {
		views[i] = s.flatView(f)
	}
	return ListView{Flats: views, Status: s.status, HasMore: s.hasMore, Currency: s.currency}
}

func (s *Session) renderList(view ListView) {
	if s.renderer == nil {
		s.log.Warn("renderer missing, listing not drawn", "status", view.Status)
		return
	}
	s.renderer.RenderList(view)
}

func (s *Session) loadList(key string) []string {
	if s.local == nil {
		return []string{}
	}
	var list []string
	if _, err := s.local.Load(key, &list); err != nil {
		s.log.Warn("cannot restore local state", "key", key, "error", err)
		return []string{}
	}
	return compactIDs(list)
}

func (s *Session) saveLocal(key string, v any) {
	if s.local == nil {
		return
	}
	if err := s.local.Save(key, v); err != nil {
		s.log.Warn("cannot persist local state", "key", key, "error", err)
	}
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// compactIDs drops blanks and duplicates keeping the first occurrence
func compactIDs(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, id := range list {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
