package browse_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"residence/internal/browse"
	"residence/internal/currency"
	"residence/internal/logger"
	"residence/internal/model"

	"github.com/stretchr/testify/require"
)

// memStore evaluates composed queries in memory
type memStore struct {
	mu        sync.Mutex
	flats     []model.Flat
	favorites map[string][]string
	inquiries []model.Inquiry

	queries     int
	favWrites   int
	queryErr    error
	setFavErr   error
	getFavErr   error
	inquiryErr  error
	lastQuery   model.FlatQuery
	block       chan struct{}
	blockedOnce chan struct{}
}

func newMemStore(flats ...model.Flat) *memStore {
	return &memStore{flats: flats, favorites: map[string][]string{}}
}

func (m *memStore) QueryFlats(_ context.Context, q model.FlatQuery) (*model.FlatPage, error) {
	m.mu.Lock()
	m.queries++
	m.lastQuery = q
	block, started := m.block, m.blockedOnce
	m.block, m.blockedOnce = nil, nil
	err := m.queryErr
	flats := append([]model.Flat(nil), m.flats...)
	m.mu.Unlock()

	if block != nil {
		if started != nil {
			close(started)
		}
		<-block
	}
	if err != nil {
		return nil, err
	}
	return evaluate(flats, q), nil
}

func (m *memStore) GetFlat(_ context.Context, id string) (*model.Flat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.flats {
		if f.ID == id {
			f := f
			return &f, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetFavorites(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getFavErr != nil {
		return nil, m.getFavErr
	}
	return append([]string{}, m.favorites[userID]...), nil
}

func (m *memStore) SetFavorites(_ context.Context, userID string, favorites []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favWrites++
	if m.setFavErr != nil {
		return m.setFavErr
	}
	m.favorites[userID] = append([]string{}, favorites...)
	return nil
}

func (m *memStore) AddInquiry(_ context.Context, inquiry *model.Inquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inquiryErr != nil {
		return m.inquiryErr
	}
	inquiry.ID = fmt.Sprintf("inq-%d", len(m.inquiries)+1)
	m.inquiries = append(m.inquiries, *inquiry)
	return nil
}

func (m *memStore) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}

func evaluate(flats []model.Flat, q model.FlatQuery) *model.FlatPage {
	var out []model.Flat
	for _, f := range flats {
		ok := true
		for _, p := range q.Predicates {
			if !matches(f, p) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, f)
		}
	}

	less := func(a, b model.Flat) bool {
		va, vb := a.SortValue(q.OrderBy.Field), b.SortValue(q.OrderBy.Field)
		if va != vb {
			return (va < vb) != q.OrderBy.Desc
		}
		return (a.ID < b.ID) != q.OrderBy.Desc
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })

	if c := q.StartAfter; c != nil {
		marker := model.Flat{ID: c.ID, Price: c.Value, Area: c.Value}
		var after []model.Flat
		for _, f := range out {
			if less(marker, f) {
				after = append(after, f)
			}
		}
		out = after
	}

	page := &model.FlatPage{Flats: out}
	if q.Limit > 0 && len(out) > q.Limit {
		page.Flats = out[:q.Limit]
		page.HasMore = true
	}
	if page.Flats == nil {
		page.Flats = []model.Flat{}
	}
	return page
}

func matches(f model.Flat, p model.Predicate) bool {
	switch p.Op {
	case model.OpEq:
		switch p.Field {
		case model.FieldOfferType:
			return f.OfferType == p.Value
		case model.FieldFlatType:
			return f.FlatType == p.Value
		}
	case model.OpGte:
		return f.Price >= p.Value.(float64)
	case model.OpLte:
		return f.Price <= p.Value.(float64)
	case model.OpIn:
		for _, id := range p.Value.([]string) {
			if id == f.ID {
				return true
			}
		}
		return false
	case model.OpContains:
		term := strings.ToLower(p.Value.(string))
		return strings.Contains(strings.ToLower(f.Location), term) ||
			strings.Contains(strings.ToLower(f.Description), term)
	}
	panic(fmt.Sprintf("unexpected predicate %+v", p))
}

type notice struct {
	kind    browse.NoticeKind
	message string
}

type recorder struct {
	mu      sync.Mutex
	lists   []browse.ListView
	details []browse.FlatView
	recent  [][]browse.FlatView
	notices []notice
}

func (r *recorder) RenderList(view browse.ListView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, view)
}

func (r *recorder) RenderDetails(flat browse.FlatView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.details = append(r.details, flat)
}

func (r *recorder) RenderRecentlyViewed(flats []browse.FlatView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = append(r.recent, flats)
}

func (r *recorder) Notify(kind browse.NoticeKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{kind: kind, message: message})
}

func (r *recorder) lastList() browse.ListView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lists) == 0 {
		return browse.ListView{}
	}
	return r.lists[len(r.lists)-1]
}

func (r *recorder) lastNotice() notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return notice{}
	}
	return r.notices[len(r.notices)-1]
}

// memLocal is an in-memory LocalState
type memLocal struct {
	values map[string]any
}

func newMemLocal() *memLocal { return &memLocal{values: map[string]any{}} }

func (l *memLocal) Load(key string, dst any) (bool, error) {
	v, ok := l.values[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]string:
		*d = append([]string(nil), v.([]string)...)
	case *[]model.Flat:
		*d = append([]model.Flat(nil), v.([]model.Flat)...)
	default:
		return false, fmt.Errorf("unsupported type %T", dst)
	}
	return true, nil
}

func (l *memLocal) Save(key string, v any) error {
	l.values[key] = v
	return nil
}

func (l *memLocal) Delete(key string) error {
	delete(l.values, key)
	return nil
}

type fakeAuth struct {
	users   map[string]string
	signOut error
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) (*browse.User, error) {
	pw, ok := a.users[email]
	if !ok {
		return nil, &browse.AuthError{Code: "auth/user-not-found"}
	}
	if pw != password {
		return nil, &browse.AuthError{Code: "auth/wrong-password"}
	}
	return &browse.User{ID: "uid-" + email, Email: email}, nil
}

func (a *fakeAuth) Register(_ context.Context, email, password string) (*browse.User, error) {
	if _, ok := a.users[email]; ok {
		return nil, &browse.AuthError{Code: "auth/email-already-in-use"}
	}
	if len(password) < 6 {
		return nil, &browse.AuthError{Code: "auth/weak-password"}
	}
	a.users[email] = password
	return &browse.User{ID: "uid-" + email, Email: email}, nil
}

func (a *fakeAuth) SignOut(context.Context) error { return a.signOut }

// scenarioFlats is 10 rent flats priced 1000..1900 plus 5 flats outside
// {rent, 1000..2000}
func scenarioFlats() []model.Flat {
	var flats []model.Flat
	for i := 0; i < 10; i++ {
		flats = append(flats, model.Flat{
			ID:        fmt.Sprintf("rent-%02d", i),
			Price:     float64(1000 + i*100),
			Area:      float64(60 - i),
			OfferType: "rent",
			FlatType:  "2BR",
			Location:  "Harbour Road",
		})
	}
	return append(flats,
		model.Flat{ID: "sale-1", Price: 1500, Area: 70, OfferType: "sale", FlatType: "2BR"},
		model.Flat{ID: "sale-2", Price: 1200, Area: 30, OfferType: "sale", FlatType: "studio"},
		model.Flat{ID: "cheap", Price: 500, Area: 25, OfferType: "rent", FlatType: "studio"},
		model.Flat{ID: "pricey", Price: 2500, Area: 90, OfferType: "rent", FlatType: "2BR"},
		model.Flat{ID: "luxury", Price: 9000, Area: 150, OfferType: "rent", FlatType: "penthouse", Description: "Sea view"},
	)
}

type fixture struct {
	store   *memStore
	ui      *recorder
	local   *memLocal
	auth    *fakeAuth
	session *browse.Session
}

func newFixture(t *testing.T, flats []model.Flat, opts ...browse.Option) *fixture {
	t.Helper()

	f := &fixture{
		store: newMemStore(flats...),
		ui:    &recorder{},
		local: newMemLocal(),
		auth:  &fakeAuth{users: map[string]string{"ann@example.com": "secret1"}},
	}
	s, err := browse.New(browse.Deps{
		Store:    f.store,
		Auth:     f.auth,
		Local:    f.local,
		Renderer: f.ui,
		Notifier: f.ui,
		Rates:    currency.Default(),
		Log:      logger.Discard(),
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	f.session = s
	return f
}

func flatIDs(flats []model.Flat) []string {
	out := make([]string, len(flats))
	for i, f := range flats {
		out[i] = f.ID
	}
	return out
}
