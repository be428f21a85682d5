package repository_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"residence/internal/logger"
	"residence/internal/model"
	"residence/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Helpers
// =============================================================================

func newMockedRepo(t *testing.T) (*repository.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return repository.NewWithDB(sqlx.NewDb(mockDB, "sqlite3"), logger.Discard()), mock
}

func newSQLiteRepo(t *testing.T) *repository.Repository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "residence.db")
	repo, err := repository.NewRepository(t.Context(), logger.Discard(), "sqlite3", dsn, 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Migrate(t.Context()))
	return repo
}

// seedScenario stores 10 rent flats priced 1000..1900 and 5 flats outside the filter
func seedScenario(t *testing.T, repo *repository.Repository) {
	t.Helper()

	var flats []model.Flat
	for i := 0; i < 10; i++ {
		flats = append(flats, model.Flat{
			ID:        fmt.Sprintf("rent-%02d", i),
			Price:     float64(1000 + i*100),
			Area:      float64(40 + i),
			OfferType: "rent",
			FlatType:  "2BR",
			Location:  "Harbour Road",
			Amenities: model.StringList{"Gym"},
		})
	}
	flats = append(flats,
		model.Flat{ID: "sale-1", Price: 1500, OfferType: "sale", FlatType: "2BR"},
		model.Flat{ID: "sale-2", Price: 1200, OfferType: "sale", FlatType: "studio"},
		model.Flat{ID: "cheap", Price: 500, OfferType: "rent", FlatType: "studio"},
		model.Flat{ID: "pricey", Price: 2500, OfferType: "rent", FlatType: "2BR"},
		model.Flat{ID: "luxury", Price: 9000, OfferType: "rent", FlatType: "penthouse", Description: "Sea view"},
	)
	require.NoError(t, repo.UpsertFlats(t.Context(), flats))
}

func scenarioQuery() model.FlatQuery {
	return model.FlatQuery{
		Predicates: []model.Predicate{
			{Field: model.FieldOfferType, Op: model.OpEq, Value: "rent"},
			{Field: model.FieldPrice, Op: model.OpGte, Value: 1000.0},
			{Field: model.FieldPrice, Op: model.OpLte, Value: 2000.0},
		},
		OrderBy: model.SortPriceAsc.Order(),
		Limit:   6,
	}
}

func ids(flats []model.Flat) []string {
	out := make([]string, len(flats))
	for i, f := range flats {
		out[i] = f.ID
	}
	return out
}

// =============================================================================
// Unit Tests (using sqlmock for failure scenarios)
// =============================================================================

func TestQueryFlats_Failures(t *testing.T) {
	ctx := t.Context()

	t.Run("error: select query", func(t *testing.T) {
		// Arrange
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM flats").WillReturnError(assert.AnError)

		// Act
		page, err := repo.QueryFlats(ctx, scenarioQuery())

		// Assert
		require.Error(t, err)
		require.ErrorContains(t, err, "repository.QueryFlats")
		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, page)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: unknown field", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		q := model.FlatQuery{
			Predicates: []model.Predicate{{Field: "floor", Op: model.OpEq, Value: 3}},
			OrderBy:    model.DefaultSort.Order(),
		}

		_, err := repo.QueryFlats(ctx, q)

		require.ErrorIs(t, err, repository.ErrUnknownField)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: unsupported operator", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		q := model.FlatQuery{
			Predicates: []model.Predicate{{Field: model.FieldPrice, Op: model.OpContains, Value: "1"}},
			OrderBy:    model.DefaultSort.Order(),
		}

		_, err := repo.QueryFlats(ctx, q)

		require.ErrorIs(t, err, repository.ErrUnsupportedOp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty membership list skips the query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		q := model.FlatQuery{
			Predicates: []model.Predicate{{Field: model.FieldID, Op: model.OpIn, Value: []string{}}},
			OrderBy:    model.DefaultSort.Order(),
			Limit:      6,
		}

		page, err := repo.QueryFlats(ctx, q)

		require.NoError(t, err)
		assert.Empty(t, page.Flats)
		assert.False(t, page.HasMore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("membership list is expanded", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		rows := sqlmock.NewRows([]string{"id", "price", "area", "offer_type", "type", "location",
			"bedrooms", "bathrooms", "amenities", "image_urls", "description"}).
			AddRow("a", 1200.0, 50.0, "rent", "2BR", "", 2, 1, `["Gym"]`, `[]`, "")
		mock.ExpectQuery(`WHERE id IN \(\?, \?\) ORDER BY price DESC, id DESC LIMIT \?`).
			WithArgs("a", "b", 7).
			WillReturnRows(rows)

		page, err := repo.QueryFlats(ctx, model.FlatQuery{
			Predicates: []model.Predicate{{Field: model.FieldID, Op: model.OpIn, Value: []string{"a", "b"}}},
			OrderBy:    model.DefaultSort.Order(),
			Limit:      6,
		})

		require.NoError(t, err)
		require.Len(t, page.Flats, 1)
		assert.Equal(t, model.StringList{"Gym"}, page.Flats[0].Amenities)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetFlat_Failures(t *testing.T) {
	ctx := t.Context()

	t.Run("error: select query", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM flats WHERE id").WillReturnError(assert.AnError)

		flat, err := repo.GetFlat(ctx, "x")

		require.ErrorContains(t, err, "repository.GetFlat")
		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, flat)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpsertFlats_Failures(t *testing.T) {
	ctx := t.Context()

	t.Run("error: begin transaction", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectBegin().WillReturnError(assert.AnError)

		err := repo.UpsertFlats(ctx, []model.Flat{{ID: "a"}})

		require.ErrorContains(t, err, "failed to begin transaction")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: exec rolls back", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO flats").ExpectExec().WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.UpsertFlats(ctx, []model.Flat{{ID: "a"}})

		require.ErrorContains(t, err, "failed to upsert flat a")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFavorites_Failures(t *testing.T) {
	ctx := t.Context()

	t.Run("error: get favorites", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("SELECT favorites FROM users").WillReturnError(assert.AnError)

		_, err := repo.GetFavorites(ctx, "u1")

		require.ErrorContains(t, err, "repository.GetFavorites")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: set favorites", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectExec("INSERT INTO users").WillReturnError(assert.AnError)

		err := repo.SetFavorites(ctx, "u1", []string{"a"})

		require.ErrorContains(t, err, "repository.SetFavorites")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed stored favorites degrade to empty", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("SELECT favorites FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"favorites"}).AddRow(`{"broken": true}`))

		favorites, err := repo.GetFavorites(ctx, "u1")

		require.NoError(t, err)
		assert.Empty(t, favorites)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContent_Failures(t *testing.T) {
	ctx := t.Context()

	t.Run("error: add inquiry", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("INSERT INTO inquiries").WillReturnError(assert.AnError)

		err := repo.AddInquiry(ctx, &model.Inquiry{Name: "a", Email: "b", Message: "c"})

		require.ErrorContains(t, err, "repository.AddInquiry")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: list testimonials", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("SELECT id, quote, author FROM testimonials").WillReturnError(assert.AnError)

		_, err := repo.ListTestimonials(ctx)

		require.ErrorContains(t, err, "repository.ListTestimonials")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: apartment details", func(t *testing.T) {
		repo, mock := newMockedRepo(t)
		mock.ExpectQuery("FROM apartment_details").WillReturnError(assert.AnError)

		_, err := repo.GetApartmentDetails(ctx)

		require.ErrorContains(t, err, "repository.GetApartmentDetails")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// =============================================================================
// Integration Tests (using a real sqlite database)
// =============================================================================

func TestQueryFlats_Pagination(t *testing.T) {
	ctx := t.Context()
	repo := newSQLiteRepo(t)
	seedScenario(t, repo)

	q := scenarioQuery()

	first, err := repo.QueryFlats(ctx, q)
	require.NoError(t, err)
	require.Len(t, first.Flats, 6)
	assert.True(t, first.HasMore)
	for i, f := range first.Flats {
		assert.Equal(t, "rent", f.OfferType)
		assert.GreaterOrEqual(t, f.Price, 1000.0)
		assert.LessOrEqual(t, f.Price, 2000.0)
		if i > 0 {
			assert.Greater(t, f.Price, first.Flats[i-1].Price)
		}
	}

	q.StartAfter = model.CursorAfter(first.Flats[5], q.OrderBy)
	second, err := repo.QueryFlats(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"rent-06", "rent-07", "rent-08", "rent-09"}, ids(second.Flats))
	assert.False(t, second.HasMore)

	q.StartAfter = model.CursorAfter(second.Flats[3], q.OrderBy)
	third, err := repo.QueryFlats(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, third.Flats)
	assert.False(t, third.HasMore)
}

func TestQueryFlats_TiesAreNotDuplicated(t *testing.T) {
	ctx := t.Context()
	repo := newSQLiteRepo(t)

	var flats []model.Flat
	for i := 0; i < 5; i++ {
		flats = append(flats, model.Flat{ID: fmt.Sprintf("f%d", i), Price: 1000, Area: 50, OfferType: "rent"})
	}
	require.NoError(t, repo.UpsertFlats(ctx, flats))

	q := model.FlatQuery{OrderBy: model.SortPriceDesc.Order(), Limit: 2}
	var seen []string
	for {
		page, err := repo.QueryFlats(ctx, q)
		require.NoError(t, err)
		seen = append(seen, ids(page.Flats)...)
		if !page.HasMore {
			break
		}
		q.StartAfter = model.CursorAfter(page.Flats[len(page.Flats)-1], q.OrderBy)
	}

	if diff := cmp.Diff([]string{"f4", "f3", "f2", "f1", "f0"}, seen); diff != "" {
		t.Errorf("paged ids mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryFlats_SearchAndMembership(t *testing.T) {
	ctx := t.Context()
	repo := newSQLiteRepo(t)
	seedScenario(t, repo)

	t.Run("contains matches location and description case-insensitively", func(t *testing.T) {
		page, err := repo.QueryFlats(ctx, model.FlatQuery{
			Predicates: []model.Predicate{{Field: model.FieldSearch, Op: model.OpContains, Value: "SEA"}},
			OrderBy:    model.DefaultSort.Order(),
			Limit:      6,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"luxury"}, ids(page.Flats))
	})

	t.Run("wildcards in the term are literal", func(t *testing.T) {
		page, err := repo.QueryFlats(ctx, model.FlatQuery{
			Predicates: []model.Predicate{{Field: model.FieldSearch, Op: model.OpContains, Value: "%"}},
			OrderBy:    model.DefaultSort.Order(),
			Limit:      6,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Flats)
	})

	t.Run("membership restricts to ids", func(t *testing.T) {
		page, err := repo.QueryFlats(ctx, model.FlatQuery{
			Predicates: []model.Predicate{
				{Field: model.FieldFlatType, Op: model.OpEq, Value: "2BR"},
				{Field: model.FieldID, Op: model.OpIn, Value: []string{"sale-1", "rent-03", "cheap"}},
			},
			OrderBy: model.SortPriceAsc.Order(),
			Limit:   6,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"rent-03", "sale-1"}, ids(page.Flats))
	})
}

func TestGetFlat(t *testing.T) {
	ctx := t.Context()
	repo := newSQLiteRepo(t)
	seedScenario(t, repo)

	flat, err := repo.GetFlat(ctx, "rent-00")
	require.NoError(t, err)
	require.NotNil(t, flat)
	assert.Equal(t, 1000.0, flat.Price)
	assert.Equal(t, model.StringList{"Gym"}, flat.Amenities)
	assert.Equal(t, model.StringList{}, flat.ImageURLs)

	missing, err := repo.GetFlat(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFavorites(t *testing.T) {
	ctx := t.Context()
	repo := newSQLiteRepo(t)

	favorites, err := repo.GetFavorites(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, favorites)

	require.NoError(t, repo.SetFavorites(ctx, "u1", []string{"a", "b"}))
	require.NoError(t, repo.SetFavorites(ctx, "u1", []string{"b"}))

	favorites, err = repo.GetFavorites(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, favorites)
}

func TestContent(t *testing.T) {
	ctx := t.Context()
	repo := newSQLiteRepo(t)

	inquiry := &model.Inquiry{Name: "Ann", Email: "ann@example.com", Message: "Is 2BR free?"}
	require.NoError(t, repo.AddInquiry(ctx, inquiry))
	assert.NotEmpty(t, inquiry.ID)
	assert.False(t, inquiry.CreatedAt.IsZero())

	require.NoError(t, repo.AddTestimonial(ctx, &model.Testimonial{Quote: "Great view", Author: "Bo"}))
	testimonials, err := repo.ListTestimonials(ctx)
	require.NoError(t, err)
	require.Len(t, testimonials, 1)
	assert.Equal(t, "Bo", testimonials[0].Author)

	details, err := repo.GetApartmentDetails(ctx)
	require.NoError(t, err)
	assert.Nil(t, details)

	want := model.ApartmentDetails{Address: "1 Harbour Rd", BuiltYear: 2015, TotalFlats: 120, Amenities: model.StringList{"Pool"}}
	require.NoError(t, repo.SaveApartmentDetails(ctx, want))
	details, err = repo.GetApartmentDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, &want, details)
}
