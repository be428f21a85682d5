package browse

import (
	"strconv"
	"strings"

	"residence/internal/model"
)

// MaxFavorites is the largest id set a membership predicate may carry
const MaxFavorites = 30

// FilterInput is the raw snapshot of the filter form
type FilterInput struct {
	OfferType     string
	FlatType      string
	MinPrice      string
	MaxPrice      string
	SortBy        string
	SearchTerm    string
	ShowFavorites bool
}

// Filters coerces the snapshot. Unparsable price bounds are treated as absent
// and unknown sort keys fall back to the default ordering.
func (in FilterInput) Filters() model.Filters {
	f := model.Filters{
		OfferType:     choice(in.OfferType),
		FlatType:      choice(in.FlatType),
		MinPrice:      model.ParseBound(in.MinPrice),
		MaxPrice:      model.ParseBound(in.MaxPrice),
		SortBy:        model.ParseSortKey(in.SortBy),
		SearchTerm:    strings.TrimSpace(in.SearchTerm),
		ShowFavorites: in.ShowFavorites,
	}
	return f
}

// InputFromFilters is the inverse of FilterInput.Filters
func InputFromFilters(f model.Filters) FilterInput {
	in := FilterInput{
		OfferType:     f.OfferType,
		FlatType:      f.FlatType,
		SortBy:        string(f.SortBy),
		SearchTerm:    f.SearchTerm,
		ShowFavorites: f.ShowFavorites,
	}
	if f.MinPrice != nil {
		in.MinPrice = formatBound(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		in.MaxPrice = formatBound(*f.MaxPrice)
	}
	return in
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func choice(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, model.All) {
		return model.All
	}
	return s
}

// BuildQuery composes the store query for one page. Predicates are added in the
// order the store requires: equality, range, membership, then text.
// ok is false when the favorites view is requested with no favorites, in which
// case the caller must not query the store at all.
func BuildQuery(f model.Filters, favorites []string, cursor *model.Cursor, pageSize int) (q model.FlatQuery, ok bool) {
	if f.OfferType != "" && f.OfferType != model.All {
		q.Predicates = append(q.Predicates, model.Predicate{Field: model.FieldOfferType, Op: model.OpEq, Value: f.OfferType})
	}
	if f.FlatType != "" && f.FlatType != model.All {
		q.Predicates = append(q.Predicates, model.Predicate{Field: model.FieldFlatType, Op: model.OpEq, Value: f.FlatType})
	}
	if f.MinPrice != nil {
		q.Predicates = append(q.Predicates, model.Predicate{Field: model.FieldPrice, Op: model.OpGte, Value: *f.MinPrice})
	}
	if f.MaxPrice != nil {
		q.Predicates = append(q.Predicates, model.Predicate{Field: model.FieldPrice, Op: model.OpLte, Value: *f.MaxPrice})
	}

	if f.ShowFavorites {
		if len(favorites) == 0 {
			return model.FlatQuery{}, false
		}
		ids := favorites
		if len(ids) > MaxFavorites {
			ids = ids[:MaxFavorites]
		}
		q.Predicates = append(q.Predicates, model.Predicate{
			Field: model.FieldID,
			Op:    model.OpIn,
			Value: append([]string(nil), ids...),
		})
	}

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		q.Predicates = append(q.Predicates, model.Predicate{Field: model.FieldSearch, Op: model.OpContains, Value: term})
	}

	q.OrderBy = model.ParseSortKey(string(f.SortBy)).Order()
	if cursor != nil {
		c := *cursor
		q.StartAfter = &c
	}
	q.Limit = pageSize

	return q, true
}
