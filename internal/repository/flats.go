package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"residence/internal/model"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrUnknownField is returned for a query on a field the flats table does not have
	ErrUnknownField = errors.New("unknown query field")
	// ErrUnsupportedOp is returned for an operator the field does not support
	ErrUnsupportedOp = errors.New("unsupported query operator")
)

// flatFieldColumns whitelists the fields a query may filter or order on
var flatFieldColumns = map[string]string{
	model.FieldID:        "id",
	model.FieldPrice:     "price",
	model.FieldArea:      "area",
	model.FieldOfferType: "offer_type",
	model.FieldFlatType:  "type",
}

const flatColumns = `id, price, area, offer_type, type, COALESCE(location, '') AS location,
	bedrooms, bathrooms, amenities, image_urls, COALESCE(description, '') AS description`

// QueryFlats runs a composed flat query and returns one page.
// One extra row is fetched to tell whether another page exists.
func (r *Repository) QueryFlats(ctx context.Context, q model.FlatQuery) (*model.FlatPage, error) {
	const op = "repository.QueryFlats"

	where, args, empty, err := buildFlatWhere(q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if empty {
		return &model.FlatPage{Flats: []model.Flat{}}, nil
	}

	orderCol, ok := flatFieldColumns[q.OrderBy.Field]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownField, q.OrderBy.Field)
	}
	dir := "ASC"
	if q.OrderBy.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM flats%s ORDER BY %s %s, id %s", flatColumns, where, orderCol, dir, dir)
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit+1)
	}

	query, args, err = sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to expand query: %w", op, err)
	}

	var flats []model.Flat
	if err = r.db.SelectContext(ctx, &flats, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: failed to fetch flats: %w", op, err)
	}

	page := &model.FlatPage{Flats: flats}
	if q.Limit > 0 && len(flats) > q.Limit {
		page.Flats = flats[:q.Limit]
		page.HasMore = true
	}
	if page.Flats == nil {
		page.Flats = []model.Flat{}
	}

	r.log.DebugContext(ctx, "flats queried", "op", op, "count", len(page.Flats), "has_more", page.HasMore)
	return page, nil
}

// buildFlatWhere translates the predicates and the cursor into a WHERE clause.
// empty reports a membership predicate over no values, which matches nothing.
func buildFlatWhere(q model.FlatQuery) (where string, args []interface{}, empty bool, err error) {
	var conds []string

	for _, p := range q.Predicates {
		if p.Field == model.FieldSearch {
			if p.Op != model.OpContains {
				return "", nil, false, fmt.Errorf("%w: %s on %s", ErrUnsupportedOp, p.Op, p.Field)
			}
			term := "%" + escapeLike(strings.ToLower(fmt.Sprint(p.Value))) + "%"
			conds = append(conds,
				`(LOWER(COALESCE(location, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`)
			args = append(args, term, term)
			continue
		}

		col, ok := flatFieldColumns[p.Field]
		if !ok {
			return "", nil, false, fmt.Errorf("%w: %q", ErrUnknownField, p.Field)
		}

		switch p.Op {
		case model.OpEq:
			conds = append(conds, col+" = ?")
			args = append(args, p.Value)
		case model.OpGte:
			conds = append(conds, col+" >= ?")
			args = append(args, p.Value)
		case model.OpLte:
			conds = append(conds, col+" <= ?")
			args = append(args, p.Value)
		case model.OpIn:
			values, ok := p.Value.([]string)
			if !ok {
				return "", nil, false, fmt.Errorf("%w: %s expects a list of strings", ErrUnsupportedOp, p.Op)
			}
			if len(values) == 0 {
				return "", nil, true, nil
			}
			conds = append(conds, col+" IN (?)")
			args = append(args, values)
		default:
			return "", nil, false, fmt.Errorf("%w: %s on %s", ErrUnsupportedOp, p.Op, p.Field)
		}
	}

	if c := q.StartAfter; c != nil {
		col, ok := flatFieldColumns[q.OrderBy.Field]
		if !ok {
			return "", nil, false, fmt.Errorf("%w: %q", ErrUnknownField, q.OrderBy.Field)
		}
		cmp := ">"
		if q.OrderBy.Desc {
			cmp = "<"
		}
		conds = append(conds, fmt.Sprintf("(%s %s ? OR (%s = ? AND id %s ?))", col, cmp, col, cmp))
		args = append(args, c.Value, c.Value, c.ID)
	}

	if len(conds) == 0 {
		return "", args, false, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, false, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetFlat retrieves a single flat by its ID; a missing flat yields nil, nil
func (r *Repository) GetFlat(ctx context.Context, id string) (*model.Flat, error) {
	const op = "repository.GetFlat"

	var flat model.Flat
	query := r.db.Rebind("SELECT " + flatColumns + " FROM flats WHERE id = ?")
	if err := r.db.GetContext(ctx, &flat, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: failed to get flat: %w", op, err)
	}
	return &flat, nil
}

// UpsertFlats inserts or replaces flats in one transaction.
func (r *Repository) UpsertFlats(ctx context.Context, flats []model.Flat) error {
	const op = "repository.UpsertFlats"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck // returns sql.ErrTxDone after a successful commit

	stmt, err := tx.PreparexContext(ctx, r.db.Rebind(`
		INSERT INTO flats (id, price, area, offer_type, type, location, bedrooms, bathrooms, amenities, image_urls, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			price = excluded.price, area = excluded.area, offer_type = excluded.offer_type,
			type = excluded.type, location = excluded.location, bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms, amenities = excluded.amenities,
			image_urls = excluded.image_urls, description = excluded.description`))
	if err != nil {
		return fmt.Errorf("%s: failed to prepare statement: %w", op, err)
	}
	defer stmt.Close()

	for _, f := range flats {
		_, err = stmt.ExecContext(ctx, f.ID, f.Price, f.Area, f.OfferType, f.FlatType, f.Location,
			f.Bedrooms, f.Bathrooms, f.Amenities, f.ImageURLs, f.Description)
		if err != nil {
			return fmt.Errorf("%s: failed to upsert flat %s: %w", op, f.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}
