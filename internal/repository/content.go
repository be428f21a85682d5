package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"residence/internal/model"

	"github.com/google/uuid"
)

const apartmentDetailsID = "main"

// AddInquiry stores an inquiry. The id is generated when blank and the
// timestamp is always assigned by the database.
func (r *Repository) AddInquiry(ctx context.Context, inquiry *model.Inquiry) error {
	const op = "repository.AddInquiry"

	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}

	query := r.db.Rebind(`
		INSERT INTO inquiries (id, name, email, message, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		RETURNING created_at`)
	var createdAt dbTime
	err := r.db.QueryRowxContext(ctx, query, inquiry.ID, inquiry.Name, inquiry.Email, inquiry.Message).
		Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("%s: failed to insert inquiry: %w", op, err)
	}
	inquiry.CreatedAt = time.Time(createdAt)

	return nil
}

// ListTestimonials returns every testimonial, oldest first
func (r *Repository) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	const op = "repository.ListTestimonials"

	testimonials := []model.Testimonial{}
	query := "SELECT id, quote, author FROM testimonials ORDER BY created_at, id"
	if err := r.db.SelectContext(ctx, &testimonials, query); err != nil {
		return nil, fmt.Errorf("%s: failed to list testimonials: %w", op, err)
	}
	return testimonials, nil
}

// AddTestimonial stores a testimonial, generating its id when blank
func (r *Repository) AddTestimonial(ctx context.Context, t *model.Testimonial) error {
	const op = "repository.AddTestimonial"

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	query := r.db.Rebind(`
		INSERT INTO testimonials (id, quote, author) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET quote = excluded.quote, author = excluded.author`)
	if _, err := r.db.ExecContext(ctx, query, t.ID, t.Quote, t.Author); err != nil {
		return fmt.Errorf("%s: failed to insert testimonial: %w", op, err)
	}
	return nil
}

// GetApartmentDetails reads the singleton details document; nil when it was never written
func (r *Repository) GetApartmentDetails(ctx context.Context) (*model.ApartmentDetails, error) {
	const op = "repository.GetApartmentDetails"

	var details model.ApartmentDetails
	query := r.db.Rebind(`
		SELECT address, built_year, total_flats, description, amenities
		FROM apartment_details WHERE id = ?`)
	if err := r.db.GetContext(ctx, &details, query, apartmentDetailsID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: failed to get apartment details: %w", op, err)
	}
	return &details, nil
}

// SaveApartmentDetails replaces the singleton details document
func (r *Repository) SaveApartmentDetails(ctx context.Context, d model.ApartmentDetails) error {
	const op = "repository.SaveApartmentDetails"

	query := r.db.Rebind(`
		INSERT INTO apartment_details (id, address, built_year, total_flats, description, amenities)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			address = excluded.address, built_year = excluded.built_year,
			total_flats = excluded.total_flats, description = excluded.description,
			amenities = excluded.amenities`)
	_, err := r.db.ExecContext(ctx, query, apartmentDetailsID, d.Address, d.BuiltYear, d.TotalFlats, d.Description, d.Amenities)
	if err != nil {
		return fmt.Errorf("%s: failed to save apartment details: %w", op, err)
	}
	return nil
}

// dbTime scans a timestamp that sqlite may hand back as text
type dbTime time.Time

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

func (t *dbTime) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case time.Time:
		*t = dbTime(v)
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into timestamp", value)
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			*t = dbTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}
