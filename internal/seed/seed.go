// Package seed loads a listing dataset into the document store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"residence/internal/model"
	"residence/internal/utils"

	"github.com/google/uuid"
	"github.com/tailscale/hujson"
)

// Dataset is the content of a seed file. The file is HuJSON, so it may carry
// comments and trailing commas.
type Dataset struct {
	Apartment    *model.ApartmentDetails `json:"apartmentDetails"`
	Flats        []model.Flat            `json:"flats"`
	Testimonials []model.Testimonial     `json:"testimonials"`
}

// Store is the write side of the document store used for seeding
type Store interface {
	UpsertFlats(ctx context.Context, flats []model.Flat) error
	AddTestimonial(ctx context.Context, t *model.Testimonial) error
	SaveApartmentDetails(ctx context.Context, d model.ApartmentDetails) error
}

// Parse decodes a dataset. Flats without an id get a random one, testimonials
// without an id get one derived from author and quote, and amenity tags are
// normalized.
func Parse(data []byte) (*Dataset, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("seed: invalid JSONC: %w", err)
	}

	var ds Dataset
	if err := json.Unmarshal(standardized, &ds); err != nil {
		return nil, fmt.Errorf("seed: invalid JSON: %w", err)
	}

	seen := make(map[string]bool, len(ds.Flats))
	for i := range ds.Flats {
		f := &ds.Flats[i]
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("seed: duplicate flat id %q", f.ID)
		}
		seen[f.ID] = true
		f.Amenities = utils.NormalizeAmenities(f.Amenities)
		if f.Price < 0 || f.Area < 0 {
			return nil, fmt.Errorf("seed: flat %q has a negative price or area", f.ID)
		}
	}

	for i := range ds.Testimonials {
		t := &ds.Testimonials[i]
		if t.ID == "" {
			t.ID = testimonialID(t.Author, t.Quote)
		}
	}

	if ds.Apartment != nil {
		ds.Apartment.Amenities = utils.NormalizeAmenities(ds.Apartment.Amenities)
	}

	return &ds, nil
}

// testimonialNamespace scopes the name based ids of testimonials
var testimonialNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("residence:testimonials"))

// testimonialID derives a stable id so seeding the same file twice updates
// the testimonial instead of adding it again
func testimonialID(author, quote string) string {
	return uuid.NewSHA1(testimonialNamespace, []byte(author+"\x00"+quote)).String()
}

// LoadFile reads and parses a dataset file
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

// Apply writes the dataset. Flats and the apartment details are upserted;
// testimonials are added.
func Apply(ctx context.Context, store Store, ds *Dataset, log *slog.Logger) error {
	const op = "seed.Apply"

	if len(ds.Flats) > 0 {
		if err := store.UpsertFlats(ctx, ds.Flats); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for i := range ds.Testimonials {
		if err := store.AddTestimonial(ctx, &ds.Testimonials[i]); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if ds.Apartment != nil {
		if err := store.SaveApartmentDetails(ctx, *ds.Apartment); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	log.InfoContext(ctx, "dataset seeded", "op", op,
		"flats", len(ds.Flats), "testimonials", len(ds.Testimonials), "apartment", ds.Apartment != nil)
	return nil
}
