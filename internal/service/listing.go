package service

import (
	"context"
	"fmt"
	"log/slog"

	"residence/internal/browse"
	"residence/internal/model"
)

// ListingStore is the read side of the document store used by the relay
type ListingStore interface {
	QueryFlats(ctx context.Context, q model.FlatQuery) (*model.FlatPage, error)
	GetFlat(ctx context.Context, id string) (*model.Flat, error)
	ListTestimonials(ctx context.Context) ([]model.Testimonial, error)
	GetApartmentDetails(ctx context.Context) (*model.ApartmentDetails, error)
}

// ListingService handles listing business logic for the REST relay
type ListingService struct {
	repo         ListingStore
	log          *slog.Logger
	defaultLimit int
	maxLimit     int
}

// NewListingService creates a new listing service
func NewListingService(repo ListingStore, log *slog.Logger, defaultLimit, maxLimit int) *ListingService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &ListingService{
		repo:         repo,
		log:          log,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ListFlats returns the flats matching the query string filters, in the
// requested order, and whether more flats matched than the limit allowed.
// The relay has no session, so favorites never apply.
func (s *ListingService) ListFlats(ctx context.Context, req model.FlatListRequest) (*model.FlatPage, error) {
	const op = "service.ListFlats"

	filters := browse.FilterInput{
		OfferType:  req.OfferType,
		FlatType:   req.FlatType,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		SortBy:     req.SortBy,
		SearchTerm: req.Search,
	}.Filters()

	q, _ := browse.BuildQuery(filters, nil, nil, s.limit(req.Limit))

	page, err := s.repo.QueryFlats(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if page.Flats == nil {
		page.Flats = []model.Flat{}
	}

	s.log.DebugContext(ctx, "flats listed", "op", op, "count", len(page.Flats), "has_more", page.HasMore)
	return page, nil
}

func (s *ListingService) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.defaultLimit
	case requested > s.maxLimit:
		return s.maxLimit
	default:
		return requested
	}
}

// GetFlat retrieves a single flat; nil when it does not exist
func (s *ListingService) GetFlat(ctx context.Context, id string) (*model.Flat, error) {
	flat, err := s.repo.GetFlat(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.GetFlat: %w", err)
	}
	return flat, nil
}

// Testimonials returns the resident quotes
func (s *ListingService) Testimonials(ctx context.Context) ([]model.Testimonial, error) {
	testimonials, err := s.repo.ListTestimonials(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Testimonials: %w", err)
	}
	return testimonials, nil
}

// ApartmentDetails returns the description of the complex; nil when not set up
func (s *ListingService) ApartmentDetails(ctx context.Context) (*model.ApartmentDetails, error) {
	details, err := s.repo.GetApartmentDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ApartmentDetails: %w", err)
	}
	return details, nil
}
