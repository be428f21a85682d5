package service

import (
	"context"
	"fmt"
	"log/slog"

	"residence/internal/model"
	"residence/internal/notify"
)

// InquiryStore persists inquiries
type InquiryStore interface {
	AddInquiry(ctx context.Context, inquiry *model.Inquiry) error
}

// InquiryService accepts contact requests
type InquiryService struct {
	repo      InquiryStore
	publisher notify.Publisher
	log       *slog.Logger
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(repo InquiryStore, publisher notify.Publisher, log *slog.Logger) *InquiryService {
	return &InquiryService{repo: repo, publisher: publisher, log: log}
}

// Submit validates and stores the inquiry, then announces it. A failed
// announcement is logged; the inquiry itself is already safe.
func (s *InquiryService) Submit(ctx context.Context, inquiry *model.Inquiry) error {
	const op = "service.SubmitInquiry"

	if err := inquiry.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.AddInquiry(ctx, inquiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	event := model.InquiryCreated{
		ID:        inquiry.ID,
		Name:      inquiry.Name,
		Email:     inquiry.Email,
		Message:   inquiry.Message,
		CreatedAt: inquiry.CreatedAt,
	}
	if err := s.publisher.PublishInquiry(ctx, event); err != nil {
		s.log.WarnContext(ctx, "failed to publish inquiry event", "op", op, "inquiry_id", inquiry.ID, "error", err)
	}

	s.log.InfoContext(ctx, "inquiry stored", "op", op, "inquiry_id", inquiry.ID)
	return nil
}
