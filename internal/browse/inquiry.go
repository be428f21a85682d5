package browse

import (
	"context"
	"fmt"

	"residence/internal/model"
)

// SubmitInquiry stores a contact request after presence checks
func (s *Session) SubmitInquiry(ctx context.Context, name, email, message string) (*model.Inquiry, error) {
	const op = "browse.SubmitInquiry"

	inquiry := &model.Inquiry{Name: name, Email: email, Message: message}
	if err := inquiry.Validate(); err != nil {
		s.notify(NoticeError, "Please fill in all fields.")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.AddInquiry(ctx, inquiry); err != nil {
		s.log.ErrorContext(ctx, "failed to submit inquiry", "op", op, "error", err)
		s.notify(NoticeError, "Could not send your message. Please try again.")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "inquiry submitted", "op", op, "inquiry_id", inquiry.ID)
	s.notify(NoticeSuccess, "Thank you! We'll get back to you soon.")
	return inquiry, nil
}
