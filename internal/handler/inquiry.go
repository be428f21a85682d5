package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"residence/internal/model"

	"github.com/gin-gonic/gin"
)

// InquiryService is what the inquiry endpoint needs from the service layer
type InquiryService interface {
	Submit(ctx context.Context, inquiry *model.Inquiry) error
}

// InquiryHandler handles contact form submissions
type InquiryHandler struct {
	inquiries InquiryService
	log       *slog.Logger
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(inquiries InquiryService, log *slog.Logger) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries, log: log}
}

// Create handles POST /api/inquiries
func (h *InquiryHandler) Create(c *gin.Context) {
	var req model.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	inquiry := model.Inquiry{Name: req.Name, Email: req.Email, Message: req.Message}

	if err := h.inquiries.Submit(c.Request.Context(), &inquiry); err != nil {
		if errors.Is(err, model.ErrMissingField) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		h.log.ErrorContext(c.Request.Context(), "failed to submit inquiry", "op", "handler.CreateInquiry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit inquiry"})
		return
	}

	c.JSON(http.StatusCreated, model.InquiryResponse{
		ID:      inquiry.ID,
		Message: "Inquiry submitted successfully",
	})
}
