package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"residence/internal/model"

	"github.com/gin-gonic/gin"
)

// HasMoreHeader tells whether GET /api/flats stopped at the limit
const HasMoreHeader = "X-Has-More"

// ListingService is what the flat endpoints need from the service layer
type ListingService interface {
	ListFlats(ctx context.Context, req model.FlatListRequest) (*model.FlatPage, error)
	GetFlat(ctx context.Context, id string) (*model.Flat, error)
	Testimonials(ctx context.Context) ([]model.Testimonial, error)
	ApartmentDetails(ctx context.Context) (*model.ApartmentDetails, error)
}

// FlatHandler handles listing-related HTTP requests
type FlatHandler struct {
	listing ListingService
	log     *slog.Logger
}

// NewFlatHandler creates a new flat handler
func NewFlatHandler(listing ListingService, log *slog.Logger) *FlatHandler {
	return &FlatHandler{listing: listing, log: log}
}

// ListFlats handles GET /api/flats
func (h *FlatHandler) ListFlats(c *gin.Context) {
	var req model.FlatListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	page, err := h.listing.ListFlats(c.Request.Context(), req)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to list flats", "op", "handler.ListFlats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch flats"})
		return
	}

	c.Header(HasMoreHeader, strconv.FormatBool(page.HasMore))
	c.JSON(http.StatusOK, page.Flats)
}

// GetFlat handles GET /api/flats/:id
func (h *FlatHandler) GetFlat(c *gin.Context) {
	flat, err := h.listing.GetFlat(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to get flat", "op", "handler.GetFlat", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch flat"})
		return
	}

	if flat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flat not found"})
		return
	}

	c.JSON(http.StatusOK, flat)
}

// Testimonials handles GET /api/testimonials
func (h *FlatHandler) Testimonials(c *gin.Context) {
	testimonials, err := h.listing.Testimonials(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to list testimonials", "op", "handler.Testimonials", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch testimonials"})
		return
	}

	c.JSON(http.StatusOK, testimonials)
}

// ApartmentDetails handles GET /api/apartment
func (h *FlatHandler) ApartmentDetails(c *gin.Context) {
	details, err := h.listing.ApartmentDetails(c.Request.Context())
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to get apartment details", "op", "handler.ApartmentDetails", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch apartment details"})
		return
	}

	if details == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment details not found"})
		return
	}

	c.JSON(http.StatusOK, details)
}
