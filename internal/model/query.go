package model

import (
	"math"
	"strconv"
	"strings"
)

// Filter option that disables an equality predicate
const All = "all"

// Flat fields a query may reference
const (
	FieldID        = "id"
	FieldPrice     = "price"
	FieldArea      = "area"
	FieldOfferType = "offerType"
	FieldFlatType  = "type"
	FieldSearch    = "search" // location and description
)

// SortKey encodes the ordering of the listing
type SortKey string

const (
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortAreaAsc   SortKey = "area-asc"
	SortAreaDesc  SortKey = "area-desc"
)

// DefaultSort is used when no or an unrecognized sort key is given
const DefaultSort = SortPriceDesc

// ParseSortKey falls back to DefaultSort for unrecognized values
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortPriceAsc, SortPriceDesc, SortAreaAsc, SortAreaDesc:
		return k
	default:
		return DefaultSort
	}
}

// Order returns the field and direction encoded by the key
func (k SortKey) Order() Order {
	switch k {
	case SortPriceAsc:
		return Order{Field: FieldPrice}
	case SortAreaAsc:
		return Order{Field: FieldArea}
	case SortAreaDesc:
		return Order{Field: FieldArea, Desc: true}
	default:
		return Order{Field: FieldPrice, Desc: true}
	}
}

// Filters is the user's current query intent
type Filters struct {
	OfferType     string   `json:"offerType"`
	FlatType      string   `json:"flatType"`
	MinPrice      *float64 `json:"minPrice,omitempty"`
	MaxPrice      *float64 `json:"maxPrice,omitempty"`
	SortBy        SortKey  `json:"sortBy"`
	SearchTerm    string   `json:"searchTerm,omitempty"`
	ShowFavorites bool     `json:"showFavorites"`
}

// DefaultFilters returns the filter state of a fresh session
func DefaultFilters() Filters {
	return Filters{
		OfferType: All,
		FlatType:  All,
		SortBy:    DefaultSort,
	}
}

// ParseBound parses a price bound typed by the user.
// Blank, unparsable or negative input yields nil, meaning no bound.
func ParseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Op is a predicate operator
type Op string

const (
	OpEq       Op = "=="
	OpGte      Op = ">="
	OpLte      Op = "<="
	OpIn       Op = "in"
	OpContains Op = "contains"
)

// Predicate is one condition of a flat query
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Order is the ordering of a flat query; id breaks ties in the same direction
type Order struct {
	Field string
	Desc  bool
}

// Cursor marks the position right after the last row of the previous page
type Cursor struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// CursorAfter returns the cursor pointing past flat for the given ordering
func CursorAfter(f Flat, order Order) *Cursor {
	return &Cursor{ID: f.ID, Value: f.SortValue(order.Field)}
}

// FlatQuery is a store-agnostic query over the flats collection.
// Predicates are applied in order: equality, range, membership, text.
type FlatQuery struct {
	Predicates []Predicate
	OrderBy    Order
	StartAfter *Cursor
	Limit      int
}

// FlatPage is one page returned by the store
type FlatPage struct {
	Flats   []Flat
	HasMore bool
}

// FlatListRequest holds the relay's query string
type FlatListRequest struct {
	OfferType string `form:"offerType"`
	FlatType  string `form:"flatType"`
	MinPrice  string `form:"minPrice"`
	MaxPrice  string `form:"maxPrice"`
	SortBy    string `form:"sortBy"`
	Search    string `form:"search"`
	Limit     int    `form:"limit"`
}

// InquiryRequest is the body of POST /api/inquiries. The id and timestamp
// are always assigned by the server.
type InquiryRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// InquiryResponse is returned after an inquiry is accepted
type InquiryResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
