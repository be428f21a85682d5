package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log/slog"

	"residence/internal/utils"
)

// Flat represents one listed apartment unit of the complex
type Flat struct {
	ID          string     `json:"id" db:"id"`
	Price       float64    `json:"price" db:"price"`
	Area        float64    `json:"area" db:"area"`
	OfferType   string     `json:"offerType" db:"offer_type"`
	FlatType    string     `json:"type" db:"type"`
	Location    string     `json:"location" db:"location"`
	Bedrooms    int        `json:"bedrooms" db:"bedrooms"`
	Bathrooms   int        `json:"bathrooms" db:"bathrooms"`
	Amenities   StringList `json:"amenities" db:"amenities"`
	ImageURLs   StringList `json:"imageUrls" db:"image_urls"`
	Description string     `json:"description" db:"description"`
}

// SortValue returns the value of the field the flat is ordered by
func (f Flat) SortValue(field string) float64 {
	if field == FieldArea {
		return f.Area
	}
	return f.Price
}

// Testimonial is a resident quote shown on the landing page
type Testimonial struct {
	ID     string `json:"id" db:"id"`
	Quote  string `json:"quote" db:"quote"`
	Author string `json:"author" db:"author"`
}

// ApartmentDetails is the singleton description of the complex itself
type ApartmentDetails struct {
	Address     string     `json:"address" db:"address"`
	BuiltYear   int        `json:"builtYear" db:"built_year"`
	TotalFlats  int        `json:"totalFlats" db:"total_flats"`
	Description string     `json:"description" db:"description"`
	Amenities   StringList `json:"amenities" db:"amenities"`
}

// StringList is a list column stored as JSON text.
// Malformed stored values degrade to an empty list instead of failing the scan.
type StringList []string

// Value implements driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		slog.Default().Warn("unsupported list column type, using empty list", "type", fmt.Sprintf("%T", value))
		*l = StringList{}
		return nil
	}

	list, err := utils.ParseStringList(raw)
	if err != nil {
		slog.Default().Warn("malformed list column, using empty list", "error", err)
	}
	*l = list
	return nil
}

// UnmarshalJSON accepts both a JSON array and a string holding one
func (l *StringList) UnmarshalJSON(data []byte) error {
	list, err := utils.ParseStringList(string(data))
	if err != nil {
		slog.Default().Warn("malformed list value, using empty list", "error", err)
	}
	*l = list
	return nil
}
