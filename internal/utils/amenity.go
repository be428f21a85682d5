package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// amenityNames maps the spellings found in listing data to one display name
var amenityNames = map[string]string{
	"pool":             "Swimming pool",
	"swimming pool":    "Swimming pool",
	"gym":              "Gym",
	"gymnasium":        "Gym",
	"fitness":          "Gym",
	"fitness center":   "Gym",
	"aircon":           "Air conditioning",
	"air conditioner":  "Air conditioning",
	"air conditioning": "Air conditioning",
	"a/c":              "Air conditioning",
	"washer":           "Washer/dryer",
	"washing machine":  "Washer/dryer",
	"dryer":            "Washer/dryer",
	"wardrobe":         "Built-in wardrobe",
	"closet":           "Built-in wardrobe",
	"tennis":           "Tennis court",
	"bbq":              "BBQ pits",
	"barbecue":         "BBQ pits",
	"parking":          "Parking",
	"car park":         "Parking",
	"covered parking":  "Parking",
	"security":         "24-hour security",
	"24hr security":    "24-hour security",
	"playground":       "Playground",
	"function hall":    "Function room",
	"terrace":          "Balcony",
	"refrigerator":     "Fridge",
	"heater":           "Water heater",
}

// NormalizeAmenity returns the display name of an amenity tag
func NormalizeAmenity(amenity string) string {
	key := strings.ToLower(strings.Join(strings.Fields(amenity), " "))
	if key == "" {
		return ""
	}
	if name, ok := amenityNames[key]; ok {
		return name
	}
	// a Caser keeps state between calls, so each call gets its own
	return cases.Title(language.English).String(key)
}

// NormalizeAmenities normalizes every tag and drops blanks and duplicates,
// keeping the first occurrence
func NormalizeAmenities(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, a := range list {
		name := NormalizeAmenity(a)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
