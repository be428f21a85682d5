// Package currency converts listing prices from the base currency using a
// static rate table and formats them for display.
package currency

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrUnknownCurrency is returned for a currency missing from the table
var ErrUnknownCurrency = errors.New("unknown currency")

// Rates maps a currency code to its multiplier against the base currency.
// The table is static configuration, not live data.
type Rates struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Default returns the built-in table used when no rates file is configured
func Default() Rates {
	return Rates{
		Base: "USD",
		Rates: map[string]float64{
			"USD": 1,
			"EUR": 0.92,
			"GBP": 0.79,
			"INR": 83.2,
			"SGD": 1.35,
		},
	}
}

// Load reads a rate table from a HuJSON file (comments and trailing commas allowed).
// An empty path yields the built-in table.
func Load(path, base string) (Rates, error) {
	if path == "" {
		r := Default()
		if base != "" && !strings.EqualFold(base, r.Base) {
			return Rates{}, fmt.Errorf("currency: built-in table is based on %s, not %s", r.Base, base)
		}
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rates{}, fmt.Errorf("currency: read %s: %w", path, err)
	}
	return Parse(data, base)
}

// Parse decodes a HuJSON rate table. base overrides the file's base when set.
func Parse(data []byte, base string) (Rates, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Rates{}, fmt.Errorf("currency: invalid JSONC: %w", err)
	}

	var r Rates
	if err := json.Unmarshal(standardized, &r); err != nil {
		return Rates{}, fmt.Errorf("currency: invalid JSON: %w", err)
	}

	if base != "" {
		r.Base = base
	}
	r.Base = strings.ToUpper(r.Base)
	if r.Base == "" {
		return Rates{}, errors.New("currency: missing base currency")
	}

	normalized := make(map[string]float64, len(r.Rates)+1)
	for code, rate := range r.Rates {
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return Rates{}, fmt.Errorf("currency: rate for %s must be positive, got %v", code, rate)
		}
		normalized[strings.ToUpper(code)] = rate
	}
	if _, ok := normalized[r.Base]; !ok {
		normalized[r.Base] = 1
	}
	r.Rates = normalized

	return r, nil
}

// Rate returns the multiplier for code
func (r Rates) Rate(code string) (float64, error) {
	rate, ok := r.Rates[strings.ToUpper(code)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return rate, nil
}

// Convert turns a base currency price into code
func (r Rates) Convert(price float64, code string) (float64, error) {
	rate, err := r.Rate(code)
	if err != nil {
		return 0, err
	}
	return price * rate, nil
}

// ToBase is the inverse of Convert
func (r Rates) ToBase(amount float64, code string) (float64, error) {
	rate, err := r.Rate(code)
	if err != nil {
		return 0, err
	}
	return amount / rate, nil
}

// Codes lists the known currencies in alphabetical order
func (r Rates) Codes() []string {
	codes := make([]string, 0, len(r.Rates))
	for code := range r.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Format renders amount in code with the symbol and grouping of the English locale,
// e.g. "$ 1,250.00". Codes unknown to ISO 4217 fall back to "CODE 1250.00".
func Format(amount float64, code string) string {
	p := message.NewPrinter(language.English)

	unit, err := currency.ParseISO(code)
	if err != nil {
		return p.Sprintf("%s %.2f", strings.ToUpper(code), amount)
	}
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}
