package currency_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"residence/internal/currency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("comments and trailing commas", func(t *testing.T) {
		data := []byte(`{
			// refreshed by hand
			"base": "usd",
			"rates": {"EUR": 0.9, "gbp": 0.8,},
		}`)

		r, err := currency.Parse(data, "")
		require.NoError(t, err)
		assert.Equal(t, "USD", r.Base)
		assert.Equal(t, []string{"EUR", "GBP", "USD"}, r.Codes())
	})

	t.Run("non-positive rate", func(t *testing.T) {
		_, err := currency.Parse([]byte(`{"base": "USD", "rates": {"EUR": 0}}`), "")
		require.Error(t, err)
	})

	t.Run("missing base", func(t *testing.T) {
		_, err := currency.Parse([]byte(`{"rates": {"EUR": 1.1}}`), "")
		require.Error(t, err)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := currency.Parse([]byte(`{"base": `), "")
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	t.Run("built-in table", func(t *testing.T) {
		r, err := currency.Load("", "usd")
		require.NoError(t, err)
		assert.Equal(t, currency.Default(), r)
	})

	t.Run("built-in table with another base", func(t *testing.T) {
		_, err := currency.Load("", "EUR")
		require.Error(t, err)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rates.hujson")
		require.NoError(t, os.WriteFile(path, []byte(`{"base": "SGD", "rates": {"USD": 0.74}}`), 0o600))

		r, err := currency.Load(path, "")
		require.NoError(t, err)
		rate, err := r.Rate("sgd")
		require.NoError(t, err)
		assert.Equal(t, 1.0, rate)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := currency.Load(filepath.Join(t.TempDir(), "nope"), "")
		require.Error(t, err)
	})
}

func TestConvert_RoundTrip(t *testing.T) {
	r := currency.Default()

	for _, price := range []float64{0, 999.99, 1500, 123456.78} {
		for _, code := range r.Codes() {
			converted, err := r.Convert(price, code)
			require.NoError(t, err)

			back, err := r.ToBase(converted, code)
			require.NoError(t, err)
			assert.InDelta(t, price, back, 1e-6, "%s round trip of %v", code, price)

			again, err := r.Convert(price, code)
			require.NoError(t, err)
			assert.Equal(t, converted, again)
		}
	}

	_, err := r.Convert(10, "XYZ")
	require.ErrorIs(t, err, currency.ErrUnknownCurrency)
}

func TestFormat(t *testing.T) {
	got := currency.Format(1234.5, "USD")
	assert.True(t, strings.HasPrefix(got, "$"), got)
	assert.Contains(t, got, "1,234.50")

	assert.Equal(t, "ABC 10.00", currency.Format(10, "abc"))
}
