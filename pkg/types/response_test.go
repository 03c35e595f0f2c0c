package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceEntryJSON(t *testing.T) {
	entries := map[string]PriceEntry{
		"A": NewPriceEntry(decimal.NewNullDecimal(decimal.RequireFromString("0.20"))),
		"B": NewPriceEntry(decimal.NullDecimal{}),
		"C": NewPriceEntry(decimal.NewNullDecimal(decimal.Zero)),
	}

	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":{"price":0.2},"B":{"price":null},"C":{"price":0}}`, string(raw))
}
