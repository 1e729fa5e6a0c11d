package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalKeepsScale(t *testing.T) {
	for _, in := range []string{"100.50", "250.00", "0.10000001", "0", "42", "-3.10"} {
		d := NewDecimal(decimal.RequireFromString(in))
		assert.Equal(t, in, d.String())

		v, err := d.Value()
		require.NoError(t, err)
		assert.Equal(t, in, v)

		raw, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"`+in+`"`, string(raw))

		var back Decimal
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, in, back.String())
	}
}

func TestDecimalScan(t *testing.T) {
	var d Decimal
	require.NoError(t, d.Scan("100.50"))
	assert.Equal(t, "100.50", d.String())
	assert.True(t, d.Equal(decimal.RequireFromString("100.5")))

	var zero Decimal
	assert.Equal(t, "0", zero.String())
}
