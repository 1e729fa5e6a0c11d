package models

import (
	"database/sql/driver"
	"strconv"

	"github.com/shopspring/decimal"
)

// Decimal keeps the scale a value was written with, so "100.50" is stored
// and rendered as "100.50" rather than "100.5". Arithmetic goes through the
// embedded decimal.Decimal.
type Decimal struct {
	decimal.Decimal
}

func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{Decimal: d}
}

func (d Decimal) String() string {
	if exp := d.Exponent(); exp < 0 {
		return d.Decimal.StringFixed(-exp)
	}
	return d.Decimal.String()
}

func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}
