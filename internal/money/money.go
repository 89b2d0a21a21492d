// Package money converts between the int64 whole-unit amounts used by pricing
// and the NUMERIC columns the database stores them in.
package money

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// FromNumeric returns the amount held in n. NULL and unparsable values read as
// zero. Fractions are truncated toward zero.
func FromNumeric(n pgtype.Numeric) int64 {
	return ToDecimal(n).IntPart()
}

// ToDecimal returns n as a decimal, or zero for NULL.
func ToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	s, ok := val.(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToNumeric returns amount as a valid NUMERIC.
func ToNumeric(amount int64) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(decimal.NewFromInt(amount).String())
	return n
}

// String formats amount as a plain integer string, e.g. "75000".
func String(amount int64) string {
	return decimal.NewFromInt(amount).String()
}
