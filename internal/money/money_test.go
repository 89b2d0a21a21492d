package money

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestToNumericRoundTrip(t *testing.T) {
	for _, amount := range []int64{0, 1, 75000, 90000, 1234567890} {
		got := FromNumeric(ToNumeric(amount))
		if got != amount {
			t.Errorf("FromNumeric(ToNumeric(%d)) = %d", amount, got)
		}
	}
}

func TestFromNumeric_Null(t *testing.T) {
	if got := FromNumeric(pgtype.Numeric{}); got != 0 {
		t.Errorf("expected 0 for NULL, got %d", got)
	}
}

func TestFromNumeric_TruncatesFraction(t *testing.T) {
	var n pgtype.Numeric
	if err := n.Scan("15000.75"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := FromNumeric(n); got != 15000 {
		t.Errorf("expected 15000, got %d", got)
	}
}

func TestString(t *testing.T) {
	if got := String(-5000); got != "-5000" {
		t.Errorf("expected -5000, got %q", got)
	}
}
