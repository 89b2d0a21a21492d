package pricing

import (
	"testing"

	"github.com/mrdaebak/api/internal/enum"
)

func steakMenu() Menu {
	return Menu{
		ID:        3,
		Type:      enum.MenuTypeFrench,
		BasePrice: 50000,
		Items: []Item{
			{Code: "STEAK", Label: "Steak", UnitPrice: 15000, DefaultQuantity: 1},
		},
	}
}

func frenchDinner() Menu {
	return Menu{
		ID:        2,
		Type:      enum.MenuTypeFrench,
		BasePrice: 48000,
		Items: []Item{
			{Code: "COFFEE", Label: "Coffee", UnitPrice: 3000, DefaultQuantity: 1},
			{Code: "WINE_GLASS", Label: "Wine (glass)", UnitPrice: 7000, DefaultQuantity: 1},
			{Code: "SALAD", Label: "Salad", UnitPrice: 6000, DefaultQuantity: 1},
			{Code: "STEAK", Label: "Steak", UnitPrice: 15000, DefaultQuantity: 1},
		},
	}
}

func TestPriceLineItem_Scenario(t *testing.T) {
	got := PriceLineItem(steakMenu(), enum.StyleGrand, Customization{"STEAK": 2}, 1)
	if got != 75000 {
		t.Fatalf("price: got %d, want 75000", got)
	}
}

func TestPriceLineItem_DefaultsEqualBasePlusSurcharge(t *testing.T) {
	menu := frenchDinner()
	defaults := Customization{"COFFEE": 1, "WINE_GLASS": 1, "SALAD": 1, "STEAK": 1}

	for _, style := range []string{enum.StyleSimple, enum.StyleGrand, enum.StyleDeluxe} {
		for _, c := range []Customization{nil, {}, defaults} {
			for n := int32(1); n <= 3; n++ {
				want := (menu.BasePrice + StyleSurcharge(style)) * int64(n)
				if got := PriceLineItem(menu, style, c, n); got != want {
					t.Fatalf("%s x%d with %v: got %d, want %d", style, n, c, got, want)
				}
			}
		}
	}
}

func TestPriceLineItem_LinearInQuantity(t *testing.T) {
	menu := frenchDinner()
	cases := []Customization{
		nil,
		{"STEAK": 3},
		{"COFFEE": 0, "SALAD": 2},
		{"WINE_GLASS": 4, "STEAK": 0},
	}
	for _, c := range cases {
		one := PriceLineItem(menu, enum.StyleDeluxe, c, 1)
		for n := int32(1); n <= 5; n++ {
			if got := PriceLineItem(menu, enum.StyleDeluxe, c, n); got != int64(n)*one {
				t.Fatalf("customization %v x%d: got %d, want %d", c, n, got, int64(n)*one)
			}
		}
	}
}

func TestPriceLineItem_ReductionLowersPriceUnclamped(t *testing.T) {
	menu := Menu{
		BasePrice: 1000,
		Items:     []Item{{Code: "CHAMPAGNE", UnitPrice: 5000, DefaultQuantity: 1}},
	}
	got := PriceLineItem(menu, enum.StyleSimple, Customization{"CHAMPAGNE": 0}, 1)
	if got != -4000 {
		t.Fatalf("price: got %d, want -4000", got)
	}
	if ClampZero(got) != 0 {
		t.Fatalf("ClampZero(%d): got %d, want 0", got, ClampZero(got))
	}
}

func TestPriceLineItem_UnknownCodesIgnored(t *testing.T) {
	got := PriceLineItem(steakMenu(), enum.StyleSimple, Customization{"BAGUETTE": 9}, 1)
	if got != 50000 {
		t.Fatalf("price: got %d, want 50000", got)
	}
}

func TestResolveQuantities_FillsDefaults(t *testing.T) {
	got := ResolveQuantities(frenchDinner(), Customization{"STEAK": 2})
	want := Customization{"COFFEE": 1, "WINE_GLASS": 1, "SALAD": 1, "STEAK": 2}
	if len(got) != len(want) {
		t.Fatalf("resolved: got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("resolved[%s]: got %d, want %d", k, got[k], v)
		}
	}
}

func TestReprice(t *testing.T) {
	li := LineItem{Style: enum.StyleGrand, Customization: Customization{"STEAK": 2}, Quantity: 2, Subtotal: 1}
	got := Reprice(steakMenu(), li)
	if got.Subtotal != 150000 {
		t.Fatalf("subtotal: got %d, want 150000", got.Subtotal)
	}
	if li.Subtotal != 1 {
		t.Fatal("Reprice mutated its argument")
	}
}

func TestTotalPrice_NoDedup(t *testing.T) {
	items := []LineItem{
		{ID: 1, MenuID: 3, Style: enum.StyleGrand, Subtotal: 75000},
		{ID: 2, MenuID: 3, Style: enum.StyleGrand, Subtotal: 75000},
		{ID: 3, MenuID: 1, Style: enum.StyleSimple, Subtotal: 30000},
	}
	if got := TotalPrice(items); got != 180000 {
		t.Fatalf("total: got %d, want 180000", got)
	}
	if got := TotalPrice(nil); got != 0 {
		t.Fatalf("empty total: got %d, want 0", got)
	}
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		coupon *Coupon
		want   int64
	}{
		{"no coupon", 75000, nil, 75000},
		{"partial", 75000, &Coupon{DiscountAmount: 10000}, 65000},
		{"exact", 75000, &Coupon{DiscountAmount: 75000}, 0},
		{"clamped", 75000, &Coupon{DiscountAmount: 100000}, 0},
		{"zero discount", 75000, &Coupon{DiscountAmount: 0}, 75000},
		{"zero total", 0, &Coupon{DiscountAmount: 5000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyDiscount(tt.total, tt.coupon); got != tt.want {
				t.Fatalf("ApplyDiscount(%d): got %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestApplyDiscount_MatchesMaxFormula(t *testing.T) {
	for total := int64(0); total <= 50000; total += 5000 {
		for d := int64(0); d <= 60000; d += 7500 {
			want := total - d
			if want < 0 {
				want = 0
			}
			if got := ApplyDiscount(total, &Coupon{DiscountAmount: d}); got != want {
				t.Fatalf("ApplyDiscount(%d, %d): got %d, want %d", total, d, got, want)
			}
		}
	}
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		coupon *Coupon
		want   int64
	}{
		{"no coupon", 75000, nil, 75000},
		{"negative without coupon", -5000, nil, 0},
		{"negative with coupon", -5000, &Coupon{DiscountAmount: 1000}, 0},
		{"coupon", 75000, &Coupon{DiscountAmount: 10000}, 65000},
		{"coupon exceeds total", 75000, &Coupon{DiscountAmount: 100000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FinalPrice(tt.total, tt.coupon); got != tt.want {
				t.Fatalf("FinalPrice(%d): got %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestFinalPrice_SimpleDinnerWithoutSteak(t *testing.T) {
	menu := Menu{
		BasePrice: 10000,
		Items:     []Item{{Code: "STEAK", UnitPrice: 15000, DefaultQuantity: 1}},
	}
	items := []LineItem{{ID: 1, MenuID: 3, Style: enum.StyleSimple, Subtotal: PriceLineItem(menu, enum.StyleSimple, Customization{"STEAK": 0}, 1)}}
	if got := TotalPrice(items); got != -5000 {
		t.Fatalf("total: got %d, want -5000", got)
	}
	if got := CurrentTotal(items, nil); got != 0 {
		t.Fatalf("current total: got %d, want 0", got)
	}
}

func TestStyleSurcharge(t *testing.T) {
	if StyleSurcharge(enum.StyleSimple) != 0 || StyleSurcharge(enum.StyleGrand) != 10000 || StyleSurcharge(enum.StyleDeluxe) != 20000 {
		t.Fatal("unexpected style surcharges")
	}
}
