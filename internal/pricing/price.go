package pricing

// EffectiveQuantity is the quantity of it that a customization resolves to.
func EffectiveQuantity(it Item, c Customization) int {
	if q, ok := c[it.Code]; ok {
		return q
	}
	return it.DefaultQuantity
}

// ResolveQuantities returns an explicit quantity for every component of menu,
// filling codes absent from c with their defaults. Codes in c that the menu
// does not know are carried over unchanged.
func ResolveQuantities(menu Menu, c Customization) Customization {
	out := make(Customization, len(menu.Items)+len(c))
	for code, q := range c {
		out[code] = q
	}
	for _, it := range menu.Items {
		out[it.Code] = EffectiveQuantity(it, c)
	}
	return out
}

// PriceLineItem prices one configured menu selection:
//
//	(base + style surcharge + Σ (effective − default) × unit price) × quantity
//
// Reducing components below their default lowers the price, and the result is
// not clamped. Inputs are assumed validated: quantity ≥ 1, no negative overrides.
func PriceLineItem(menu Menu, style string, c Customization, quantity int32) int64 {
	unit := menu.BasePrice + StyleSurcharge(style)
	for _, it := range menu.Items {
		delta := int64(EffectiveQuantity(it, c) - it.DefaultQuantity)
		unit += delta * it.UnitPrice
	}
	return unit * int64(quantity)
}

// Reprice returns li with Subtotal recomputed against menu.
func Reprice(menu Menu, li LineItem) LineItem {
	li.Subtotal = PriceLineItem(menu, li.Style, li.Customization, li.Quantity)
	return li
}

// TotalPrice sums line item subtotals. Rows are never merged or deduplicated.
func TotalPrice(items []LineItem) int64 {
	var total int64
	for _, li := range items {
		total += li.Subtotal
	}
	return total
}

// ApplyDiscount subtracts a flat coupon from total, flooring at zero.
// A nil coupon leaves total unchanged.
func ApplyDiscount(total int64, coupon *Coupon) int64 {
	if coupon == nil {
		return total
	}
	if total <= coupon.DiscountAmount {
		return 0
	}
	return total - coupon.DiscountAmount
}

// FinalPrice is what an order charges for total: the coupon, if any, is
// subtracted and the result never goes below zero. Reduced customizations can
// leave total negative even without a coupon.
func FinalPrice(total int64, coupon *Coupon) int64 {
	return ClampZero(ApplyDiscount(total, coupon))
}

// ClampZero floors amount at zero.
func ClampZero(amount int64) int64 {
	if amount < 0 {
		return 0
	}
	return amount
}
