package pricing

// DeltaKind classifies the price change an order edit would cause.
type DeltaKind string

const (
	DeltaExtraPayment DeltaKind = "EXTRA_PAYMENT"
	DeltaRefund       DeltaKind = "REFUND"
	DeltaNone         DeltaKind = "NONE"
)

// EditPreview is what a customer confirms before an order edit is submitted.
type EditPreview struct {
	CurrentTotal int64     `json:"current_total"`
	CurrentFinal int64     `json:"current_final"`
	EditedTotal  int64     `json:"edited_total"`
	EditedFinal  int64     `json:"edited_final"`
	Delta        int64     `json:"delta"`
	Kind         DeltaKind `json:"kind"`
}

// PreviewEdit compares an order's current contents with a proposed
// replacement. Both sides are reconciled before summing and priced with the
// same coupon through FinalPrice, so Delta is the amount to charge (positive) or refund
// (negative).
func PreviewEdit(current, edited []LineItem, coupon *Coupon) EditPreview {
	p := EditPreview{
		CurrentTotal: TotalPrice(Reconcile(current)),
		EditedTotal:  TotalPrice(Reconcile(edited)),
	}
	p.CurrentFinal = FinalPrice(p.CurrentTotal, coupon)
	p.EditedFinal = FinalPrice(p.EditedTotal, coupon)
	p.Delta = p.EditedFinal - p.CurrentFinal
	switch {
	case p.Delta > 0:
		p.Kind = DeltaExtraPayment
	case p.Delta < 0:
		p.Kind = DeltaRefund
	default:
		p.Kind = DeltaNone
	}
	return p
}

// GroupDiff pairs the before and after state of one (menu, style) group in a
// modification. Previous is nil for groups the edit added, New for groups it
// removed.
type GroupDiff struct {
	MenuID   int32     `json:"menu_id"`
	Style    string    `json:"style"`
	Previous *LineItem `json:"previous"`
	New      *LineItem `json:"new"`
	Changes  []Change  `json:"changes"`
	// PriceDifference is New.Subtotal - Previous.Subtotal, treating a missing
	// side as zero.
	PriceDifference int64 `json:"price_difference"`
}

// DiffSnapshots explains a modification log entry. Each side is reconciled
// independently, groups are matched by (menu, style), and the customization of
// every matched group is diffed. Groups come out in the order they appear in
// the reconciled new side, followed by removed groups.
func DiffSnapshots(previous, next []LineItem) []GroupDiff {
	prev := Reconcile(previous)
	curr := Reconcile(next)

	prevByKey := make(map[GroupKey]LineItem, len(prev))
	for _, li := range prev {
		prevByKey[li.Key()] = li
	}

	diffs := make([]GroupDiff, 0, len(curr))
	matched := make(map[GroupKey]bool, len(curr))
	for _, n := range curr {
		d := GroupDiff{MenuID: n.MenuID, Style: n.Style, New: &n}
		if p, ok := prevByKey[n.Key()]; ok {
			d.Previous = &p
			d.Changes = DiffCustomization(p.Customization, n.Customization)
			d.PriceDifference = n.Subtotal - p.Subtotal
			matched[n.Key()] = true
		} else {
			d.Changes = DiffCustomization(nil, n.Customization)
			d.PriceDifference = n.Subtotal
		}
		diffs = append(diffs, d)
	}
	for _, p := range prev {
		if matched[p.Key()] {
			continue
		}
		diffs = append(diffs, GroupDiff{
			MenuID:          p.MenuID,
			Style:           p.Style,
			Previous:        &p,
			Changes:         DiffCustomization(p.Customization, nil),
			PriceDifference: -p.Subtotal,
		})
	}
	return diffs
}
