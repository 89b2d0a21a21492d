// Package pricing holds the storefront's price arithmetic: pricing a configured
// menu, summing a cart, applying a flat coupon, collapsing line items left behind
// by order edits, and describing what an edit changed.
//
// Every function here is pure. Amounts are whole currency units.
package pricing

import "github.com/mrdaebak/api/internal/enum"

// Item is one component of a menu (steak, wine, coffee, ...).
type Item struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	UnitPrice int64  `json:"unit_price"`
	// DefaultQuantity is the quantity included in the base price.
	DefaultQuantity int `json:"default_quantity"`
	// StockQuantity is informational; pricing never reads it.
	StockQuantity *int `json:"stock_quantity,omitempty"`
}

// Menu is a dinner package with its ordered component list.
type Menu struct {
	ID        int32  `json:"id"`
	Type      string `json:"type"`
	BasePrice int64  `json:"base_price"`
	Items     []Item `json:"items"`
}

// Item returns the component with the given code.
func (m Menu) Item(code string) (Item, bool) {
	for _, it := range m.Items {
		if it.Code == code {
			return it, true
		}
	}
	return Item{}, false
}

// Customization overrides component quantities by item code.
// Missing keys mean the component's default quantity.
type Customization map[string]int

// LineItem is one priced configuration of a menu inside a cart or an order.
type LineItem struct {
	ID int64 `json:"id"`
	// Seq is a monotonic creation sequence; larger means created later.
	Seq           int64         `json:"seq"`
	MenuID        int32         `json:"menu_id"`
	Style         string        `json:"style"`
	Customization Customization `json:"customized_quantities"`
	Quantity      int32         `json:"quantity"`
	Subtotal      int64         `json:"subtotal"`
}

// Key identifies the (menu, style) group a line item belongs to.
func (li LineItem) Key() GroupKey {
	return GroupKey{MenuID: li.MenuID, Style: li.Style}
}

// GroupKey is the (menu, style) pair line items are reconciled on.
type GroupKey struct {
	MenuID int32
	Style  string
}

// Coupon is the amount side of a coupon grant.
type Coupon struct {
	Code           string
	DiscountAmount int64
}

var styleSurcharges = map[string]int64{
	enum.StyleSimple: 0,
	enum.StyleGrand:  10000,
	enum.StyleDeluxe: 20000,
}

// StyleSurcharge returns the flat surcharge a style adds to a menu.
// Unknown styles add nothing; callers validate styles before pricing.
func StyleSurcharge(style string) int64 {
	return styleSurcharges[style]
}
