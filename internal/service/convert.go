package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
)

// ErrMenuNotFound is returned when a line item names a menu that does not exist.
var ErrMenuNotFound = errors.New("menu not found")

// MenuReader loads menus with their components.
// Satisfied by *database.Queries.
type MenuReader interface {
	GetMenu(ctx context.Context, id int32) (database.Menu, error)
	ListMenuComponents(ctx context.Context, menuID int32) ([]database.MenuComponent, error)
}

// loadMenu reads one menu and converts it for pricing.
func loadMenu(ctx context.Context, store MenuReader, id int32) (pricing.Menu, error) {
	m, err := store.GetMenu(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Menu{}, fmt.Errorf("menu %d: %w", id, ErrMenuNotFound)
		}
		return pricing.Menu{}, fmt.Errorf("get menu %d: %w", id, err)
	}
	comps, err := store.ListMenuComponents(ctx, id)
	if err != nil {
		return pricing.Menu{}, fmt.Errorf("list components of menu %d: %w", id, err)
	}
	return toPricingMenu(m, comps), nil
}

// menuCache memoizes loadMenu for the lifetime of one request.
type menuCache struct {
	store MenuReader
	menus map[int32]pricing.Menu
}

func newMenuCache(store MenuReader) *menuCache {
	return &menuCache{store: store, menus: make(map[int32]pricing.Menu)}
}

func (c *menuCache) get(ctx context.Context, id int32) (pricing.Menu, error) {
	if m, ok := c.menus[id]; ok {
		return m, nil
	}
	m, err := loadMenu(ctx, c.store, id)
	if err != nil {
		return pricing.Menu{}, err
	}
	c.menus[id] = m
	return m, nil
}

func toPricingMenu(m database.Menu, comps []database.MenuComponent) pricing.Menu {
	out := pricing.Menu{
		ID:        m.ID,
		Type:      m.Type,
		BasePrice: money.FromNumeric(m.BasePrice),
		Items:     make([]pricing.Item, 0, len(comps)),
	}
	for _, c := range comps {
		stock := int(c.StockQuantity)
		out.Items = append(out.Items, pricing.Item{
			Code:            c.ItemCode,
			Label:           c.Label,
			UnitPrice:       money.FromNumeric(c.UnitPrice),
			DefaultQuantity: int(c.DefaultQuantity),
			StockQuantity:   &stock,
		})
	}
	return out
}

func encodeCustomization(c pricing.Customization) ([]byte, error) {
	if c == nil {
		c = pricing.Customization{}
	}
	return json.Marshal(c)
}

// decodeCustomization treats an empty or malformed column as "all defaults".
func decodeCustomization(b []byte) pricing.Customization {
	c := pricing.Customization{}
	if len(b) == 0 {
		return c
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return pricing.Customization{}
	}
	return c
}

func cartItemToLineItem(ci database.CartItem) pricing.LineItem {
	return pricing.LineItem{
		ID:            ci.ID,
		Seq:           ci.Seq,
		MenuID:        ci.MenuID,
		Style:         ci.Style,
		Customization: decodeCustomization(ci.CustomizedQuantities),
		Quantity:      ci.Quantity,
		Subtotal:      money.FromNumeric(ci.Subtotal),
	}
}

func orderItemToLineItem(oi database.OrderItem) pricing.LineItem {
	return pricing.LineItem{
		ID:            oi.ID,
		Seq:           oi.Seq,
		MenuID:        oi.MenuID,
		Style:         oi.Style,
		Customization: decodeCustomization(oi.CustomizedQuantities),
		Quantity:      oi.Quantity,
		Subtotal:      money.FromNumeric(oi.Subtotal),
	}
}

func orderItemsToLineItems(items []database.OrderItem) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, oi := range items {
		out = append(out, orderItemToLineItem(oi))
	}
	return out
}

// orderCoupon returns the coupon attached to an order, or nil.
func orderCoupon(o database.Order) *pricing.Coupon {
	if !o.CustomerCouponID.Valid {
		return nil
	}
	return &pricing.Coupon{
		Code:           o.CouponCode.String,
		DiscountAmount: money.FromNumeric(o.CouponDiscount),
	}
}

func customerCouponToPricing(cc database.CustomerCoupon) *pricing.Coupon {
	return &pricing.Coupon{
		Code:           cc.Code,
		DiscountAmount: money.FromNumeric(cc.DiscountAmount),
	}
}

func reconciledItems(rows []database.OrderItem) []pricing.LineItem {
	return pricing.Reconcile(orderItemsToLineItems(rows))
}
