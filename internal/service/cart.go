package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
)

// Errors returned by the cart service.
var (
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartStore defines the DB methods the cart needs.
// Satisfied by *database.Queries.
type CartStore interface {
	MenuReader
	ListCartItems(ctx context.Context, customerID uuid.UUID) ([]database.CartItem, error)
	GetCartItem(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error)
	CreateCartItem(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error)
	DeleteCartItem(ctx context.Context, arg database.DeleteCartItemParams) (int64, error)
	ClearCart(ctx context.Context, customerID uuid.UUID) error
}

// LineRequest is one configured menu as submitted by a client.
type LineRequest struct {
	MenuID        int32
	Style         string
	Customization pricing.Customization
	Quantity      int32
}

// CartView is a customer's cart with its total. Rows are never merged, so the
// same dinner added twice shows up twice.
type CartView struct {
	Items []pricing.LineItem
	Total int64
}

// CartService handles cart business logic.
type CartService struct {
	store CartStore
}

// NewCartService creates a new CartService.
func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

// priceLine validates a requested line against its menu and prices it. The
// stored customization names every component explicitly so later diffs never
// compare an omitted default with a spelled-out one.
func priceLine(ctx context.Context, menus *menuCache, req LineRequest) (pricing.LineItem, error) {
	menu, err := menus.get(ctx, req.MenuID)
	if err != nil {
		return pricing.LineItem{}, err
	}
	if err := pricing.ValidateLineItem(menu, req.Style, req.Customization, req.Quantity); err != nil {
		return pricing.LineItem{}, err
	}
	return pricing.LineItem{
		MenuID:        req.MenuID,
		Style:         req.Style,
		Customization: pricing.ResolveQuantities(menu, req.Customization),
		Quantity:      req.Quantity,
		Subtotal:      pricing.PriceLineItem(menu, req.Style, req.Customization, req.Quantity),
	}, nil
}

// Cart returns the customer's cart.
func (s *CartService) Cart(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	rows, err := s.store.ListCartItems(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	items := make([]pricing.LineItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, cartItemToLineItem(r))
	}
	return &CartView{Items: items, Total: pricing.TotalPrice(items)}, nil
}

// AddItem validates and prices a menu configuration and appends it to the cart
// as a new row.
func (s *CartService) AddItem(ctx context.Context, customerID uuid.UUID, req LineRequest) (pricing.LineItem, error) {
	li, err := priceLine(ctx, newMenuCache(s.store), req)
	if err != nil {
		return pricing.LineItem{}, err
	}
	return s.insert(ctx, customerID, li)
}

func (s *CartService) insert(ctx context.Context, customerID uuid.UUID, li pricing.LineItem) (pricing.LineItem, error) {
	custom, err := encodeCustomization(li.Customization)
	if err != nil {
		return pricing.LineItem{}, fmt.Errorf("encode customization: %w", err)
	}
	row, err := s.store.CreateCartItem(ctx, database.CreateCartItemParams{
		CustomerID:           customerID,
		MenuID:               li.MenuID,
		Style:                li.Style,
		CustomizedQuantities: custom,
		Quantity:             li.Quantity,
		Subtotal:             money.ToNumeric(li.Subtotal),
	})
	if err != nil {
		return pricing.LineItem{}, fmt.Errorf("create cart item: %w", err)
	}
	return cartItemToLineItem(row), nil
}

// UpdateQuantity changes a row's repeat quantity and reprices it against the
// current menu.
func (s *CartService) UpdateQuantity(ctx context.Context, customerID uuid.UUID, itemID int64, quantity int32) (pricing.LineItem, error) {
	if quantity <= 0 {
		return pricing.LineItem{}, pricing.ErrInvalidQuantity
	}
	row, err := s.store.GetCartItem(ctx, database.GetCartItemParams{ID: itemID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.LineItem{}, ErrCartItemNotFound
		}
		return pricing.LineItem{}, fmt.Errorf("get cart item: %w", err)
	}
	menu, err := loadMenu(ctx, s.store, row.MenuID)
	if err != nil {
		return pricing.LineItem{}, err
	}
	li := cartItemToLineItem(row)
	li.Quantity = quantity
	li = pricing.Reprice(menu, li)

	updated, err := s.store.UpdateCartItemQuantity(ctx, database.UpdateCartItemQuantityParams{
		ID:         itemID,
		CustomerID: customerID,
		Quantity:   quantity,
		Subtotal:   money.ToNumeric(li.Subtotal),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.LineItem{}, ErrCartItemNotFound
		}
		return pricing.LineItem{}, fmt.Errorf("update cart item: %w", err)
	}
	return cartItemToLineItem(updated), nil
}

// RemoveItem deletes one row from the cart.
func (s *CartService) RemoveItem(ctx context.Context, customerID uuid.UUID, itemID int64) error {
	n, err := s.store.DeleteCartItem(ctx, database.DeleteCartItemParams{ID: itemID, CustomerID: customerID})
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	if err := s.store.ClearCart(ctx, customerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
