package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/enum"
)

// Errors returned by the inventory service.
var (
	ErrItemNotFound       = errors.New("item not found")
	ErrInvalidStockAction = errors.New("action must be ADD, SUBTRACT or SET")
	ErrInvalidStockAmount = errors.New("quantity must be >= 0")
	ErrInsufficientStock  = errors.New("not enough stock")
)

// InventoryStore defines the DB methods for stock keeping.
// Satisfied by *database.Queries.
type InventoryStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	AdjustItemStock(ctx context.Context, arg database.AdjustItemStockParams) (database.MenuItem, error)
}

// InventoryService keeps component stock levels.
type InventoryService struct {
	store InventoryStore
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(store InventoryStore) *InventoryService {
	return &InventoryService{store: store}
}

// List returns every component item with its stock.
func (s *InventoryService) List(ctx context.Context) ([]database.MenuItem, error) {
	items, err := s.store.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

// Update applies a stock change to the item with the given code.
func (s *InventoryService) Update(ctx context.Context, code, action string, quantity int32) (database.MenuItem, error) {
	switch action {
	case enum.StockActionAdd, enum.StockActionSubtract, enum.StockActionSet:
	default:
		return database.MenuItem{}, ErrInvalidStockAction
	}
	if quantity < 0 {
		return database.MenuItem{}, ErrInvalidStockAmount
	}

	item, err := s.store.AdjustItemStock(ctx, database.AdjustItemStockParams{
		Code:     code,
		Action:   action,
		Quantity: quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.MenuItem{}, ErrItemNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return database.MenuItem{}, ErrInsufficientStock
		}
		return database.MenuItem{}, fmt.Errorf("adjust stock: %w", err)
	}
	return item, nil
}
