package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrdaebak/api/internal/database"
)

type mockInventoryStore struct {
	listMenuItemsFn   func(ctx context.Context) ([]database.MenuItem, error)
	adjustItemStockFn func(ctx context.Context, arg database.AdjustItemStockParams) (database.MenuItem, error)
}

func (m *mockInventoryStore) ListMenuItems(ctx context.Context) ([]database.MenuItem, error) {
	return m.listMenuItemsFn(ctx)
}
func (m *mockInventoryStore) AdjustItemStock(ctx context.Context, arg database.AdjustItemStockParams) (database.MenuItem, error) {
	return m.adjustItemStockFn(ctx, arg)
}

func TestInventoryUpdate(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		quantity int32
		storeErr error
		wantErr  error
	}{
		{name: "add", action: "ADD", quantity: 5},
		{name: "set zero", action: "SET", quantity: 0},
		{name: "invalid action", action: "MULTIPLY", quantity: 2, wantErr: ErrInvalidStockAction},
		{name: "negative amount", action: "ADD", quantity: -1, wantErr: ErrInvalidStockAmount},
		{name: "unknown item", action: "ADD", quantity: 1, storeErr: pgx.ErrNoRows, wantErr: ErrItemNotFound},
		{name: "below zero", action: "SUBTRACT", quantity: 50, storeErr: &pgconn.PgError{Code: "23514"}, wantErr: ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			store := &mockInventoryStore{
				adjustItemStockFn: func(ctx context.Context, arg database.AdjustItemStockParams) (database.MenuItem, error) {
					called = true
					if arg.Code != "STEAK" || arg.Action != tt.action || arg.Quantity != tt.quantity {
						t.Errorf("unexpected params: %+v", arg)
					}
					if tt.storeErr != nil {
						return database.MenuItem{}, tt.storeErr
					}
					return database.MenuItem{Code: arg.Code, StockQuantity: arg.Quantity}, nil
				},
			}
			svc := NewInventoryService(store)

			item, err := svc.Update(context.Background(), "STEAK", tt.action, tt.quantity)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got: %v", tt.wantErr, err)
				}
				if tt.storeErr == nil && called {
					t.Error("store must not be called for invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.Code != "STEAK" {
				t.Errorf("code: got %s", item.Code)
			}
		})
	}
}
