package service

import (
	"context"
	"fmt"

	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/pricing"
)

// CatalogStore defines the DB methods for reading the menu catalog.
// Satisfied by *database.Queries.
type CatalogStore interface {
	MenuReader
	ListMenus(ctx context.Context) ([]database.Menu, error)
	ListAllMenuComponents(ctx context.Context) ([]database.MenuComponent, error)
}

// CatalogService serves the read-only menu catalog.
type CatalogService struct {
	store CatalogStore
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

// Menus returns every menu with its components in display order.
func (s *CatalogService) Menus(ctx context.Context) ([]pricing.Menu, error) {
	menus, err := s.store.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	comps, err := s.store.ListAllMenuComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menu components: %w", err)
	}
	byMenu := make(map[int32][]database.MenuComponent, len(menus))
	for _, c := range comps {
		byMenu[c.MenuID] = append(byMenu[c.MenuID], c)
	}
	out := make([]pricing.Menu, 0, len(menus))
	for _, m := range menus {
		out = append(out, toPricingMenu(m, byMenu[m.ID]))
	}
	return out, nil
}

// Menu returns one menu.
func (s *CatalogService) Menu(ctx context.Context, id int32) (pricing.Menu, error) {
	return loadMenu(ctx, s.store, id)
}
