package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/enum"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
	"github.com/mrdaebak/api/internal/service"
)

// CatalogServicer defines the catalog reads needed by menu handlers.
// Satisfied by *service.CatalogService.
type CatalogServicer interface {
	Menus(ctx context.Context) ([]pricing.Menu, error)
	Menu(ctx context.Context, id int32) (pricing.Menu, error)
}

// ItemLister lists component items with their stock.
// Satisfied by *service.InventoryService.
type ItemLister interface {
	List(ctx context.Context) ([]database.MenuItem, error)
}

// MenuHandler serves the public menu catalog.
type MenuHandler struct {
	catalog CatalogServicer
	items   ItemLister
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(catalog CatalogServicer, items ItemLister) *MenuHandler {
	return &MenuHandler{catalog: catalog, items: items}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menus", h.List)
	r.Get("/menus/{id}", h.Get)
	r.Get("/items", h.Items)
}

type menuResponse struct {
	ID        int32                   `json:"id"`
	Type      string                  `json:"type"`
	Name      string                  `json:"name"`
	BasePrice string                  `json:"base_price"`
	Styles    []styleResponse         `json:"styles"`
	Items     []menuComponentResponse `json:"items"`
}

type styleResponse struct {
	Style     string `json:"style"`
	Surcharge string `json:"surcharge"`
}

type menuComponentResponse struct {
	Code            string `json:"code"`
	Label           string `json:"label"`
	UnitPrice       string `json:"unit_price"`
	DefaultQuantity int    `json:"default_quantity"`
	StockQuantity   *int   `json:"stock_quantity"`
}

var allStyles = []string{enum.StyleSimple, enum.StyleGrand, enum.StyleDeluxe}

func toMenuResponse(m pricing.Menu) menuResponse {
	resp := menuResponse{
		ID:        m.ID,
		Type:      m.Type,
		Name:      enum.MenuName(m.Type),
		BasePrice: money.String(m.BasePrice),
		Styles:    []styleResponse{},
		Items:     make([]menuComponentResponse, len(m.Items)),
	}
	for _, s := range allStyles {
		if pricing.ValidateStyle(m.Type, s) != nil {
			continue
		}
		resp.Styles = append(resp.Styles, styleResponse{Style: s, Surcharge: money.String(pricing.StyleSurcharge(s))})
	}
	for i, it := range m.Items {
		resp.Items[i] = menuComponentResponse{
			Code:            it.Code,
			Label:           it.Label,
			UnitPrice:       money.String(it.UnitPrice),
			DefaultQuantity: it.DefaultQuantity,
			StockQuantity:   it.StockQuantity,
		}
	}
	return resp
}

// List handles GET /menus.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.catalog.Menus(r.Context())
	if err != nil {
		writeServiceError(w, "list menus", err)
		return
	}
	resp := make([]menuResponse, len(menus))
	for i, m := range menus {
		resp[i] = toMenuResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /menus/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu id"})
		return
	}
	m, err := h.catalog.Menu(r.Context(), int32(id))
	if err != nil {
		if errors.Is(err, service.ErrMenuNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeServiceError(w, "get menu", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuResponse(m))
}

// Items handles GET /items.
func (h *MenuHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		writeServiceError(w, "list items", err)
		return
	}
	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = toMenuItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}
