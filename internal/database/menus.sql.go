package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listMenus = `-- name: ListMenus :many
SELECT id, type, base_price FROM menus ORDER BY id`

func (q *Queries) ListMenus(ctx context.Context) ([]Menu, error) {
	rows, err := q.db.Query(ctx, listMenus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Menu
	for rows.Next() {
		var i Menu
		if err := rows.Scan(&i.ID, &i.Type, &i.BasePrice); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMenu = `-- name: GetMenu :one
SELECT id, type, base_price FROM menus WHERE id = $1`

func (q *Queries) GetMenu(ctx context.Context, id int32) (Menu, error) {
	var i Menu
	err := q.db.QueryRow(ctx, getMenu, id).Scan(&i.ID, &i.Type, &i.BasePrice)
	return i, err
}

const listMenuComponents = `-- name: ListMenuComponents :many
SELECT mc.menu_id, mc.item_code, mi.label, mi.unit_price, mc.default_quantity, mi.stock_quantity, mc.position
FROM menu_components mc
JOIN menu_items mi ON mi.code = mc.item_code
WHERE mc.menu_id = $1
ORDER BY mc.position, mc.item_code`

func (q *Queries) ListMenuComponents(ctx context.Context, menuID int32) ([]MenuComponent, error) {
	rows, err := q.db.Query(ctx, listMenuComponents, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuComponents(rows)
}

const listAllMenuComponents = `-- name: ListAllMenuComponents :many
SELECT mc.menu_id, mc.item_code, mi.label, mi.unit_price, mc.default_quantity, mi.stock_quantity, mc.position
FROM menu_components mc
JOIN menu_items mi ON mi.code = mc.item_code
ORDER BY mc.menu_id, mc.position, mc.item_code`

func (q *Queries) ListAllMenuComponents(ctx context.Context) ([]MenuComponent, error) {
	rows, err := q.db.Query(ctx, listAllMenuComponents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuComponents(rows)
}

func scanMenuComponents(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]MenuComponent, error) {
	var items []MenuComponent
	for rows.Next() {
		var i MenuComponent
		if err := rows.Scan(
			&i.MenuID,
			&i.ItemCode,
			&i.Label,
			&i.UnitPrice,
			&i.DefaultQuantity,
			&i.StockQuantity,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT code, label, unit_price, stock_quantity, last_restocked FROM menu_items ORDER BY code`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(&i.Code, &i.Label, &i.UnitPrice, &i.StockQuantity, &i.LastRestocked); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT code, label, unit_price, stock_quantity, last_restocked FROM menu_items WHERE code = $1`

func (q *Queries) GetMenuItem(ctx context.Context, code string) (MenuItem, error) {
	var i MenuItem
	err := q.db.QueryRow(ctx, getMenuItem, code).Scan(&i.Code, &i.Label, &i.UnitPrice, &i.StockQuantity, &i.LastRestocked)
	return i, err
}

const adjustItemStock = `-- name: AdjustItemStock :one
WITH prev AS (SELECT stock_quantity FROM menu_items WHERE code = $1)
UPDATE menu_items mi SET
    stock_quantity = CASE $2::text
        WHEN 'ADD' THEN mi.stock_quantity + $3
        WHEN 'SUBTRACT' THEN mi.stock_quantity - $3
        ELSE $3
    END,
    last_restocked = CASE
        WHEN $2::text = 'ADD' OR ($2::text = 'SET' AND $3 > prev.stock_quantity) THEN now()
        ELSE mi.last_restocked
    END
FROM prev
WHERE mi.code = $1
RETURNING mi.code, mi.label, mi.unit_price, mi.stock_quantity, mi.last_restocked`

type AdjustItemStockParams struct {
	Code     string `json:"code"`
	Action   string `json:"action"`
	Quantity int32  `json:"quantity"`
}

// AdjustItemStock applies an ADD, SUBTRACT or SET in one statement. Going
// below zero violates the stock_quantity check constraint.
func (q *Queries) AdjustItemStock(ctx context.Context, arg AdjustItemStockParams) (MenuItem, error) {
	var i MenuItem
	err := q.db.QueryRow(ctx, adjustItemStock, arg.Code, arg.Action, arg.Quantity).Scan(
		&i.Code, &i.Label, &i.UnitPrice, &i.StockQuantity, &i.LastRestocked,
	)
	return i, err
}

const createMenu = `-- name: CreateMenu :one
INSERT INTO menus (type, base_price) VALUES ($1, $2)
ON CONFLICT (type) DO UPDATE SET base_price = EXCLUDED.base_price
RETURNING id, type, base_price`

type CreateMenuParams struct {
	Type      string         `json:"type"`
	BasePrice pgtype.Numeric `json:"base_price"`
}

func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (Menu, error) {
	var i Menu
	err := q.db.QueryRow(ctx, createMenu, arg.Type, arg.BasePrice).Scan(&i.ID, &i.Type, &i.BasePrice)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :exec
INSERT INTO menu_items (code, label, unit_price, stock_quantity) VALUES ($1, $2, $3, $4)
ON CONFLICT (code) DO UPDATE SET label = EXCLUDED.label, unit_price = EXCLUDED.unit_price`

type CreateMenuItemParams struct {
	Code          string         `json:"code"`
	Label         string         `json:"label"`
	UnitPrice     pgtype.Numeric `json:"unit_price"`
	StockQuantity int32          `json:"stock_quantity"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) error {
	_, err := q.db.Exec(ctx, createMenuItem, arg.Code, arg.Label, arg.UnitPrice, arg.StockQuantity)
	return err
}

const createMenuComponent = `-- name: CreateMenuComponent :exec
INSERT INTO menu_components (menu_id, item_code, default_quantity, position) VALUES ($1, $2, $3, $4)
ON CONFLICT (menu_id, item_code) DO UPDATE SET default_quantity = EXCLUDED.default_quantity, position = EXCLUDED.position`

type CreateMenuComponentParams struct {
	MenuID          int32  `json:"menu_id"`
	ItemCode        string `json:"item_code"`
	DefaultQuantity int32  `json:"default_quantity"`
	Position        int32  `json:"position"`
}

func (q *Queries) CreateMenuComponent(ctx context.Context, arg CreateMenuComponentParams) error {
	_, err := q.db.Exec(ctx, createMenuComponent, arg.MenuID, arg.ItemCode, arg.DefaultQuantity, arg.Position)
	return err
}
