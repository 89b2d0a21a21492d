package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartItemColumns = `id, seq, customer_id, menu_id, style, customized_quantities, quantity, subtotal, created_at`

func scanCartItem(row interface{ Scan(...any) error }) (CartItem, error) {
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.Seq,
		&i.CustomerID,
		&i.MenuID,
		&i.Style,
		&i.CustomizedQuantities,
		&i.Quantity,
		&i.Subtotal,
		&i.CreatedAt,
	)
	return i, err
}

const listCartItems = `-- name: ListCartItems :many
SELECT ` + cartItemColumns + ` FROM cart_items WHERE customer_id = $1 ORDER BY seq`

func (q *Queries) ListCartItems(ctx context.Context, customerID uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.Query(ctx, listCartItems, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CartItem
	for rows.Next() {
		i, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCartItem = `-- name: GetCartItem :one
SELECT ` + cartItemColumns + ` FROM cart_items WHERE id = $1 AND customer_id = $2`

type GetCartItemParams struct {
	ID         int64     `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(ctx, getCartItem, arg.ID, arg.CustomerID))
}

const createCartItem = `-- name: CreateCartItem :one
INSERT INTO cart_items (customer_id, menu_id, style, customized_quantities, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + cartItemColumns

type CreateCartItemParams struct {
	CustomerID           uuid.UUID      `json:"customer_id"`
	MenuID               int32          `json:"menu_id"`
	Style                string         `json:"style"`
	CustomizedQuantities []byte         `json:"customized_quantities"`
	Quantity             int32          `json:"quantity"`
	Subtotal             pgtype.Numeric `json:"subtotal"`
}

func (q *Queries) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, createCartItem,
		arg.CustomerID,
		arg.MenuID,
		arg.Style,
		arg.CustomizedQuantities,
		arg.Quantity,
		arg.Subtotal,
	)
	return scanCartItem(row)
}

const updateCartItemQuantity = `-- name: UpdateCartItemQuantity :one
UPDATE cart_items SET quantity = $3, subtotal = $4
WHERE id = $1 AND customer_id = $2
RETURNING ` + cartItemColumns

type UpdateCartItemQuantityParams struct {
	ID         int64          `json:"id"`
	CustomerID uuid.UUID      `json:"customer_id"`
	Quantity   int32          `json:"quantity"`
	Subtotal   pgtype.Numeric `json:"subtotal"`
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, updateCartItemQuantity, arg.ID, arg.CustomerID, arg.Quantity, arg.Subtotal)
	return scanCartItem(row)
}

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items WHERE id = $1 AND customer_id = $2`

type DeleteCartItemParams struct {
	ID         int64     `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, arg.ID, arg.CustomerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const clearCart = `-- name: ClearCart :exec
DELETE FROM cart_items WHERE customer_id = $1`

func (q *Queries) ClearCart(ctx context.Context, customerID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearCart, customerID)
	return err
}
