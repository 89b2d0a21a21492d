package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Orders are always read together with the attached coupon, if any. Writes go
// through a CTE aliased "o" so the same projection serves RETURNING as well.
const orderColumns = `o.id, o.customer_id, o.status, o.delivery_type, o.reservation_time, o.final_price,
    o.customer_coupon_id, o.kitchen_staff_id, o.delivery_staff_id, o.ready_at, o.created_at, o.updated_at,
    c.code, c.discount_amount`

const orderJoins = `
LEFT JOIN customer_coupons cc ON cc.id = o.customer_coupon_id
LEFT JOIN coupons c ON c.id = cc.coupon_id`

const selectOrders = `SELECT ` + orderColumns + ` FROM orders o` + orderJoins

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.Status,
		&i.DeliveryType,
		&i.ReservationTime,
		&i.FinalPrice,
		&i.CustomerCouponID,
		&i.KitchenStaffID,
		&i.DeliveryStaffID,
		&i.ReadyAt,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CouponCode,
		&i.CouponDiscount,
	)
	return i, err
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
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

const createOrder = `-- name: CreateOrder :one
WITH o AS (
    INSERT INTO orders (customer_id, delivery_type, reservation_time, final_price, customer_coupon_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

type CreateOrderParams struct {
	CustomerID       uuid.UUID          `json:"customer_id"`
	DeliveryType     string             `json:"delivery_type"`
	ReservationTime  pgtype.Timestamptz `json:"reservation_time"`
	FinalPrice       pgtype.Numeric     `json:"final_price"`
	CustomerCouponID pgtype.Int8        `json:"customer_coupon_id"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.CustomerID,
		arg.DeliveryType,
		arg.ReservationTime,
		arg.FinalPrice,
		arg.CustomerCouponID,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
` + selectOrders + `
WHERE o.id = $1`

func (q *Queries) GetOrder(ctx context.Context, id int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForCustomer = `-- name: GetOrderForCustomer :one
` + selectOrders + `
WHERE o.id = $1 AND o.customer_id = $2`

type GetOrderForCustomerParams struct {
	ID         int64     `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

func (q *Queries) GetOrderForCustomer(ctx context.Context, arg GetOrderForCustomerParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForCustomer, arg.ID, arg.CustomerID))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
` + selectOrders + `
WHERE o.id = $1 AND o.customer_id = $2
FOR UPDATE OF o`

// GetOrderForUpdate locks the order row for the rest of the transaction.
func (q *Queries) GetOrderForUpdate(ctx context.Context, arg GetOrderForCustomerParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, arg.ID, arg.CustomerID))
}

const listOrdersByCustomer = `-- name: ListOrdersByCustomer :many
` + selectOrders + `
WHERE o.customer_id = $1
ORDER BY o.created_at DESC, o.id DESC`

func (q *Queries) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByCustomer, customerID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

const getCurrentOrder = `-- name: GetCurrentOrder :one
` + selectOrders + `
WHERE o.customer_id = $1 AND o.status IN ('RECEIVED', 'COOKING', 'DELIVERING')
ORDER BY o.created_at DESC, o.id DESC
LIMIT 1`

// GetCurrentOrder returns the customer's most recent order that is still in progress.
func (q *Queries) GetCurrentOrder(ctx context.Context, customerID uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getCurrentOrder, customerID))
}

const listReservationOrdersByCustomer = `-- name: ListReservationOrdersByCustomer :many
` + selectOrders + `
WHERE o.customer_id = $1 AND o.delivery_type = 'RESERVATION'
  AND o.status IN ('RECEIVED', 'COOKING', 'DELIVERING')
ORDER BY o.reservation_time, o.id`

func (q *Queries) ListReservationOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listReservationOrdersByCustomer, customerID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

const listPendingKitchenOrders = `-- name: ListPendingKitchenOrders :many
` + selectOrders + `
WHERE o.status = 'RECEIVED' AND o.kitchen_staff_id IS NULL AND o.delivery_type = 'IMMEDIATE'
ORDER BY o.created_at, o.id`

func (q *Queries) ListPendingKitchenOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listPendingKitchenOrders)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

const listKitchenReservations = `-- name: ListKitchenReservations :many
` + selectOrders + `
WHERE o.status = 'RECEIVED' AND o.kitchen_staff_id IS NULL AND o.delivery_type = 'RESERVATION'
ORDER BY o.reservation_time, o.id`

func (q *Queries) ListKitchenReservations(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listKitchenReservations)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

const listOrdersByKitchenStaff = `-- name: ListOrdersByKitchenStaff :many
` + selectOrders + `
WHERE o.kitchen_staff_id = $1 AND o.status IN ('RECEIVED', 'COOKING') AND o.ready_at IS NULL
ORDER BY o.created_at, o.id`

func (q *Queries) ListOrdersByKitchenStaff(ctx context.Context, staffID pgtype.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByKitchenStaff, staffID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

const listReadyOrders = `-- name: ListReadyOrders :many
` + selectOrders + `
WHERE o.status = 'COOKING' AND o.ready_at IS NOT NULL AND o.delivery_staff_id IS NULL
ORDER BY o.ready_at, o.id`

func (q *Queries) ListReadyOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listReadyOrders)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

const listOrdersByDeliveryStaff = `-- name: ListOrdersByDeliveryStaff :many
` + selectOrders + `
WHERE o.delivery_staff_id = $1 AND o.status = 'DELIVERING'
ORDER BY o.updated_at, o.id`

func (q *Queries) ListOrdersByDeliveryStaff(ctx context.Context, staffID pgtype.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByDeliveryStaff, staffID)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

// Status transitions. Each UPDATE carries its precondition in the WHERE
// clause, so a stale transition returns pgx.ErrNoRows instead of a row.

type OrderStaffParams struct {
	ID      int64       `json:"id"`
	StaffID pgtype.UUID `json:"staff_id"`
}

const claimOrderForKitchen = `-- name: ClaimOrderForKitchen :one
WITH o AS (
    UPDATE orders SET kitchen_staff_id = $2, updated_at = now()
    WHERE id = $1 AND status = 'RECEIVED' AND kitchen_staff_id IS NULL
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

func (q *Queries) ClaimOrderForKitchen(ctx context.Context, arg OrderStaffParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, claimOrderForKitchen, arg.ID, arg.StaffID))
}

const startCooking = `-- name: StartCooking :one
WITH o AS (
    UPDATE orders SET status = 'COOKING', kitchen_staff_id = $2, updated_at = now()
    WHERE id = $1 AND status = 'RECEIVED' AND (kitchen_staff_id IS NULL OR kitchen_staff_id = $2)
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

func (q *Queries) StartCooking(ctx context.Context, arg OrderStaffParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, startCooking, arg.ID, arg.StaffID))
}

const markOrderReady = `-- name: MarkOrderReady :one
WITH o AS (
    UPDATE orders SET ready_at = now(), updated_at = now()
    WHERE id = $1 AND status = 'COOKING' AND kitchen_staff_id = $2 AND ready_at IS NULL
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

func (q *Queries) MarkOrderReady(ctx context.Context, arg OrderStaffParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderReady, arg.ID, arg.StaffID))
}

const rejectOrder = `-- name: RejectOrder :one
WITH o AS (
    UPDATE orders SET status = 'REJECTED', kitchen_staff_id = $2, updated_at = now()
    WHERE id = $1 AND status = 'RECEIVED' AND (kitchen_staff_id IS NULL OR kitchen_staff_id = $2)
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

func (q *Queries) RejectOrder(ctx context.Context, arg OrderStaffParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, rejectOrder, arg.ID, arg.StaffID))
}

const pickupOrder = `-- name: PickupOrder :one
WITH o AS (
    UPDATE orders SET status = 'DELIVERING', delivery_staff_id = $2, updated_at = now()
    WHERE id = $1 AND status = 'COOKING' AND ready_at IS NOT NULL AND delivery_staff_id IS NULL
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

func (q *Queries) PickupOrder(ctx context.Context, arg OrderStaffParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, pickupOrder, arg.ID, arg.StaffID))
}

const completeDelivery = `-- name: CompleteDelivery :one
WITH o AS (
    UPDATE orders SET status = 'COMPLETED', updated_at = now()
    WHERE id = $1 AND status = 'DELIVERING' AND delivery_staff_id = $2
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

func (q *Queries) CompleteDelivery(ctx context.Context, arg OrderStaffParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, completeDelivery, arg.ID, arg.StaffID))
}

const cancelOrder = `-- name: CancelOrder :one
WITH o AS (
    UPDATE orders SET status = 'CANCELLED', updated_at = now()
    WHERE id = $1 AND customer_id = $2 AND status = 'RECEIVED'
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

func (q *Queries) CancelOrder(ctx context.Context, arg GetOrderForCustomerParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.CustomerID))
}

const setOrderFinalPrice = `-- name: SetOrderFinalPrice :one
WITH o AS (
    UPDATE orders SET final_price = $2, updated_at = now()
    WHERE id = $1 AND status = 'RECEIVED'
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

type SetOrderFinalPriceParams struct {
	ID         int64          `json:"id"`
	FinalPrice pgtype.Numeric `json:"final_price"`
}

func (q *Queries) SetOrderFinalPrice(ctx context.Context, arg SetOrderFinalPriceParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, setOrderFinalPrice, arg.ID, arg.FinalPrice))
}

const attachCouponToOrder = `-- name: AttachCouponToOrder :one
WITH o AS (
    UPDATE orders SET customer_coupon_id = $2, final_price = $3, updated_at = now()
    WHERE id = $1 AND customer_coupon_id IS NULL AND status = 'RECEIVED'
    RETURNING *
)
SELECT ` + orderColumns + ` FROM o` + orderJoins

type AttachCouponToOrderParams struct {
	ID               int64          `json:"id"`
	CustomerCouponID int64          `json:"customer_coupon_id"`
	FinalPrice       pgtype.Numeric `json:"final_price"`
}

// AttachCouponToOrder succeeds only while the order has no coupon yet.
func (q *Queries) AttachCouponToOrder(ctx context.Context, arg AttachCouponToOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, attachCouponToOrder, arg.ID, arg.CustomerCouponID, arg.FinalPrice))
}

const orderItemColumns = `id, seq, order_id, menu_id, style, customized_quantities, quantity, subtotal, created_at`

func scanOrderItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.Seq,
		&i.OrderID,
		&i.MenuID,
		&i.Style,
		&i.CustomizedQuantities,
		&i.Quantity,
		&i.Subtotal,
		&i.CreatedAt,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_id, style, customized_quantities, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID              int64          `json:"order_id"`
	MenuID               int32          `json:"menu_id"`
	Style                string         `json:"style"`
	CustomizedQuantities []byte         `json:"customized_quantities"`
	Quantity             int32          `json:"quantity"`
	Subtotal             pgtype.Numeric `json:"subtotal"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuID,
		arg.Style,
		arg.CustomizedQuantities,
		arg.Quantity,
		arg.Subtotal,
	)
	return scanOrderItem(row)
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY seq, id`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
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

const deleteOrderItemsByOrder = `-- name: DeleteOrderItemsByOrder :exec
DELETE FROM order_items WHERE order_id = $1`

func (q *Queries) DeleteOrderItemsByOrder(ctx context.Context, orderID int64) error {
	_, err := q.db.Exec(ctx, deleteOrderItemsByOrder, orderID)
	return err
}
