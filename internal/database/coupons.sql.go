package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const couponColumns = `id, code, discount_amount, is_valid, created_at`

func scanCoupon(row interface{ Scan(...any) error }) (Coupon, error) {
	var i Coupon
	err := row.Scan(&i.ID, &i.Code, &i.DiscountAmount, &i.IsValid, &i.CreatedAt)
	return i, err
}

const createCoupon = `-- name: CreateCoupon :one
INSERT INTO coupons (code, discount_amount) VALUES ($1, $2)
RETURNING ` + couponColumns

type CreateCouponParams struct {
	Code           string         `json:"code"`
	DiscountAmount pgtype.Numeric `json:"discount_amount"`
}

func (q *Queries) CreateCoupon(ctx context.Context, arg CreateCouponParams) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, createCoupon, arg.Code, arg.DiscountAmount))
}

const listCoupons = `-- name: ListCoupons :many
SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC, id DESC`

func (q *Queries) ListCoupons(ctx context.Context) ([]Coupon, error) {
	rows, err := q.db.Query(ctx, listCoupons)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Coupon
	for rows.Next() {
		i, err := scanCoupon(rows)
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

const getCouponByCode = `-- name: GetCouponByCode :one
SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

func (q *Queries) GetCouponByCode(ctx context.Context, code string) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, getCouponByCode, code))
}

const toggleCoupon = `-- name: ToggleCoupon :one
UPDATE coupons SET is_valid = NOT is_valid WHERE id = $1
RETURNING ` + couponColumns

func (q *Queries) ToggleCoupon(ctx context.Context, id int64) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, toggleCoupon, id))
}

const deleteCoupon = `-- name: DeleteCoupon :execrows
DELETE FROM coupons c WHERE c.id = $1
  AND NOT EXISTS (
    SELECT 1 FROM customer_coupons cc JOIN orders o ON o.customer_coupon_id = cc.id
    WHERE cc.coupon_id = c.id
  )`

// DeleteCoupon removes a coupon and its unused grants. Coupons already
// attached to an order are kept; the caller sees zero rows affected.
func (q *Queries) DeleteCoupon(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCoupon, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const customerCouponColumns = `cc.id, cc.customer_id, cc.coupon_id, cc.is_used, cc.received_at, cc.used_at,
    c.code, c.discount_amount, c.is_valid`

func scanCustomerCoupon(row interface{ Scan(...any) error }) (CustomerCoupon, error) {
	var i CustomerCoupon
	err := row.Scan(
		&i.ID,
		&i.CustomerID,
		&i.CouponID,
		&i.IsUsed,
		&i.ReceivedAt,
		&i.UsedAt,
		&i.Code,
		&i.DiscountAmount,
		&i.IsValid,
	)
	return i, err
}

const grantCoupon = `-- name: GrantCoupon :one
WITH cc AS (
    INSERT INTO customer_coupons (customer_id, coupon_id) VALUES ($1, $2)
    RETURNING *
)
SELECT ` + customerCouponColumns + ` FROM cc JOIN coupons c ON c.id = cc.coupon_id`

type GrantCouponParams struct {
	CustomerID uuid.UUID `json:"customer_id"`
	CouponID   int64     `json:"coupon_id"`
}

func (q *Queries) GrantCoupon(ctx context.Context, arg GrantCouponParams) (CustomerCoupon, error) {
	return scanCustomerCoupon(q.db.QueryRow(ctx, grantCoupon, arg.CustomerID, arg.CouponID))
}

const listCustomerCoupons = `-- name: ListCustomerCoupons :many
SELECT ` + customerCouponColumns + `
FROM customer_coupons cc JOIN coupons c ON c.id = cc.coupon_id
WHERE cc.customer_id = $1
ORDER BY cc.is_used, cc.received_at DESC, cc.id DESC`

func (q *Queries) ListCustomerCoupons(ctx context.Context, customerID uuid.UUID) ([]CustomerCoupon, error) {
	rows, err := q.db.Query(ctx, listCustomerCoupons, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CustomerCoupon
	for rows.Next() {
		i, err := scanCustomerCoupon(rows)
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

const getCustomerCoupon = `-- name: GetCustomerCoupon :one
SELECT ` + customerCouponColumns + `
FROM customer_coupons cc JOIN coupons c ON c.id = cc.coupon_id
WHERE cc.id = $1 AND cc.customer_id = $2`

type GetCustomerCouponParams struct {
	ID         int64     `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
}

func (q *Queries) GetCustomerCoupon(ctx context.Context, arg GetCustomerCouponParams) (CustomerCoupon, error) {
	return scanCustomerCoupon(q.db.QueryRow(ctx, getCustomerCoupon, arg.ID, arg.CustomerID))
}

const useCustomerCoupon = `-- name: UseCustomerCoupon :one
WITH cc AS (
    UPDATE customer_coupons SET is_used = TRUE, used_at = now()
    WHERE id = $1 AND customer_id = $2 AND is_used = FALSE
    RETURNING *
)
SELECT ` + customerCouponColumns + ` FROM cc JOIN coupons c ON c.id = cc.coupon_id`

// UseCustomerCoupon flips a grant from unused to used. A grant that is already
// used, or belongs to someone else, yields pgx.ErrNoRows.
func (q *Queries) UseCustomerCoupon(ctx context.Context, arg GetCustomerCouponParams) (CustomerCoupon, error) {
	return scanCustomerCoupon(q.db.QueryRow(ctx, useCustomerCoupon, arg.ID, arg.CustomerID))
}
