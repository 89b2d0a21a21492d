package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createModificationLog = `-- name: CreateModificationLog :one
INSERT INTO order_modification_logs (order_id, previous_items, new_items, price_difference)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, modified_at, previous_items, new_items, price_difference`

type CreateModificationLogParams struct {
	OrderID         int64          `json:"order_id"`
	PreviousItems   []byte         `json:"previous_items"`
	NewItems        []byte         `json:"new_items"`
	PriceDifference pgtype.Numeric `json:"price_difference"`
}

func (q *Queries) CreateModificationLog(ctx context.Context, arg CreateModificationLogParams) (OrderModificationLog, error) {
	row := q.db.QueryRow(ctx, createModificationLog,
		arg.OrderID,
		arg.PreviousItems,
		arg.NewItems,
		arg.PriceDifference,
	)
	var i OrderModificationLog
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ModifiedAt,
		&i.PreviousItems,
		&i.NewItems,
		&i.PriceDifference,
	)
	return i, err
}

const listModificationLogs = `-- name: ListModificationLogs :many
SELECT id, order_id, modified_at, previous_items, new_items, price_difference
FROM order_modification_logs
WHERE order_id = $1
ORDER BY modified_at DESC, id DESC`

func (q *Queries) ListModificationLogs(ctx context.Context, orderID int64) ([]OrderModificationLog, error) {
	rows, err := q.db.Query(ctx, listModificationLogs, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderModificationLog
	for rows.Next() {
		var i OrderModificationLog
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ModifiedAt,
			&i.PreviousItems,
			&i.NewItems,
			&i.PriceDifference,
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
