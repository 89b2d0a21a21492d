package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, login_id, name, address, password_hash, role, card_number, card_expiry, card_cvc,
    card_holder_name, is_regular, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.LoginID,
		&i.Name,
		&i.Address,
		&i.PasswordHash,
		&i.Role,
		&i.CardNumber,
		&i.CardExpiry,
		&i.CardCvc,
		&i.CardHolderName,
		&i.IsRegular,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (login_id, name, address, password_hash, role, card_number, card_expiry, card_cvc, card_holder_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + userColumns

type CreateUserParams struct {
	LoginID        string      `json:"login_id"`
	Name           string      `json:"name"`
	Address        pgtype.Text `json:"address"`
	PasswordHash   string      `json:"password_hash"`
	Role           string      `json:"role"`
	CardNumber     pgtype.Text `json:"card_number"`
	CardExpiry     pgtype.Text `json:"card_expiry"`
	CardCvc        pgtype.Text `json:"card_cvc"`
	CardHolderName pgtype.Text `json:"card_holder_name"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.LoginID,
		arg.Name,
		arg.Address,
		arg.PasswordHash,
		arg.Role,
		arg.CardNumber,
		arg.CardExpiry,
		arg.CardCvc,
		arg.CardHolderName,
	)
	return scanUser(row)
}

const getUserByLoginID = `-- name: GetUserByLoginID :one
SELECT ` + userColumns + ` FROM users WHERE login_id = $1`

func (q *Queries) GetUserByLoginID(ctx context.Context, loginID string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByLoginID, loginID))
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const loginIDExists = `-- name: LoginIDExists :one
SELECT EXISTS (SELECT 1 FROM users WHERE login_id = $1)`

func (q *Queries) LoginIDExists(ctx context.Context, loginID string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, loginIDExists, loginID).Scan(&exists)
	return exists, err
}

const updateUserProfile = `-- name: UpdateUserProfile :one
UPDATE users SET
    name = $2,
    address = $3,
    card_number = $4,
    card_expiry = $5,
    card_cvc = $6,
    card_holder_name = $7,
    password_hash = $8,
    updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

type UpdateUserProfileParams struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Address        pgtype.Text `json:"address"`
	CardNumber     pgtype.Text `json:"card_number"`
	CardExpiry     pgtype.Text `json:"card_expiry"`
	CardCvc        pgtype.Text `json:"card_cvc"`
	CardHolderName pgtype.Text `json:"card_holder_name"`
	PasswordHash   string      `json:"password_hash"`
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUserProfile,
		arg.ID,
		arg.Name,
		arg.Address,
		arg.CardNumber,
		arg.CardExpiry,
		arg.CardCvc,
		arg.CardHolderName,
		arg.PasswordHash,
	)
	return scanUser(row)
}
