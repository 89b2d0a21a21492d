package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/handler"
	"github.com/mrdaebak/api/internal/money"
	"golang.org/x/crypto/bcrypt"
)

type mockProfileStore struct {
	user    database.User
	updated *database.UpdateUserProfileParams
}

func (m *mockProfileStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	if id != m.user.ID {
		return database.User{}, pgx.ErrNoRows
	}
	return m.user, nil
}

func (m *mockProfileStore) UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.User, error) {
	m.updated = &arg
	u := m.user
	u.Name = arg.Name
	u.Address = arg.Address
	u.CardNumber = arg.CardNumber
	u.PasswordHash = arg.PasswordHash
	return u, nil
}

func newProfileStore(t *testing.T, id uuid.UUID) *mockProfileStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &mockProfileStore{user: database.User{
		ID:           id,
		LoginID:      "guest",
		Name:         "Guest",
		Role:         "CUSTOMER",
		Address:      pgtype.Text{String: "Seoul", Valid: true},
		CardCvc:      pgtype.Text{String: "123", Valid: true},
		PasswordHash: string(hash),
	}}
}

func setupCustomerRouter(store *mockProfileStore, wallet walletFunc) *chi.Mux {
	return authedRouter(func(r chi.Router) {
		r.Route("/me", handler.NewCustomerHandler(store, wallet).RegisterRoutes)
	})
}

func TestGetProfile(t *testing.T) {
	claims := customerClaims()
	rr := doAuthRequest(t, setupCustomerRouter(newProfileStore(t, claims.UserID), nil), "GET", "/me", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	resp := decodeMap(t, rr)
	if resp["name"] != "Guest" {
		t.Errorf("name: %v", resp["name"])
	}
	if _, ok := resp["card_cvc"]; ok {
		t.Error("card cvc must not be returned")
	}

	rr = doAuthRequest(t, setupCustomerRouter(newProfileStore(t, uuid.New()), nil), "GET", "/me", nil, claims)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown user: got %d, want 404", rr.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	claims := customerClaims()
	store := newProfileStore(t, claims.UserID)

	body := map[string]interface{}{
		"current_password": "secret1",
		"name":             "Guest Kim",
		"card_number":      "",
		"new_password":     "secret2",
	}
	rr := doAuthRequest(t, setupCustomerRouter(store, nil), "PUT", "/me", body, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	got := store.updated
	if got.Name != "Guest Kim" {
		t.Errorf("name: got %q", got.Name)
	}
	if !got.Address.Valid || got.Address.String != "Seoul" {
		t.Errorf("omitted address must be kept: %+v", got.Address)
	}
	if got.CardNumber.Valid {
		t.Errorf("empty card number must clear the field: %+v", got.CardNumber)
	}
	if bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("secret2")) != nil {
		t.Error("new password was not stored")
	}
}

func TestUpdateProfile_WrongPassword(t *testing.T) {
	claims := customerClaims()
	store := newProfileStore(t, claims.UserID)

	rr := doAuthRequest(t, setupCustomerRouter(store, nil), "PUT", "/me", map[string]string{"current_password": "nope", "name": "X"}, claims)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rr.Code)
	}
	if store.updated != nil {
		t.Error("profile must not change")
	}

	rr = doAuthRequest(t, setupCustomerRouter(store, nil), "PUT", "/me", map[string]string{"name": "X"}, claims)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing password: got %d, want 400", rr.Code)
	}
}

func TestWallet(t *testing.T) {
	claims := customerClaims()
	wallet := func(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error) {
		return []database.CustomerCoupon{{ID: 1, CustomerID: customerID, Code: "WELCOME", DiscountAmount: money.ToNumeric(5000), IsValid: true}}, nil
	}
	rr := doAuthRequest(t, setupCustomerRouter(newProfileStore(t, claims.UserID), wallet), "GET", "/me/coupons", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	list := decodeList(t, rr)
	if len(list) != 1 || list[0]["discount_amount"] != "5000" || list[0]["used_at"] != nil {
		t.Errorf("unexpected wallet: %v", list)
	}
}
