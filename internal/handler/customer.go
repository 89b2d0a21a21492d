package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mrdaebak/api/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// ProfileStore defines the database methods needed by profile handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ProfileStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.User, error)
}

// WalletServicer lists the coupon grants a customer holds.
// Satisfied by *service.CouponService.
type WalletServicer interface {
	Wallet(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error)
}

// CustomerHandler handles the signed-in customer's profile and coupon wallet.
type CustomerHandler struct {
	store   ProfileStore
	coupons WalletServicer
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store ProfileStore, coupons WalletServicer) *CustomerHandler {
	return &CustomerHandler{store: store, coupons: coupons}
}

// RegisterRoutes registers customer endpoints. Expected to be mounted at /me.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.GetProfile)
	r.Put("/", h.UpdateProfile)
	r.Get("/coupons", h.Wallet)
}

// updateProfileRequest leaves a field unchanged when it is omitted.
type updateProfileRequest struct {
	CurrentPassword string  `json:"current_password"`
	NewPassword     *string `json:"new_password"`
	Name            *string `json:"name"`
	Address         *string `json:"address"`
	CardNumber      *string `json:"card_number"`
	CardExpiry      *string `json:"card_expiry"`
	CardCvc         *string `json:"card_cvc"`
	CardHolderName  *string `json:"card_holder_name"`
}

// GetProfile handles GET /me.
func (h *CustomerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /me. The current password must be supplied for
// any change.
func (h *CustomerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CurrentPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "current_password is required"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		log.Printf("ERROR: get user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "current password is incorrect"})
		return
	}

	params := database.UpdateUserProfileParams{
		ID:             user.ID,
		Name:           user.Name,
		Address:        user.Address,
		CardNumber:     user.CardNumber,
		CardExpiry:     user.CardExpiry,
		CardCvc:        user.CardCvc,
		CardHolderName: user.CardHolderName,
		PasswordHash:   user.PasswordHash,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
			return
		}
		params.Name = name
	}
	if req.Address != nil {
		params.Address = optionalText(*req.Address)
	}
	if req.CardNumber != nil {
		params.CardNumber = optionalText(*req.CardNumber)
	}
	if req.CardExpiry != nil {
		params.CardExpiry = optionalText(*req.CardExpiry)
	}
	if req.CardCvc != nil {
		params.CardCvc = optionalText(*req.CardCvc)
	}
	if req.CardHolderName != nil {
		params.CardHolderName = optionalText(*req.CardHolderName)
	}
	if req.NewPassword != nil && *req.NewPassword != "" {
		if len(*req.NewPassword) < 4 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 4 characters"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: hash password: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		params.PasswordHash = string(hash)
	}

	updated, err := h.store.UpdateUserProfile(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: update profile: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// Wallet handles GET /me/coupons.
func (h *CustomerHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	grants, err := h.coupons.Wallet(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, "list wallet", err)
		return
	}
	resp := make([]customerCouponResponse, len(grants))
	for i, g := range grants {
		resp[i] = toCustomerCouponResponse(g)
	}
	writeJSON(w, http.StatusOK, resp)
}
