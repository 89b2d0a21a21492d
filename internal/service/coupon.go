package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/money"
)

// Errors returned by the coupon service.
var (
	ErrCouponCodeRequired = errors.New("code is required")
	ErrInvalidDiscount    = errors.New("discount_amount must be > 0")
	ErrCouponCodeTaken    = errors.New("coupon code already exists")
	ErrCouponInUse        = errors.New("coupon has been redeemed and cannot be deleted")
)

// CouponStore defines the DB methods for coupon administration and wallets.
// Satisfied by *database.Queries.
type CouponStore interface {
	CreateCoupon(ctx context.Context, arg database.CreateCouponParams) (database.Coupon, error)
	ListCoupons(ctx context.Context) ([]database.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (database.Coupon, error)
	ToggleCoupon(ctx context.Context, id int64) (database.Coupon, error)
	DeleteCoupon(ctx context.Context, id int64) (int64, error)
	GrantCoupon(ctx context.Context, arg database.GrantCouponParams) (database.CustomerCoupon, error)
	ListCustomerCoupons(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error)
}

// CouponService manages coupon definitions and the grants customers hold.
type CouponService struct {
	store CouponStore
}

// NewCouponService creates a new CouponService.
func NewCouponService(store CouponStore) *CouponService {
	return &CouponService{store: store}
}

// NormalizeCode is the canonical form coupon codes are stored and matched in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create defines a new flat-discount coupon.
func (s *CouponService) Create(ctx context.Context, code string, discount int64) (database.Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return database.Coupon{}, ErrCouponCodeRequired
	}
	if discount <= 0 {
		return database.Coupon{}, ErrInvalidDiscount
	}
	c, err := s.store.CreateCoupon(ctx, database.CreateCouponParams{
		Code:           code,
		DiscountAmount: money.ToNumeric(discount),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return database.Coupon{}, ErrCouponCodeTaken
		}
		return database.Coupon{}, fmt.Errorf("create coupon: %w", err)
	}
	return c, nil
}

// List returns every coupon, newest first.
func (s *CouponService) List(ctx context.Context) ([]database.Coupon, error) {
	coupons, err := s.store.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// Toggle flips whether a coupon can still be redeemed. Grants already handed
// out follow the coupon.
func (s *CouponService) Toggle(ctx context.Context, id int64) (database.Coupon, error) {
	c, err := s.store.ToggleCoupon(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Coupon{}, ErrCouponNotFound
		}
		return database.Coupon{}, fmt.Errorf("toggle coupon: %w", err)
	}
	return c, nil
}

// Delete removes a coupon that no order references.
func (s *CouponService) Delete(ctx context.Context, id int64) error {
	n, err := s.store.DeleteCoupon(ctx, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if n == 0 {
		// Either missing or redeemed; the listing tells the two apart.
		coupons, err := s.store.ListCoupons(ctx)
		if err != nil {
			return fmt.Errorf("list coupons: %w", err)
		}
		for _, c := range coupons {
			if c.ID == id {
				return ErrCouponInUse
			}
		}
		return ErrCouponNotFound
	}
	return nil
}

// Grant gives a customer one use of the coupon with the given code.
func (s *CouponService) Grant(ctx context.Context, customerID uuid.UUID, code string) (database.CustomerCoupon, error) {
	c, err := s.store.GetCouponByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CustomerCoupon{}, ErrCouponNotFound
		}
		return database.CustomerCoupon{}, fmt.Errorf("get coupon: %w", err)
	}
	if !c.IsValid {
		return database.CustomerCoupon{}, ErrCouponInvalid
	}
	cc, err := s.store.GrantCoupon(ctx, database.GrantCouponParams{CustomerID: customerID, CouponID: c.ID})
	if err != nil {
		return database.CustomerCoupon{}, fmt.Errorf("grant coupon: %w", err)
	}
	return cc, nil
}

// Wallet lists a customer's grants, unused first.
func (s *CouponService) Wallet(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error) {
	grants, err := s.store.ListCustomerCoupons(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer coupons: %w", err)
	}
	return grants, nil
}
