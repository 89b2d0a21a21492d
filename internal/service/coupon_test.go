package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/money"
)

type mockCouponStore struct {
	createCouponFn        func(ctx context.Context, arg database.CreateCouponParams) (database.Coupon, error)
	listCouponsFn         func(ctx context.Context) ([]database.Coupon, error)
	getCouponByCodeFn     func(ctx context.Context, code string) (database.Coupon, error)
	toggleCouponFn        func(ctx context.Context, id int64) (database.Coupon, error)
	deleteCouponFn        func(ctx context.Context, id int64) (int64, error)
	grantCouponFn         func(ctx context.Context, arg database.GrantCouponParams) (database.CustomerCoupon, error)
	listCustomerCouponsFn func(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error)
}

func (m *mockCouponStore) CreateCoupon(ctx context.Context, arg database.CreateCouponParams) (database.Coupon, error) {
	return m.createCouponFn(ctx, arg)
}
func (m *mockCouponStore) ListCoupons(ctx context.Context) ([]database.Coupon, error) {
	return m.listCouponsFn(ctx)
}
func (m *mockCouponStore) GetCouponByCode(ctx context.Context, code string) (database.Coupon, error) {
	return m.getCouponByCodeFn(ctx, code)
}
func (m *mockCouponStore) ToggleCoupon(ctx context.Context, id int64) (database.Coupon, error) {
	return m.toggleCouponFn(ctx, id)
}
func (m *mockCouponStore) DeleteCoupon(ctx context.Context, id int64) (int64, error) {
	return m.deleteCouponFn(ctx, id)
}
func (m *mockCouponStore) GrantCoupon(ctx context.Context, arg database.GrantCouponParams) (database.CustomerCoupon, error) {
	return m.grantCouponFn(ctx, arg)
}
func (m *mockCouponStore) ListCustomerCoupons(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error) {
	return m.listCustomerCouponsFn(ctx, customerID)
}

func TestCouponCreate(t *testing.T) {
	var stored database.CreateCouponParams
	store := &mockCouponStore{
		createCouponFn: func(ctx context.Context, arg database.CreateCouponParams) (database.Coupon, error) {
			stored = arg
			return database.Coupon{ID: 1, Code: arg.Code, DiscountAmount: arg.DiscountAmount, IsValid: true}, nil
		},
	}
	svc := NewCouponService(store)

	c, err := svc.Create(context.Background(), "  welcome ", 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Code != "WELCOME" || money.FromNumeric(stored.DiscountAmount) != 5000 {
		t.Errorf("unexpected params: %+v", stored)
	}
	if c.Code != "WELCOME" {
		t.Errorf("code: got %s", c.Code)
	}
}

func TestCouponCreate_Errors(t *testing.T) {
	store := &mockCouponStore{
		createCouponFn: func(ctx context.Context, arg database.CreateCouponParams) (database.Coupon, error) {
			return database.Coupon{}, &pgconn.PgError{Code: "23505"}
		},
	}
	svc := NewCouponService(store)

	if _, err := svc.Create(context.Background(), " ", 5000); !errors.Is(err, ErrCouponCodeRequired) {
		t.Errorf("expected ErrCouponCodeRequired, got: %v", err)
	}
	if _, err := svc.Create(context.Background(), "X", 0); !errors.Is(err, ErrInvalidDiscount) {
		t.Errorf("expected ErrInvalidDiscount, got: %v", err)
	}
	if _, err := svc.Create(context.Background(), "X", 1000); !errors.Is(err, ErrCouponCodeTaken) {
		t.Errorf("expected ErrCouponCodeTaken, got: %v", err)
	}
}

func TestCouponDelete(t *testing.T) {
	listing := func(ctx context.Context) ([]database.Coupon, error) {
		return []database.Coupon{{ID: 1, Code: "REGULAR"}}, nil
	}
	tests := []struct {
		name    string
		id      int64
		deleted int64
		wantErr error
	}{
		{name: "deleted", id: 1, deleted: 1},
		{name: "redeemed", id: 1, deleted: 0, wantErr: ErrCouponInUse},
		{name: "missing", id: 2, deleted: 0, wantErr: ErrCouponNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockCouponStore{
				listCouponsFn: listing,
				deleteCouponFn: func(ctx context.Context, id int64) (int64, error) {
					return tt.deleted, nil
				},
			}
			err := NewCouponService(store).Delete(context.Background(), tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestCouponGrant(t *testing.T) {
	customerID := uuid.New()
	store := &mockCouponStore{
		getCouponByCodeFn: func(ctx context.Context, code string) (database.Coupon, error) {
			switch code {
			case "REGULAR":
				return database.Coupon{ID: 3, Code: code, IsValid: true}, nil
			case "OLD":
				return database.Coupon{ID: 4, Code: code, IsValid: false}, nil
			}
			return database.Coupon{}, pgx.ErrNoRows
		},
		grantCouponFn: func(ctx context.Context, arg database.GrantCouponParams) (database.CustomerCoupon, error) {
			return database.CustomerCoupon{ID: 11, CustomerID: arg.CustomerID, CouponID: arg.CouponID, Code: "REGULAR", IsValid: true}, nil
		},
	}
	svc := NewCouponService(store)

	cc, err := svc.Grant(context.Background(), customerID, "regular")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cc.CouponID != 3 || cc.CustomerID != customerID {
		t.Errorf("unexpected grant: %+v", cc)
	}

	if _, err := svc.Grant(context.Background(), customerID, "old"); !errors.Is(err, ErrCouponInvalid) {
		t.Errorf("expected ErrCouponInvalid, got: %v", err)
	}
	if _, err := svc.Grant(context.Background(), customerID, "nope"); !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("expected ErrCouponNotFound, got: %v", err)
	}
}

func TestCouponToggle_NotFound(t *testing.T) {
	store := &mockCouponStore{
		toggleCouponFn: func(ctx context.Context, id int64) (database.Coupon, error) {
			return database.Coupon{}, pgx.ErrNoRows
		},
	}
	if _, err := NewCouponService(store).Toggle(context.Background(), 9); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got: %v", err)
	}
}
