package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID   `json:"id"`
	LoginID        string      `json:"login_id"`
	Name           string      `json:"name"`
	Address        pgtype.Text `json:"address"`
	PasswordHash   string      `json:"password_hash"`
	Role           string      `json:"role"`
	CardNumber     pgtype.Text `json:"card_number"`
	CardExpiry     pgtype.Text `json:"card_expiry"`
	CardCvc        pgtype.Text `json:"card_cvc"`
	CardHolderName pgtype.Text `json:"card_holder_name"`
	IsRegular      bool        `json:"is_regular"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type Menu struct {
	ID        int32          `json:"id"`
	Type      string         `json:"type"`
	BasePrice pgtype.Numeric `json:"base_price"`
}

type MenuItem struct {
	Code          string             `json:"code"`
	Label         string             `json:"label"`
	UnitPrice     pgtype.Numeric     `json:"unit_price"`
	StockQuantity int32              `json:"stock_quantity"`
	LastRestocked pgtype.Timestamptz `json:"last_restocked"`
}

type MenuComponent struct {
	MenuID          int32          `json:"menu_id"`
	ItemCode        string         `json:"item_code"`
	Label           string         `json:"label"`
	UnitPrice       pgtype.Numeric `json:"unit_price"`
	DefaultQuantity int32          `json:"default_quantity"`
	StockQuantity   int32          `json:"stock_quantity"`
	Position        int32          `json:"position"`
}

type CartItem struct {
	ID                   int64          `json:"id"`
	Seq                  int64          `json:"seq"`
	CustomerID           uuid.UUID      `json:"customer_id"`
	MenuID               int32          `json:"menu_id"`
	Style                string         `json:"style"`
	CustomizedQuantities []byte         `json:"customized_quantities"`
	Quantity             int32          `json:"quantity"`
	Subtotal             pgtype.Numeric `json:"subtotal"`
	CreatedAt            time.Time      `json:"created_at"`
}

type Coupon struct {
	ID             int64          `json:"id"`
	Code           string         `json:"code"`
	DiscountAmount pgtype.Numeric `json:"discount_amount"`
	IsValid        bool           `json:"is_valid"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CustomerCoupon is a grant row joined with its coupon.
type CustomerCoupon struct {
	ID             int64              `json:"id"`
	CustomerID     uuid.UUID          `json:"customer_id"`
	CouponID       int64              `json:"coupon_id"`
	IsUsed         bool               `json:"is_used"`
	ReceivedAt     time.Time          `json:"received_at"`
	UsedAt         pgtype.Timestamptz `json:"used_at"`
	Code           string             `json:"code"`
	DiscountAmount pgtype.Numeric     `json:"discount_amount"`
	IsValid        bool               `json:"is_valid"`
}

// Order carries the attached coupon's code and amount when one is applied.
type Order struct {
	ID               int64              `json:"id"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	Status           string             `json:"status"`
	DeliveryType     string             `json:"delivery_type"`
	ReservationTime  pgtype.Timestamptz `json:"reservation_time"`
	FinalPrice       pgtype.Numeric     `json:"final_price"`
	CustomerCouponID pgtype.Int8        `json:"customer_coupon_id"`
	KitchenStaffID   pgtype.UUID        `json:"kitchen_staff_id"`
	DeliveryStaffID  pgtype.UUID        `json:"delivery_staff_id"`
	ReadyAt          pgtype.Timestamptz `json:"ready_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	CouponCode       pgtype.Text        `json:"coupon_code"`
	CouponDiscount   pgtype.Numeric     `json:"coupon_discount"`
}

type OrderItem struct {
	ID                   int64          `json:"id"`
	Seq                  int64          `json:"seq"`
	OrderID              int64          `json:"order_id"`
	MenuID               int32          `json:"menu_id"`
	Style                string         `json:"style"`
	CustomizedQuantities []byte         `json:"customized_quantities"`
	Quantity             int32          `json:"quantity"`
	Subtotal             pgtype.Numeric `json:"subtotal"`
	CreatedAt            time.Time      `json:"created_at"`
}

type OrderModificationLog struct {
	ID              int64          `json:"id"`
	OrderID         int64          `json:"order_id"`
	ModifiedAt      time.Time      `json:"modified_at"`
	PreviousItems   []byte         `json:"previous_items"`
	NewItems        []byte         `json:"new_items"`
	PriceDifference pgtype.Numeric `json:"price_difference"`
}
