package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/enum"
	"github.com/mrdaebak/api/internal/middleware"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
	"github.com/mrdaebak/api/internal/service"
	"github.com/mrdaebak/api/internal/voice"
)

// --- Response types shared by several handlers ---

type lineItemResponse struct {
	ID                   int64                 `json:"id"`
	MenuID               int32                 `json:"menu_id"`
	Style                string                `json:"style"`
	CustomizedQuantities pricing.Customization `json:"customized_quantities"`
	Quantity             int32                 `json:"quantity"`
	Subtotal             string                `json:"subtotal"`
}

type couponRef struct {
	Code           string `json:"code"`
	DiscountAmount string `json:"discount_amount"`
}

type orderResponse struct {
	ID               int64              `json:"id"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	Status           string             `json:"status"`
	StatusLabel      string             `json:"status_label"`
	DeliveryType     string             `json:"delivery_type"`
	ReservationTime  *time.Time         `json:"reservation_time"`
	Total            string             `json:"total,omitempty"`
	FinalPrice       string             `json:"final_price"`
	CustomerCouponID *int64             `json:"customer_coupon_id"`
	Coupon           *couponRef         `json:"coupon"`
	KitchenStaffID   *uuid.UUID         `json:"kitchen_staff_id"`
	DeliveryStaffID  *uuid.UUID         `json:"delivery_staff_id"`
	ReadyAt          *time.Time         `json:"ready_at"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Items            []lineItemResponse `json:"items,omitempty"`
}

type previewResponse struct {
	CurrentTotal string            `json:"current_total"`
	CurrentFinal string            `json:"current_final"`
	EditedTotal  string            `json:"edited_total"`
	EditedFinal  string            `json:"edited_final"`
	Delta        string            `json:"delta"`
	Kind         pricing.DeltaKind `json:"kind"`
}

type groupDiffResponse struct {
	MenuID          int32             `json:"menu_id"`
	Style           string            `json:"style"`
	Previous        *lineItemResponse `json:"previous"`
	New             *lineItemResponse `json:"new"`
	Changes         []pricing.Change  `json:"changes"`
	PriceDifference string            `json:"price_difference"`
}

type editResponse struct {
	Preview previewResponse     `json:"preview"`
	Diffs   []groupDiffResponse `json:"diffs"`
}

type couponResponse struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	DiscountAmount string    `json:"discount_amount"`
	IsValid        bool      `json:"is_valid"`
	CreatedAt      time.Time `json:"created_at"`
}

type customerCouponResponse struct {
	ID             int64      `json:"id"`
	CouponID       int64      `json:"coupon_id"`
	Code           string     `json:"code"`
	DiscountAmount string     `json:"discount_amount"`
	IsValid        bool       `json:"is_valid"`
	IsUsed         bool       `json:"is_used"`
	ReceivedAt     time.Time  `json:"received_at"`
	UsedAt         *time.Time `json:"used_at"`
}

type menuItemResponse struct {
	Code          string     `json:"code"`
	Label         string     `json:"label"`
	UnitPrice     string     `json:"unit_price"`
	StockQuantity int32      `json:"stock_quantity"`
	LastRestocked *time.Time `json:"last_restocked"`
}

// --- Converters ---

func toLineItemResponse(li pricing.LineItem) lineItemResponse {
	custom := li.Customization
	if custom == nil {
		custom = pricing.Customization{}
	}
	return lineItemResponse{
		ID:                   li.ID,
		MenuID:               li.MenuID,
		Style:                li.Style,
		CustomizedQuantities: custom,
		Quantity:             li.Quantity,
		Subtotal:             money.String(li.Subtotal),
	}
}

func toLineItemResponses(items []pricing.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, len(items))
	for i, li := range items {
		out[i] = toLineItemResponse(li)
	}
	return out
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		StatusLabel:     enum.StatusLabel(o.Status),
		DeliveryType:    o.DeliveryType,
		ReservationTime: timePtr(o.ReservationTime),
		FinalPrice:      money.String(money.FromNumeric(o.FinalPrice)),
		KitchenStaffID:  uuidPtr(o.KitchenStaffID),
		DeliveryStaffID: uuidPtr(o.DeliveryStaffID),
		ReadyAt:         timePtr(o.ReadyAt),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.CustomerCouponID.Valid {
		id := o.CustomerCouponID.Int64
		resp.CustomerCouponID = &id
	}
	if o.CouponCode.Valid {
		resp.Coupon = &couponRef{
			Code:           o.CouponCode.String,
			DiscountAmount: money.String(money.FromNumeric(o.CouponDiscount)),
		}
	}
	return resp
}

func toOrderDetailResponse(d *service.OrderDetail) orderResponse {
	resp := toOrderResponse(d.Order)
	resp.Total = money.String(d.Total)
	resp.Items = toLineItemResponses(d.Items)
	return resp
}

func toEditResponse(res *service.EditResult) editResponse {
	p := res.Preview
	resp := editResponse{
		Preview: previewResponse{
			CurrentTotal: money.String(p.CurrentTotal),
			CurrentFinal: money.String(p.CurrentFinal),
			EditedTotal:  money.String(p.EditedTotal),
			EditedFinal:  money.String(p.EditedFinal),
			Delta:        money.String(p.Delta),
			Kind:         p.Kind,
		},
	}
	resp.Diffs = toGroupDiffResponses(res.Diffs)
	return resp
}

func toGroupDiffResponses(diffs []pricing.GroupDiff) []groupDiffResponse {
	out := make([]groupDiffResponse, len(diffs))
	for i, d := range diffs {
		gd := groupDiffResponse{
			MenuID:          d.MenuID,
			Style:           d.Style,
			Changes:         d.Changes,
			PriceDifference: money.String(d.PriceDifference),
		}
		if gd.Changes == nil {
			gd.Changes = []pricing.Change{}
		}
		if d.Previous != nil {
			li := toLineItemResponse(*d.Previous)
			gd.Previous = &li
		}
		if d.New != nil {
			li := toLineItemResponse(*d.New)
			gd.New = &li
		}
		out[i] = gd
	}
	return out
}

func toCouponResponse(c database.Coupon) couponResponse {
	return couponResponse{
		ID:             c.ID,
		Code:           c.Code,
		DiscountAmount: money.String(money.FromNumeric(c.DiscountAmount)),
		IsValid:        c.IsValid,
		CreatedAt:      c.CreatedAt,
	}
}

func toCustomerCouponResponse(cc database.CustomerCoupon) customerCouponResponse {
	return customerCouponResponse{
		ID:             cc.ID,
		CouponID:       cc.CouponID,
		Code:           cc.Code,
		DiscountAmount: money.String(money.FromNumeric(cc.DiscountAmount)),
		IsValid:        cc.IsValid,
		IsUsed:         cc.IsUsed,
		ReceivedAt:     cc.ReceivedAt,
		UsedAt:         timePtr(cc.UsedAt),
	}
}

func toMenuItemResponse(it database.MenuItem) menuItemResponse {
	return menuItemResponse{
		Code:          it.Code,
		Label:         it.Label,
		UnitPrice:     money.String(money.FromNumeric(it.UnitPrice)),
		StockQuantity: it.StockQuantity,
		LastRestocked: timePtr(it.LastRestocked),
	}
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	v := uuid.UUID(u.Bytes)
	return &v
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// userID returns the authenticated user's id. Routes using it are mounted
// behind middleware.Authenticate.
func userID(r *http.Request) uuid.UUID {
	return middleware.ClaimsFromContext(r.Context()).UserID
}

// int64Param parses a numeric URL parameter.
func int64Param(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrMenuNotFound) ||
		errors.Is(err, service.ErrEmptyCart) ||
		errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidDeliveryType) ||
		errors.Is(err, service.ErrReservationTime) ||
		errors.Is(err, service.ErrReservationInPast) ||
		errors.Is(err, service.ErrDuplicateMenuStyle) ||
		errors.Is(err, service.ErrCouponRequired) ||
		errors.Is(err, service.ErrCouponCodeRequired) ||
		errors.Is(err, service.ErrInvalidDiscount) ||
		errors.Is(err, service.ErrInvalidStockAction) ||
		errors.Is(err, service.ErrInvalidStockAmount) ||
		errors.Is(err, pricing.ErrInvalidStyle) ||
		errors.Is(err, pricing.ErrStyleNotAllowed) ||
		errors.Is(err, pricing.ErrInvalidQuantity) ||
		errors.Is(err, pricing.ErrNegativeCustomization) ||
		errors.Is(err, pricing.ErrUnknownItem) ||
		errors.Is(err, voice.ErrMenuMissing) ||
		errors.Is(err, voice.ErrUnknownMenu) ||
		errors.Is(err, voice.ErrMenuUnavailable)
}

// isNotFoundError checks for errors that should result in 404 Not Found.
func isNotFoundError(err error) bool {
	return errors.Is(err, service.ErrOrderNotFound) ||
		errors.Is(err, service.ErrCartItemNotFound) ||
		errors.Is(err, service.ErrCouponNotFound) ||
		errors.Is(err, service.ErrItemNotFound) ||
		errors.Is(err, pgx.ErrNoRows)
}

// isConflictError checks for errors caused by the current state of a
// resource, which should result in 409 Conflict.
func isConflictError(err error) bool {
	return errors.Is(err, service.ErrCouponInvalid) ||
		errors.Is(err, service.ErrCouponUsed) ||
		errors.Is(err, service.ErrCouponAlreadyApplied) ||
		errors.Is(err, service.ErrCouponCodeTaken) ||
		errors.Is(err, service.ErrCouponInUse) ||
		errors.Is(err, service.ErrOrderNotEditable) ||
		errors.Is(err, service.ErrPriceChanged) ||
		errors.Is(err, service.ErrInvalidTransition) ||
		errors.Is(err, service.ErrInsufficientStock)
}

// writeServiceError maps a service error to its HTTP status. Unknown errors
// are logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case isNotFoundError(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case isConflictError(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
