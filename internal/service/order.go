package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/enum"
	"github.com/mrdaebak/api/internal/event"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
)

// Errors returned by the order service.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidDeliveryType  = errors.New("invalid delivery_type")
	ErrReservationTime      = errors.New("reservation_time is required for RESERVATION orders")
	ErrReservationInPast    = errors.New("reservation_time must be in the future")
	ErrDuplicateMenuStyle   = errors.New("each menu and style may appear only once per order")
	ErrCouponRequired       = errors.New("code or customer_coupon_id is required")
	ErrCouponNotFound       = errors.New("coupon not found")
	ErrCouponInvalid        = errors.New("coupon is no longer valid")
	ErrCouponUsed           = errors.New("coupon already used")
	ErrCouponAlreadyApplied = errors.New("order already has a coupon")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotEditable     = errors.New("order can only be changed while RECEIVED")
	ErrPriceChanged         = errors.New("price difference does not match the confirmed amount")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB runs queries directly and starts transactions.
// Satisfied by *pgxpool.Pool.
type DB interface {
	database.DBTX
	TxBeginner
}

// OrderStore defines the DB methods needed to place, read and edit orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	MenuReader
	ListCartItems(ctx context.Context, customerID uuid.UUID) ([]database.CartItem, error)
	CreateCartItem(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error)
	ClearCart(ctx context.Context, customerID uuid.UUID) error

	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrderForCustomer(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]database.Order, error)
	GetCurrentOrder(ctx context.Context, customerID uuid.UUID) (database.Order, error)
	ListReservationOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]database.Order, error)
	CancelOrder(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error)
	SetOrderFinalPrice(ctx context.Context, arg database.SetOrderFinalPriceParams) (database.Order, error)
	AttachCouponToOrder(ctx context.Context, arg database.AttachCouponToOrderParams) (database.Order, error)

	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	DeleteOrderItemsByOrder(ctx context.Context, orderID int64) error

	GetCustomerCoupon(ctx context.Context, arg database.GetCustomerCouponParams) (database.CustomerCoupon, error)
	ListCustomerCoupons(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error)
	UseCustomerCoupon(ctx context.Context, arg database.GetCustomerCouponParams) (database.CustomerCoupon, error)

	CreateModificationLog(ctx context.Context, arg database.CreateModificationLogParams) (database.OrderModificationLog, error)
	ListModificationLogs(ctx context.Context, orderID int64) ([]database.OrderModificationLog, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// PlaceOrderRequest is the input for turning a cart into an order.
type PlaceOrderRequest struct {
	CustomerID       uuid.UUID
	DeliveryType     string
	ReservationTime  *time.Time
	CustomerCouponID *int64
}

// ApplyCouponRequest names a coupon grant either by code or by id.
type ApplyCouponRequest struct {
	Code             string
	CustomerCouponID int64
}

// UpdateOrderRequest replaces an order's contents. ConfirmedDelta is the price
// difference the customer agreed to; it must match what the server computes.
type UpdateOrderRequest struct {
	Items          []LineRequest
	ConfirmedDelta int64
}

// OrderDetail is an order with its current contents. Items are reconciled:
// one line per (menu, style).
type OrderDetail struct {
	Order  database.Order
	Items  []pricing.LineItem
	Total  int64
	Coupon *pricing.Coupon
}

// EditResult is what an edit would change, or did change.
type EditResult struct {
	Preview pricing.EditPreview
	Diffs   []pricing.GroupDiff
}

// ModificationView is a stored modification log entry with its derived diff.
type ModificationView struct {
	ID              int64
	ModifiedAt      time.Time
	PriceDifference int64
	Previous        []pricing.LineItem
	New             []pricing.LineItem
	Diffs           []pricing.GroupDiff
}

// OrderService handles order business logic.
type OrderService struct {
	pool     DB
	newStore NewOrderStore
	events   event.Publisher
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool DB, newStore NewOrderStore, events event.Publisher) *OrderService {
	if events == nil {
		events = event.Discard{}
	}
	return &OrderService{pool: pool, newStore: newStore, events: events, now: time.Now}
}

// PlaceOrder validates and reprices the customer's cart, consumes the coupon
// grant if one is given, creates the order and empties the cart, all in one
// transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderDetail, error) {
	if !enum.IsValidDeliveryType(req.DeliveryType) {
		return nil, ErrInvalidDeliveryType
	}
	reservation := pgtype.Timestamptz{}
	if req.DeliveryType == enum.DeliveryTypeReservation {
		if req.ReservationTime == nil {
			return nil, ErrReservationTime
		}
		if !req.ReservationTime.After(s.now()) {
			return nil, ErrReservationInPast
		}
		reservation = pgtype.Timestamptz{Time: *req.ReservationTime, Valid: true}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	rows, err := store.ListCartItems(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCart
	}

	// Cart subtotals are recomputed so the order reflects current menu prices.
	menus := newMenuCache(store)
	items := make([]pricing.LineItem, 0, len(rows))
	for _, r := range rows {
		li, err := priceLine(ctx, menus, LineRequest{
			MenuID:        r.MenuID,
			Style:         r.Style,
			Customization: decodeCustomization(r.CustomizedQuantities),
			Quantity:      r.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("cart item %d: %w", r.ID, err)
		}
		items = append(items, li)
	}
	if len(pricing.DuplicateKeys(items)) > 0 {
		return nil, ErrDuplicateMenuStyle
	}
	total := pricing.TotalPrice(items)

	couponID := pgtype.Int8{}
	var coupon *pricing.Coupon
	if req.CustomerCouponID != nil {
		cc, err := useCoupon(ctx, store, req.CustomerID, *req.CustomerCouponID)
		if err != nil {
			return nil, err
		}
		couponID = pgtype.Int8{Int64: cc.ID, Valid: true}
		coupon = customerCouponToPricing(cc)
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		CustomerID:       req.CustomerID,
		DeliveryType:     req.DeliveryType,
		ReservationTime:  reservation,
		FinalPrice:       money.ToNumeric(pricing.FinalPrice(total, coupon)),
		CustomerCouponID: couponID,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	created, err := insertOrderItems(ctx, store, order.ID, items)
	if err != nil {
		return nil, err
	}

	if err := store.ClearCart(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, event.TypeOrderPlaced, order)
	return &OrderDetail{Order: order, Items: pricing.Reconcile(created), Total: total, Coupon: coupon}, nil
}

// GetOrder returns one of the customer's orders.
func (s *OrderService) GetOrder(ctx context.Context, customerID uuid.UUID, orderID int64) (*OrderDetail, error) {
	store := s.newStore(s.pool)
	order, err := store.GetOrderForCustomer(ctx, database.GetOrderForCustomerParams{ID: orderID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return s.detail(ctx, store, order)
}

// ListOrders returns the customer's order history, newest first.
func (s *OrderService) ListOrders(ctx context.Context, customerID uuid.UUID) ([]OrderDetail, error) {
	store := s.newStore(s.pool)
	orders, err := store.ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.details(ctx, store, orders)
}

// ListReservations returns the customer's upcoming reservation orders.
func (s *OrderService) ListReservations(ctx context.Context, customerID uuid.UUID) ([]OrderDetail, error) {
	store := s.newStore(s.pool)
	orders, err := store.ListReservationOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return s.details(ctx, store, orders)
}

// CurrentOrder returns the customer's latest order still in progress.
func (s *OrderService) CurrentOrder(ctx context.Context, customerID uuid.UUID) (*OrderDetail, error) {
	store := s.newStore(s.pool)
	order, err := store.GetCurrentOrder(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get current order: %w", err)
	}
	return s.detail(ctx, store, order)
}

func (s *OrderService) detail(ctx context.Context, store OrderStore, order database.Order) (*OrderDetail, error) {
	rows, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	items := reconciledItems(rows)
	return &OrderDetail{
		Order:  order,
		Items:  items,
		Total:  pricing.TotalPrice(items),
		Coupon: orderCoupon(order),
	}, nil
}

func (s *OrderService) details(ctx context.Context, store OrderStore, orders []database.Order) ([]OrderDetail, error) {
	out := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		d, err := s.detail(ctx, store, o)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

// Cancel cancels an order the kitchen has not started on.
func (s *OrderService) Cancel(ctx context.Context, customerID uuid.UUID, orderID int64) (*database.Order, error) {
	store := s.newStore(s.pool)
	arg := database.GetOrderForCustomerParams{ID: orderID, CustomerID: customerID}
	order, err := store.CancelOrder(ctx, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orderStateError(ctx, store, arg)
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	s.publish(ctx, event.TypeOrderStatusChanged, order)
	return &order, nil
}

// orderStateError explains why a conditional update on a customer's order
// matched no row.
func orderStateError(ctx context.Context, store OrderStore, arg database.GetOrderForCustomerParams) error {
	if _, err := store.GetOrderForCustomer(ctx, arg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}
	return ErrOrderNotEditable
}

// ApplyCoupon attaches a coupon grant to an order that has none yet. The grant
// is marked used and the order's final price recomputed in one transaction.
func (s *OrderService) ApplyCoupon(ctx context.Context, customerID uuid.UUID, orderID int64, req ApplyCouponRequest) (*OrderDetail, error) {
	if strings.TrimSpace(req.Code) == "" && req.CustomerCouponID == 0 {
		return nil, ErrCouponRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockEditableOrder(ctx, store, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerCouponID.Valid {
		return nil, ErrCouponAlreadyApplied
	}

	grantID := req.CustomerCouponID
	if grantID == 0 {
		grants, err := store.ListCustomerCoupons(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("list customer coupons: %w", err)
		}
		grantID, err = grantByCode(grants, req.Code)
		if err != nil {
			return nil, err
		}
	}

	cc, err := useCoupon(ctx, store, customerID, grantID)
	if err != nil {
		return nil, err
	}

	rows, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	items := reconciledItems(rows)
	total := pricing.TotalPrice(items)
	coupon := customerCouponToPricing(cc)

	updated, err := store.AttachCouponToOrder(ctx, database.AttachCouponToOrderParams{
		ID:               order.ID,
		CustomerCouponID: cc.ID,
		FinalPrice:       money.ToNumeric(pricing.FinalPrice(total, coupon)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponAlreadyApplied
		}
		return nil, fmt.Errorf("attach coupon: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, event.TypeOrderCouponApplied, updated)
	return &OrderDetail{Order: updated, Items: items, Total: total, Coupon: coupon}, nil
}

// grantByCode picks the customer's unused grant for code. Matching ignores
// case and surrounding spaces.
func grantByCode(grants []database.CustomerCoupon, code string) (int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	seen := false
	for _, g := range grants {
		if strings.ToUpper(g.Code) != code {
			continue
		}
		if !g.IsUsed {
			return g.ID, nil
		}
		seen = true
	}
	if seen {
		return 0, ErrCouponUsed
	}
	return 0, ErrCouponNotFound
}

// useCoupon marks a grant used. The caller's transaction makes the change
// conditional on the rest of the operation succeeding.
func useCoupon(ctx context.Context, store OrderStore, customerID uuid.UUID, grantID int64) (database.CustomerCoupon, error) {
	arg := database.GetCustomerCouponParams{ID: grantID, CustomerID: customerID}
	cc, err := store.UseCustomerCoupon(ctx, arg)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return database.CustomerCoupon{}, fmt.Errorf("use coupon: %w", err)
		}
		if _, gerr := store.GetCustomerCoupon(ctx, arg); gerr != nil {
			if errors.Is(gerr, pgx.ErrNoRows) {
				return database.CustomerCoupon{}, ErrCouponNotFound
			}
			return database.CustomerCoupon{}, fmt.Errorf("get coupon: %w", gerr)
		}
		return database.CustomerCoupon{}, ErrCouponUsed
	}
	if !cc.IsValid {
		return database.CustomerCoupon{}, ErrCouponInvalid
	}
	return cc, nil
}

func lockEditableOrder(ctx context.Context, store OrderStore, customerID uuid.UUID, orderID int64) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, database.GetOrderForCustomerParams{ID: orderID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusReceived {
		return database.Order{}, ErrOrderNotEditable
	}
	return order, nil
}

// buildEdit prices the requested replacement and compares it with the
// order's current contents.
func buildEdit(ctx context.Context, store OrderStore, order database.Order, lines []LineRequest) ([]pricing.LineItem, []pricing.LineItem, *EditResult, error) {
	if len(lines) == 0 {
		return nil, nil, nil, ErrEmptyItems
	}
	menus := newMenuCache(store)
	edited := make([]pricing.LineItem, 0, len(lines))
	for i, l := range lines {
		li, err := priceLine(ctx, menus, l)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		edited = append(edited, li)
	}
	if len(pricing.DuplicateKeys(edited)) > 0 {
		return nil, nil, nil, ErrDuplicateMenuStyle
	}

	rows, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list order items: %w", err)
	}
	current, err := resolveItems(ctx, menus, reconciledItems(rows))
	if err != nil {
		return nil, nil, nil, err
	}

	coupon := orderCoupon(order)
	return current, edited, &EditResult{
		Preview: pricing.PreviewEdit(current, edited, coupon),
		Diffs:   pricing.DiffSnapshots(current, edited),
	}, nil
}

// resolveItems spells out default quantities on rows written before
// customizations were stored resolved.
func resolveItems(ctx context.Context, menus *menuCache, items []pricing.LineItem) ([]pricing.LineItem, error) {
	for i, li := range items {
		menu, err := menus.get(ctx, li.MenuID)
		if err != nil {
			return nil, err
		}
		items[i].Customization = pricing.ResolveQuantities(menu, li.Customization)
	}
	return items, nil
}

// PreviewEdit computes the price difference and per-group changes an edit
// would cause, without changing anything.
func (s *OrderService) PreviewEdit(ctx context.Context, customerID uuid.UUID, orderID int64, lines []LineRequest) (*EditResult, error) {
	store := s.newStore(s.pool)
	order, err := store.GetOrderForCustomer(ctx, database.GetOrderForCustomerParams{ID: orderID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusReceived {
		return nil, ErrOrderNotEditable
	}
	_, _, result, err := buildEdit(ctx, store, order, lines)
	return result, err
}

// UpdateOrder replaces an order's items. The edit is applied only when the
// recomputed price difference equals the one the customer confirmed; the old
// rows are deleted, the new ones inserted, the final price updated and a
// modification log entry written, all in one transaction.
func (s *OrderService) UpdateOrder(ctx context.Context, customerID uuid.UUID, orderID int64, req UpdateOrderRequest) (*OrderDetail, *EditResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockEditableOrder(ctx, store, customerID, orderID)
	if err != nil {
		return nil, nil, err
	}

	current, edited, result, err := buildEdit(ctx, store, order, req.Items)
	if err != nil {
		return nil, nil, err
	}
	if result.Preview.Delta != req.ConfirmedDelta {
		return nil, result, ErrPriceChanged
	}

	if err := store.DeleteOrderItemsByOrder(ctx, order.ID); err != nil {
		return nil, nil, fmt.Errorf("delete order items: %w", err)
	}
	created, err := insertOrderItems(ctx, store, order.ID, edited)
	if err != nil {
		return nil, nil, err
	}

	updated, err := store.SetOrderFinalPrice(ctx, database.SetOrderFinalPriceParams{
		ID:         order.ID,
		FinalPrice: money.ToNumeric(result.Preview.EditedFinal),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("set final price: %w", err)
	}

	prevJSON, err := json.Marshal(current)
	if err != nil {
		return nil, nil, fmt.Errorf("encode previous items: %w", err)
	}
	newJSON, err := json.Marshal(created)
	if err != nil {
		return nil, nil, fmt.Errorf("encode new items: %w", err)
	}
	if _, err := store.CreateModificationLog(ctx, database.CreateModificationLogParams{
		OrderID:         order.ID,
		PreviousItems:   prevJSON,
		NewItems:        newJSON,
		PriceDifference: money.ToNumeric(result.Preview.Delta),
	}); err != nil {
		return nil, nil, fmt.Errorf("create modification log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, event.TypeOrderUpdated, updated)
	items := pricing.Reconcile(created)
	return &OrderDetail{
		Order:  updated,
		Items:  items,
		Total:  pricing.TotalPrice(items),
		Coupon: orderCoupon(updated),
	}, result, nil
}

// ModificationLogs returns an order's edit history, newest first, each entry
// with the per-group diff derived from its snapshots.
func (s *OrderService) ModificationLogs(ctx context.Context, customerID uuid.UUID, orderID int64) ([]ModificationView, error) {
	store := s.newStore(s.pool)
	if _, err := store.GetOrderForCustomer(ctx, database.GetOrderForCustomerParams{ID: orderID, CustomerID: customerID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	logs, err := store.ListModificationLogs(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list modification logs: %w", err)
	}
	out := make([]ModificationView, 0, len(logs))
	for _, l := range logs {
		var prev, next []pricing.LineItem
		if err := json.Unmarshal(l.PreviousItems, &prev); err != nil {
			return nil, fmt.Errorf("decode log %d: %w", l.ID, err)
		}
		if err := json.Unmarshal(l.NewItems, &next); err != nil {
			return nil, fmt.Errorf("decode log %d: %w", l.ID, err)
		}
		out = append(out, ModificationView{
			ID:              l.ID,
			ModifiedAt:      l.ModifiedAt,
			PriceDifference: money.FromNumeric(l.PriceDifference),
			Previous:        prev,
			New:             next,
			Diffs:           pricing.DiffSnapshots(prev, next),
		})
	}
	return out, nil
}

// Reorder copies an order's current contents into the customer's cart,
// repriced at today's menu prices.
func (s *OrderService) Reorder(ctx context.Context, customerID uuid.UUID, orderID int64) ([]pricing.LineItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForCustomer(ctx, database.GetOrderForCustomerParams{ID: orderID, CustomerID: customerID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	rows, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	menus := newMenuCache(store)
	var added []pricing.LineItem
	for _, li := range reconciledItems(rows) {
		menu, err := menus.get(ctx, li.MenuID)
		if err != nil {
			return nil, err
		}
		li = pricing.Reprice(menu, li)
		custom, err := encodeCustomization(li.Customization)
		if err != nil {
			return nil, fmt.Errorf("encode customization: %w", err)
		}
		row, err := store.CreateCartItem(ctx, database.CreateCartItemParams{
			CustomerID:           customerID,
			MenuID:               li.MenuID,
			Style:                li.Style,
			CustomizedQuantities: custom,
			Quantity:             li.Quantity,
			Subtotal:             money.ToNumeric(li.Subtotal),
		})
		if err != nil {
			return nil, fmt.Errorf("create cart item: %w", err)
		}
		added = append(added, cartItemToLineItem(row))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return added, nil
}

func insertOrderItems(ctx context.Context, store OrderStore, orderID int64, items []pricing.LineItem) ([]pricing.LineItem, error) {
	created := make([]pricing.LineItem, 0, len(items))
	for _, li := range items {
		custom, err := encodeCustomization(li.Customization)
		if err != nil {
			return nil, fmt.Errorf("encode customization: %w", err)
		}
		row, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:              orderID,
			MenuID:               li.MenuID,
			Style:                li.Style,
			CustomizedQuantities: custom,
			Quantity:             li.Quantity,
			Subtotal:             money.ToNumeric(li.Subtotal),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		created = append(created, orderItemToLineItem(row))
	}
	return created, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, o database.Order) {
	e := event.New(eventType, o.ID, o.CustomerID, o.Status, money.FromNumeric(o.FinalPrice))
	if err := s.events.Publish(ctx, e); err != nil {
		log.Printf("ERROR: publish %s for order %d: %v", eventType, o.ID, err)
	}
}
