package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/event"
	"github.com/mrdaebak/api/internal/money"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	committed   bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = m.commitErr == nil
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockPool implements DB. Queries never reach it because the store factory
// ignores its argument.
type mockPool struct {
	tx  pgx.Tx
	err error
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) { return m.tx, m.err }
func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}

// recordingPublisher keeps every event it is given.
type recordingPublisher struct {
	events []event.OrderEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, e event.OrderEvent) error {
	r.events = append(r.events, e)
	return nil
}

// mockOrderStore implements OrderStore, CartStore and CatalogStore with
// configurable behavior.
type mockOrderStore struct {
	getMenuFn                 func(ctx context.Context, id int32) (database.Menu, error)
	listMenuComponentsFn      func(ctx context.Context, menuID int32) ([]database.MenuComponent, error)
	listMenusFn               func(ctx context.Context) ([]database.Menu, error)
	listAllMenuComponentsFn   func(ctx context.Context) ([]database.MenuComponent, error)
	listCartItemsFn           func(ctx context.Context, customerID uuid.UUID) ([]database.CartItem, error)
	getCartItemFn             func(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error)
	createCartItemFn          func(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error)
	updateCartItemQuantityFn  func(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error)
	deleteCartItemFn          func(ctx context.Context, arg database.DeleteCartItemParams) (int64, error)
	clearCartFn               func(ctx context.Context, customerID uuid.UUID) error
	createOrderFn             func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	getOrderForCustomerFn     func(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error)
	getOrderForUpdateFn       func(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error)
	listOrdersByCustomerFn    func(ctx context.Context, customerID uuid.UUID) ([]database.Order, error)
	getCurrentOrderFn         func(ctx context.Context, customerID uuid.UUID) (database.Order, error)
	listReservationOrdersFn   func(ctx context.Context, customerID uuid.UUID) ([]database.Order, error)
	cancelOrderFn             func(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error)
	setOrderFinalPriceFn      func(ctx context.Context, arg database.SetOrderFinalPriceParams) (database.Order, error)
	attachCouponToOrderFn     func(ctx context.Context, arg database.AttachCouponToOrderParams) (database.Order, error)
	createOrderItemFn         func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	listOrderItemsByOrderFn   func(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	deleteOrderItemsByOrderFn func(ctx context.Context, orderID int64) error
	getCustomerCouponFn       func(ctx context.Context, arg database.GetCustomerCouponParams) (database.CustomerCoupon, error)
	listCustomerCouponsFn     func(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error)
	useCustomerCouponFn       func(ctx context.Context, arg database.GetCustomerCouponParams) (database.CustomerCoupon, error)
	createModificationLogFn   func(ctx context.Context, arg database.CreateModificationLogParams) (database.OrderModificationLog, error)
	listModificationLogsFn    func(ctx context.Context, orderID int64) ([]database.OrderModificationLog, error)
}

func (m *mockOrderStore) GetMenu(ctx context.Context, id int32) (database.Menu, error) {
	return m.getMenuFn(ctx, id)
}
func (m *mockOrderStore) ListMenuComponents(ctx context.Context, menuID int32) ([]database.MenuComponent, error) {
	return m.listMenuComponentsFn(ctx, menuID)
}
func (m *mockOrderStore) ListMenus(ctx context.Context) ([]database.Menu, error) {
	return m.listMenusFn(ctx)
}
func (m *mockOrderStore) ListAllMenuComponents(ctx context.Context) ([]database.MenuComponent, error) {
	return m.listAllMenuComponentsFn(ctx)
}
func (m *mockOrderStore) ListCartItems(ctx context.Context, customerID uuid.UUID) ([]database.CartItem, error) {
	return m.listCartItemsFn(ctx, customerID)
}
func (m *mockOrderStore) GetCartItem(ctx context.Context, arg database.GetCartItemParams) (database.CartItem, error) {
	return m.getCartItemFn(ctx, arg)
}
func (m *mockOrderStore) CreateCartItem(ctx context.Context, arg database.CreateCartItemParams) (database.CartItem, error) {
	return m.createCartItemFn(ctx, arg)
}
func (m *mockOrderStore) UpdateCartItemQuantity(ctx context.Context, arg database.UpdateCartItemQuantityParams) (database.CartItem, error) {
	return m.updateCartItemQuantityFn(ctx, arg)
}
func (m *mockOrderStore) DeleteCartItem(ctx context.Context, arg database.DeleteCartItemParams) (int64, error) {
	return m.deleteCartItemFn(ctx, arg)
}
func (m *mockOrderStore) ClearCart(ctx context.Context, customerID uuid.UUID) error {
	return m.clearCartFn(ctx, customerID)
}
func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockOrderStore) GetOrderForCustomer(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error) {
	return m.getOrderForCustomerFn(ctx, arg)
}
func (m *mockOrderStore) GetOrderForUpdate(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error) {
	return m.getOrderForUpdateFn(ctx, arg)
}
func (m *mockOrderStore) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]database.Order, error) {
	return m.listOrdersByCustomerFn(ctx, customerID)
}
func (m *mockOrderStore) GetCurrentOrder(ctx context.Context, customerID uuid.UUID) (database.Order, error) {
	return m.getCurrentOrderFn(ctx, customerID)
}
func (m *mockOrderStore) ListReservationOrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]database.Order, error) {
	return m.listReservationOrdersFn(ctx, customerID)
}
func (m *mockOrderStore) CancelOrder(ctx context.Context, arg database.GetOrderForCustomerParams) (database.Order, error) {
	return m.cancelOrderFn(ctx, arg)
}
func (m *mockOrderStore) SetOrderFinalPrice(ctx context.Context, arg database.SetOrderFinalPriceParams) (database.Order, error) {
	return m.setOrderFinalPriceFn(ctx, arg)
}
func (m *mockOrderStore) AttachCouponToOrder(ctx context.Context, arg database.AttachCouponToOrderParams) (database.Order, error) {
	return m.attachCouponToOrderFn(ctx, arg)
}
func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error) {
	return m.listOrderItemsByOrderFn(ctx, orderID)
}
func (m *mockOrderStore) DeleteOrderItemsByOrder(ctx context.Context, orderID int64) error {
	return m.deleteOrderItemsByOrderFn(ctx, orderID)
}
func (m *mockOrderStore) GetCustomerCoupon(ctx context.Context, arg database.GetCustomerCouponParams) (database.CustomerCoupon, error) {
	return m.getCustomerCouponFn(ctx, arg)
}
func (m *mockOrderStore) ListCustomerCoupons(ctx context.Context, customerID uuid.UUID) ([]database.CustomerCoupon, error) {
	return m.listCustomerCouponsFn(ctx, customerID)
}
func (m *mockOrderStore) UseCustomerCoupon(ctx context.Context, arg database.GetCustomerCouponParams) (database.CustomerCoupon, error) {
	return m.useCustomerCouponFn(ctx, arg)
}
func (m *mockOrderStore) CreateModificationLog(ctx context.Context, arg database.CreateModificationLogParams) (database.OrderModificationLog, error) {
	return m.createModificationLogFn(ctx, arg)
}
func (m *mockOrderStore) ListModificationLogs(ctx context.Context, orderID int64) ([]database.OrderModificationLog, error) {
	return m.listModificationLogsFn(ctx, orderID)
}

// --- Test fixtures ---

const (
	steakMenuID     int32 = 3
	champagneMenuID int32 = 4
)

// catalogStore returns a store that knows two menus:
//
//	3: FRENCH, base 50000, STEAK 15000 (default 1)
//	4: CHAMPAGNE_FESTIVAL, base 90000, CHAMPAGNE 30000 (default 1)
func catalogStore() *mockOrderStore {
	menus := map[int32]database.Menu{
		steakMenuID:     {ID: steakMenuID, Type: "FRENCH", BasePrice: money.ToNumeric(50000)},
		champagneMenuID: {ID: champagneMenuID, Type: "CHAMPAGNE_FESTIVAL", BasePrice: money.ToNumeric(90000)},
	}
	comps := map[int32][]database.MenuComponent{
		steakMenuID: {
			{MenuID: steakMenuID, ItemCode: "STEAK", Label: "Steak", UnitPrice: money.ToNumeric(15000), DefaultQuantity: 1, StockQuantity: 10},
		},
		champagneMenuID: {
			{MenuID: champagneMenuID, ItemCode: "CHAMPAGNE", Label: "Champagne", UnitPrice: money.ToNumeric(30000), DefaultQuantity: 1, StockQuantity: 5},
		},
	}
	return &mockOrderStore{
		getMenuFn: func(ctx context.Context, id int32) (database.Menu, error) {
			m, ok := menus[id]
			if !ok {
				return database.Menu{}, pgx.ErrNoRows
			}
			return m, nil
		},
		listMenuComponentsFn: func(ctx context.Context, menuID int32) ([]database.MenuComponent, error) {
			return comps[menuID], nil
		},
		listMenusFn: func(ctx context.Context) ([]database.Menu, error) {
			return []database.Menu{menus[steakMenuID], menus[champagneMenuID]}, nil
		},
		listAllMenuComponentsFn: func(ctx context.Context) ([]database.MenuComponent, error) {
			return append(append([]database.MenuComponent{}, comps[steakMenuID]...), comps[champagneMenuID]...), nil
		},
	}
}

// newTestService creates an OrderService with mocked dependencies.
func newTestService(store *mockOrderStore) (*OrderService, *mockTx, *recordingPublisher) {
	tx := &mockTx{}
	pool := &mockPool{tx: tx}
	events := &recordingPublisher{}
	newStore := func(db database.DBTX) OrderStore { return store }
	return NewOrderService(pool, newStore, events), tx, events
}

func orderItemRow(id, seq int64, orderID int64, menuID int32, style, custom string, qty int32, subtotal int64) database.OrderItem {
	return database.OrderItem{
		ID:                   id,
		Seq:                  seq,
		OrderID:              orderID,
		MenuID:               menuID,
		Style:                style,
		CustomizedQuantities: []byte(custom),
		Quantity:             qty,
		Subtotal:             money.ToNumeric(subtotal),
	}
}

func receivedOrder(id int64, customerID uuid.UUID, finalPrice int64) database.Order {
	return database.Order{
		ID:           id,
		CustomerID:   customerID,
		Status:       "RECEIVED",
		DeliveryType: "IMMEDIATE",
		FinalPrice:   money.ToNumeric(finalPrice),
	}
}

func withCoupon(o database.Order, grantID int64, code string, discount int64) database.Order {
	o.CustomerCouponID = pgtype.Int8{Int64: grantID, Valid: true}
	o.CouponCode = pgtype.Text{String: code, Valid: true}
	o.CouponDiscount = money.ToNumeric(discount)
	return o
}
