package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusReceived   = "RECEIVED"
	OrderStatusCooking    = "COOKING"
	OrderStatusDelivering = "DELIVERING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusRejected   = "REJECTED"
)

const (
	DeliveryTypeImmediate   = "IMMEDIATE"
	DeliveryTypeReservation = "RESERVATION"
)

// ── Group B: Catalog (CHECK constrained in DB) ──

const (
	MenuTypeValentine         = "VALENTINE"
	MenuTypeFrench            = "FRENCH"
	MenuTypeEnglish           = "ENGLISH"
	MenuTypeChampagneFestival = "CHAMPAGNE_FESTIVAL"
)

const (
	StyleSimple = "SIMPLE"
	StyleGrand  = "GRAND"
	StyleDeluxe = "DELUXE"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleCustomer      = "CUSTOMER"
	UserRoleKitchenStaff  = "KITCHEN_STAFF"
	UserRoleDeliveryStaff = "DELIVERY_STAFF"
)

// ── Group D: Configurable labels (no DB constraint) ──

const (
	StockActionAdd      = "ADD"
	StockActionSubtract = "SUBTRACT"
	StockActionSet      = "SET"
)

var statusLabels = map[string]string{
	OrderStatusReceived:   "Received",
	OrderStatusCooking:    "Cooking",
	OrderStatusDelivering: "Out for delivery",
	OrderStatusCompleted:  "Delivered",
	OrderStatusCancelled:  "Cancelled",
	OrderStatusRejected:   "Rejected by kitchen",
}

var menuNames = map[string]string{
	MenuTypeValentine:         "Valentine Dinner",
	MenuTypeFrench:            "French Dinner",
	MenuTypeEnglish:           "English Dinner",
	MenuTypeChampagneFestival: "Champagne Festival Dinner",
}

// StatusLabel returns the customer-facing name of an order status.
// Unknown statuses are returned as-is.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// MenuName returns the display name of a menu type.
func MenuName(menuType string) string {
	if n, ok := menuNames[menuType]; ok {
		return n
	}
	return menuType
}

func IsValidMenuType(s string) bool {
	_, ok := menuNames[s]
	return ok
}

func IsValidStyle(s string) bool {
	switch s {
	case StyleSimple, StyleGrand, StyleDeluxe:
		return true
	}
	return false
}

func IsValidDeliveryType(s string) bool {
	return s == DeliveryTypeImmediate || s == DeliveryTypeReservation
}

func IsValidRole(s string) bool {
	switch s {
	case UserRoleCustomer, UserRoleKitchenStaff, UserRoleDeliveryStaff:
		return true
	}
	return false
}
