package voice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mrdaebak/api/internal/enum"
	"github.com/mrdaebak/api/internal/pricing"
	"github.com/mrdaebak/api/internal/service"
)

// Conversion errors.
var (
	ErrMenuMissing     = errors.New("order summary has no menu")
	ErrUnknownMenu     = errors.New("unknown menu name")
	ErrMenuUnavailable = errors.New("menu is not on sale")
)

// Spoken names as the voice service reports them.
var menuTypesByName = map[string]string{
	"발렌타인 디너":   enum.MenuTypeValentine,
	"프렌치 디너":    enum.MenuTypeFrench,
	"잉글리시 디너":   enum.MenuTypeEnglish,
	"샴페인 축제 디너": enum.MenuTypeChampagneFestival,
}

var stylesByName = map[string]string{
	"심플 스타일":  enum.StyleSimple,
	"그랜드 스타일": enum.StyleGrand,
	"디럭스 스타일": enum.StyleDeluxe,
}

var itemCodesByName = map[string]string{
	"에그 스크램블": "EGG_SCRAMBLE",
	"베이컨":     "BACON",
	"기본 빵":    "BREAD",
	"빵":       "BREAD",
	"스테이크":    "STEAK",
	"와인(병)":   "WINE_BOTTLE",
	"와인(잔)":   "WINE_GLASS",
	"커피":      "COFFEE",
	"샐러드":     "SALAD",
	"샴페인":     "CHAMPAGNE",
	"바게트빵":    "BAGUETTE",
	"커피 포트":   "COFFEE_POT",
}

// unconfirmed is what the assistant writes for a quantity the customer never
// stated.
const unconfirmed = "미확인"

// MenuType maps a spoken menu name to its type. Menu type codes are accepted
// as-is.
func MenuType(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if t, ok := menuTypesByName[name]; ok {
		return t, true
	}
	if t := strings.ToUpper(name); enum.IsValidMenuType(t) {
		return t, true
	}
	return "", false
}

// Style maps a spoken style name to a style, defaulting to SIMPLE.
func Style(name string) string {
	name = strings.TrimSpace(name)
	if s, ok := stylesByName[name]; ok {
		return s
	}
	if s := strings.ToUpper(name); enum.IsValidStyle(s) {
		return s
	}
	return enum.StyleSimple
}

// ParseMenuItems reads "name=qty, name=qty" into a customization. Entries
// with an unknown name, an unconfirmed or non-positive quantity, or no "=" are
// skipped.
func ParseMenuItems(s string) pricing.Customization {
	out := pricing.Customization{}
	for _, entry := range strings.Split(s, ",") {
		name, qty, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			continue
		}
		name, qty = strings.TrimSpace(name), strings.TrimSpace(qty)
		if name == "" || qty == "" || qty == unconfirmed || strings.EqualFold(qty, "null") {
			continue
		}
		n, err := strconv.Atoi(qty)
		if err != nil || n <= 0 {
			continue
		}
		if code, ok := itemCodesByName[name]; ok {
			out[code] = n
		}
	}
	return out
}

// ToLineRequest converts a summary into an add-to-cart request against the
// current catalog.
func ToLineRequest(s OrderSummary, menus []pricing.Menu) (service.LineRequest, error) {
	if s.MenuName == nil || strings.TrimSpace(*s.MenuName) == "" {
		return service.LineRequest{}, ErrMenuMissing
	}
	menuType, ok := MenuType(*s.MenuName)
	if !ok {
		return service.LineRequest{}, fmt.Errorf("%q: %w", *s.MenuName, ErrUnknownMenu)
	}
	var menuID int32
	for _, m := range menus {
		if m.Type == menuType {
			menuID = m.ID
			break
		}
	}
	if menuID == 0 {
		return service.LineRequest{}, fmt.Errorf("%s: %w", menuType, ErrMenuUnavailable)
	}

	req := service.LineRequest{
		MenuID:   menuID,
		Style:    enum.StyleSimple,
		Quantity: 1,
	}
	if s.MenuStyle != nil {
		req.Style = Style(*s.MenuStyle)
	}
	if s.MenuItems != nil {
		if c := ParseMenuItems(*s.MenuItems); len(c) > 0 {
			req.Customization = c
		}
	}
	if s.Quantity != nil && *s.Quantity > 0 {
		req.Quantity = int32(*s.Quantity)
	}
	return req, nil
}

var deliveryTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// DeliveryType decides between an immediate and a reservation order. A
// delivery time that parses and lies after now makes a reservation; anything
// else is immediate. Times without a zone are read in now's location.
func DeliveryType(deliveryTime *string, now time.Time) (string, *time.Time) {
	if deliveryTime == nil {
		return enum.DeliveryTypeImmediate, nil
	}
	s := strings.TrimSpace(*deliveryTime)
	for _, layout := range deliveryTimeLayouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			continue
		}
		if t.After(now) {
			return enum.DeliveryTypeReservation, &t
		}
		break
	}
	return enum.DeliveryTypeImmediate, nil
}
