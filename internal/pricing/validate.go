package pricing

import (
	"errors"
	"fmt"

	"github.com/mrdaebak/api/internal/enum"
)

// Validation errors. Pricing itself never fails; these guard its inputs.
var (
	ErrInvalidStyle          = errors.New("invalid style")
	ErrStyleNotAllowed       = errors.New("style not available for this menu")
	ErrInvalidQuantity       = errors.New("quantity must be > 0")
	ErrNegativeCustomization = errors.New("customized quantity must be >= 0")
	ErrUnknownItem           = errors.New("item is not part of this menu")
)

// ValidateStyle reports whether style can be ordered for menuType.
// SIMPLE is not served for the champagne festival dinner.
func ValidateStyle(menuType, style string) error {
	if !enum.IsValidStyle(style) {
		return ErrInvalidStyle
	}
	if menuType == enum.MenuTypeChampagneFestival && style == enum.StyleSimple {
		return ErrStyleNotAllowed
	}
	return nil
}

// ValidateLineItem checks a configuration before it is priced.
func ValidateLineItem(menu Menu, style string, c Customization, quantity int32) error {
	if err := ValidateStyle(menu.Type, style); err != nil {
		return err
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for code, q := range c {
		if q < 0 {
			return fmt.Errorf("%s: %w", code, ErrNegativeCustomization)
		}
		if _, ok := menu.Item(code); !ok {
			return fmt.Errorf("%s: %w", code, ErrUnknownItem)
		}
	}
	return nil
}
