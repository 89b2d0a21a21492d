package voice

import (
	"strings"

	"github.com/mrdaebak/api/internal/database"
)

// couponAliases maps spoken coupon names to the code fragment they stand for.
var couponAliases = map[string]string{
	"단골":    "REGULAR",
	"단골 쿠폰": "REGULAR",
	"단골고객":  "REGULAR",
	"단골 고객": "REGULAR",
}

// MatchCoupon picks the unused, still valid grant a spoken coupon refers to. It tries an
// exact code match, then a substring match in either direction ("REGULAR"
// finds "REGULAR10000" and vice versa), then the alias table.
func MatchCoupon(spoken string, grants []database.CustomerCoupon) (database.CustomerCoupon, bool) {
	raw := strings.TrimSpace(spoken)
	code := strings.ToUpper(raw)
	if code == "" {
		return database.CustomerCoupon{}, false
	}

	var available []database.CustomerCoupon
	for _, g := range grants {
		if !g.IsUsed && g.IsValid {
			available = append(available, g)
		}
	}

	for _, g := range available {
		if strings.ToUpper(g.Code) == code {
			return g, true
		}
	}
	for _, g := range available {
		c := strings.ToUpper(g.Code)
		if strings.Contains(c, code) || strings.Contains(code, c) {
			return g, true
		}
	}

	alias, ok := couponAliases[raw]
	if !ok {
		alias, ok = couponAliases[code]
	}
	if ok {
		for _, g := range available {
			if strings.Contains(strings.ToUpper(g.Code), alias) {
				return g, true
			}
		}
	}
	return database.CustomerCoupon{}, false
}
