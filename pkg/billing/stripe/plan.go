package stripe

import (
	"strings"

	"github.com/cleardish/entitlements/pkg/entitle"
)

// planFromPrice maps a price identifier to a plan tier. Configured exact
// matches are checked first, starter then pro then plus; if none match, the
// lowercase identifier is substring-matched against the literal tokens
// "starter", "plus", "pro" in that priority order, which tolerates naming
// conventions like "starter_1900_monthly". No match means no plan: callers
// leave the existing plan untouched, never downgrade.
func planFromPrice(prices PriceMap, priceID string) (entitle.Plan, bool) {
	if priceID == "" {
		return "", false
	}

	if prices.Starter != "" && priceID == prices.Starter {
		return entitle.PlanStarter, true
	}
	if prices.Pro != "" && priceID == prices.Pro {
		return entitle.PlanPro, true
	}
	if prices.Plus != "" && priceID == prices.Plus {
		return entitle.PlanPlus, true
	}

	lower := strings.ToLower(priceID)
	switch {
	case strings.Contains(lower, "starter"):
		return entitle.PlanStarter, true
	case strings.Contains(lower, "plus"):
		return entitle.PlanPlus, true
	case strings.Contains(lower, "pro"):
		return entitle.PlanPro, true
	}
	return "", false
}
