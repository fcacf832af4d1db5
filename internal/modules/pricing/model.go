// README: Quote value object and the modifier contract.
package pricing

import (
	"roam/internal/interval"
	"roam/internal/types"
)

// Adjustment is a signed delta applied on top of the base price.
// Negative amounts are discounts.
type Adjustment struct {
	Label  string
	Amount int64
}

// Modifier inspects the interval and the base price and returns an
// adjustment, or nil when it does not apply. Modifiers must be pure:
// the quote snapshot taken at reservation time has to be reproducible.
type Modifier func(span interval.Interval, base types.Money) *Adjustment

// Quote is the deterministic price for one vehicle over one interval.
type Quote struct {
	Total     types.Money
	Base      types.Money
	Days      int
	Breakdown map[string]int64
}
