// README: Common money value object used across modules.
package types

import "fmt"

// Money is an amount in the currency's minor unit (cents).
type Money struct {
	Amount   int64
	Currency string
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
