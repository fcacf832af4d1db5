// README: Pricing calculator; stateless, deterministic, side-effect free.
package pricing

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"roam/internal/interval"
	"roam/internal/modules/vehicle"
	"roam/internal/types"
)

var ErrInvalidVehicle = errors.New("invalid vehicle pricing config")

type Calculator struct {
	modifiers []Modifier
	log       *zap.SugaredLogger
}

// NewCalculator builds a calculator with an ordered modifier chain. The
// calculator holds no state besides the chain, so identical inputs always
// produce identical quotes.
func NewCalculator(log *zap.SugaredLogger, modifiers ...Modifier) *Calculator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Calculator{modifiers: modifiers, log: log}
}

// QuoteFor computes base = pricePerDay * days, then applies each modifier in
// order. Fails before any ledger interaction when the vehicle cannot be priced.
func (c *Calculator) QuoteFor(v *vehicle.Vehicle, span interval.Interval) (Quote, error) {
	if v == nil || v.PricePerDay.Amount <= 0 || v.PricePerDay.Currency == "" || !v.Active {
		return Quote{}, ErrInvalidVehicle
	}

	days := span.Days()
	base := types.Money{
		Amount:   v.PricePerDay.Amount * int64(days),
		Currency: v.PricePerDay.Currency,
	}

	q := Quote{
		Base:      base,
		Days:      days,
		Total:     base,
		Breakdown: map[string]int64{"base": base.Amount},
	}
	for _, mod := range c.modifiers {
		adj := mod(span, base)
		if adj == nil {
			continue
		}
		q.Total.Amount += adj.Amount
		q.Breakdown[adj.Label] = adj.Amount
		c.log.Debugw("price adjustment applied",
			"vehicle_id", v.ID,
			"span", span.String(),
			"label", adj.Label,
			"amount", adj.Amount,
		)
	}
	if q.Total.Amount < 0 {
		q.Total.Amount = 0
	}
	return q, nil
}

// LongStayDiscount returns a modifier knocking percent off the base price for
// rentals of at least minDays days.
func LongStayDiscount(minDays int, percent int64) Modifier {
	return func(span interval.Interval, base types.Money) *Adjustment {
		if span.Days() < minDays {
			return nil
		}
		return &Adjustment{
			Label:  "long_stay_discount",
			Amount: -(base.Amount * percent) / 100,
		}
	}
}

// WeekendSurcharge returns a modifier adding a flat amount for each Saturday
// or Sunday night inside the interval.
func WeekendSurcharge(perNight int64) Modifier {
	return func(span interval.Interval, _ types.Money) *Adjustment {
		var nights int64
		for d := span.Start(); d.Before(span.End()); d = d.AddDate(0, 0, 1) {
			if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
				nights++
			}
		}
		if nights == 0 {
			return nil
		}
		return &Adjustment{Label: "weekend_surcharge", Amount: nights * perNight}
	}
}
