package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceOf resolves the unit price of a material as of a date: the price-history
// entry with the maximum quoted date <= asOf. The second return is false when
// no entry qualifies; the caller supplies its own fallback (a cached BOM-edge
// cost, or a zero-cost line flagged as unpriced).
func PriceOf(ctx context.Context, book PriceBook, materialID string, asOf time.Time) (decimal.Decimal, bool, error) {
	history, err := book.PriceHistory(ctx, materialID)
	if err != nil {
		return decimal.Zero, false, err
	}

	var (
		best      decimal.Decimal
		bestDate  time.Time
		havePrice bool
	)
	for _, p := range history {
		if p.QuotedDate.After(asOf) {
			continue
		}
		if !havePrice || p.QuotedDate.After(bestDate) {
			best = p.Price
			bestDate = p.QuotedDate
			havePrice = true
		}
	}
	return best, havePrice, nil
}
