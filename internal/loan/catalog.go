// ==============================================================================
// LOAN CATALOG - internal/loan/catalog.go
// ==============================================================================
package loan

import "okoa/internal/domain"

// catalog holds the ten offered tiers, ordered by amount. Fees reflect
// risk-based pricing on the larger tiers and are never recomputed from the
// amount.
var catalog = []domain.LoanOption{
	{Amount: 11200, Fee: 180},
	{Amount: 16800, Fee: 200},
	{Amount: 21200, Fee: 220},
	{Amount: 25600, Fee: 350},
	{Amount: 30000, Fee: 420},
	{Amount: 35400, Fee: 540},
	{Amount: 39800, Fee: 680},
	{Amount: 44200, Fee: 960},
	{Amount: 48600, Fee: 1550},
	{Amount: 60600, Fee: 2000},
}

// Options returns the catalog in display order.
func Options() []domain.LoanOption {
	out := make([]domain.LoanOption, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the tier for the given amount. The amount must match a
// tier exactly; there is no nearest-tier fallback.
func Lookup(amount int64) (domain.LoanOption, bool) {
	for _, opt := range catalog {
		if opt.Amount == amount {
			return opt, true
		}
	}
	return domain.LoanOption{}, false
}
