// ==============================================================================
// REPAYMENT CALCULATOR - internal/loan/repayment.go
// ==============================================================================
package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInterestRate is the flat rate applied over the fixed term.
var DefaultInterestRate = decimal.RequireFromString("0.10")

// DefaultTermMonths is the fixed repayment term.
const DefaultTermMonths = 2

// TotalRepayment returns principal plus interest at the given flat rate,
// rounded half-up to the nearest whole shilling.
func TotalRepayment(amount int64, rate decimal.Decimal) int64 {
	principal := decimal.NewFromInt(amount)
	total := principal.Add(principal.Mul(rate))
	return total.Round(0).IntPart()
}

// DueDate returns the repayment due date for a confirmation made at the
// given time.
func DueDate(confirmedAt time.Time, termMonths int) time.Time {
	return confirmedAt.AddDate(0, termMonths, 0)
}
