package session

import "okoa/internal/domain"

// CurrentStage returns the earliest stage whose entry precondition is unmet.
// Guard violations are routing corrections, not errors: a stage entered too
// early redirects here instead of rendering partial data.
//
// Preconditions, cumulative in funnel order:
//   - loan selection requires a captured phone number
//   - payment requires a selected tier (amount and fee)
//   - dashboard requires a confirmed payment
func CurrentStage(app *domain.LoanApplication) domain.Stage {
	if !app.HasProfile() {
		return domain.StageEligibility
	}
	if !app.HasLoan() {
		return domain.StageLoanSelection
	}
	if !app.PaymentConfirmed {
		return domain.StagePayment
	}
	return domain.StageDashboard
}

// stageOrder places each stage in funnel order for guard comparisons.
var stageOrder = map[domain.Stage]int{
	domain.StageEligibility:   0,
	domain.StageLoanSelection: 1,
	domain.StagePayment:       2,
	domain.StageDashboard:     3,
}

// CanEnter reports whether the session may enter the given stage. Entry is
// allowed for the current stage and any earlier one (re-entry is always
// permitted), never for a later stage.
func CanEnter(app *domain.LoanApplication, stage domain.Stage) bool {
	return stageOrder[stage] <= stageOrder[CurrentStage(app)]
}
