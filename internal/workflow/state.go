package workflow

import (
	"okoa/internal/domain"
	"okoa/internal/payment"
	pkgerrors "okoa/pkg/errors"
)

// State is the machine's position in the funnel, derived from the aggregate
// and the push sub-state rather than stored separately, so it can never
// disagree with the session data.
type State string

const (
	StateNoProfile             State = "no_profile"
	StateProfileCaptured       State = "profile_captured"
	StateLoanSelected          State = "loan_selected"
	StatePaymentStrategyChosen State = "payment_strategy_chosen"
	StateAwaitingPush          State = "awaiting_push"
	StatePaymentConfirmed      State = "payment_confirmed"
	StateDisbursed             State = "disbursed"
)

// Snapshot is what the presentation shell sees: the aggregate, the derived
// state, the stage to render, and any push attempt in flight.
type Snapshot struct {
	State       State                   `json:"state"`
	Stage       domain.Stage            `json:"stage"`
	Greeting    string                  `json:"greeting"`
	Application *domain.LoanApplication `json:"application,omitempty"`
	Push        *payment.PushAttempt    `json:"push,omitempty"`
	LoanOptions []domain.LoanOption     `json:"loan_options,omitempty"`
}

// StageRedirect is returned when a stage is entered before its
// preconditions hold. It is a routing correction, not a user-facing error:
// the shell should silently navigate to the indicated stage.
type StageRedirect struct {
	Stage domain.Stage
}

func (e *StageRedirect) Error() string {
	return "redirect to stage " + string(e.Stage)
}

// Unwrap exposes the unmet precondition behind the redirect, so callers can
// match it with errors.Is.
func (e *StageRedirect) Unwrap() error {
	switch e.Stage {
	case domain.StageEligibility:
		return pkgerrors.ErrProfileIncomplete
	case domain.StageLoanSelection:
		return pkgerrors.ErrLoanNotSelected
	case domain.StagePayment:
		return pkgerrors.ErrPaymentNotConfirmed
	}
	return nil
}

func redirect(stage domain.Stage) error {
	return &StageRedirect{Stage: stage}
}

func stateOf(app *domain.LoanApplication, push *payment.PushAttempt) State {
	if !app.HasProfile() {
		return StateNoProfile
	}
	if !app.HasLoan() {
		return StateProfileCaptured
	}
	if app.PaymentConfirmed {
		if app.Disbursed {
			return StateDisbursed
		}
		return StatePaymentConfirmed
	}
	if push != nil && (push.State == payment.PushStateInitiating || push.State == payment.PushStatePending || push.State == payment.PushStateFailed) {
		return StateAwaitingPush
	}
	if app.PaymentStrategy != "" {
		return StatePaymentStrategyChosen
	}
	return StateLoanSelected
}
