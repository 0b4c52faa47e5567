// ==============================================================================
// WORKFLOW STATE MACHINE - internal/workflow/machine.go
// ==============================================================================
// Orchestrates the funnel: eligibility capture, loan selection, processing
// fee payment (push or pull confirmation), and the disbursement summary.
// Every stage entry is gated on the session aggregate.
// ==============================================================================

package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"okoa/internal/domain"
	"okoa/internal/eligibility"
	"okoa/internal/loan"
	"okoa/internal/mpesa"
	"okoa/internal/payment"
	"okoa/internal/session"
	"okoa/pkg/config"
	pkgerrors "okoa/pkg/errors"
	"okoa/pkg/logger"
)

type Machine struct {
	store           session.Store
	initiator       payment.Initiator
	parser          *payment.Parser
	pushes          *payment.PushTracker
	logger          logger.Logger
	rate            decimal.Decimal
	termMonths      int
	refPrefix       string
	merchant        MerchantDetails
	defaultStrategy string

	// now is a hook for tests; defaults to time.Now.
	now func() time.Time
}

// MerchantDetails are the fixed pull-strategy payment instructions.
type MerchantDetails struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func NewMachine(store session.Store, initiator payment.Initiator, cfg *config.Config, log logger.Logger) *Machine {
	rate, err := decimal.NewFromString(cfg.Loan.InterestRate)
	if err != nil {
		log.Warn("Invalid interest rate configured, using default", map[string]interface{}{
			"configured": cfg.Loan.InterestRate,
		})
		rate = loan.DefaultInterestRate
	}

	termMonths := cfg.Loan.TermMonths
	if termMonths <= 0 {
		termMonths = loan.DefaultTermMonths
	}

	return &Machine{
		store:      store,
		initiator:  initiator,
		parser:     payment.NewParser(cfg.Gateway.MerchantName),
		pushes:     payment.NewPushTracker(),
		logger:     log,
		rate:       rate,
		termMonths: termMonths,
		refPrefix:  cfg.Gateway.ReferencePrefix,
		merchant: MerchantDetails{
			Name: cfg.Gateway.MerchantName,
			Code: cfg.Gateway.MerchantCode,
		},
		defaultStrategy: cfg.Loan.DefaultStrategy,
		now:             time.Now,
	}
}

// SubmitEligibility validates the raw fields and merges the normalized
// profile into the aggregate. An existing loan selection or payment status
// on record is preserved.
func (m *Machine) SubmitEligibility(ctx context.Context, sessionID string, in eligibility.Input) (*domain.LoanApplication, error) {
	profile, fieldErr := eligibility.Validate(in)
	if fieldErr != nil {
		return nil, fieldErr
	}

	app, err := m.store.Merge(ctx, sessionID, domain.ProfilePatch(profile))
	if err != nil {
		return nil, err
	}

	m.logger.Info("Eligibility captured", map[string]interface{}{
		"session_id": sessionID,
		"loan_type":  profile.LoanType,
	})
	return app, nil
}

// Options returns the loan catalog for the selection stage.
func (m *Machine) Options() []domain.LoanOption {
	return loan.Options()
}

// SelectLoan records the chosen tier. The amount must match a catalog tier
// exactly; the fee is taken from the catalog, never from the caller.
func (m *Machine) SelectLoan(ctx context.Context, sessionID string, amount int64) (*domain.LoanApplication, error) {
	app, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !app.HasProfile() {
		return nil, redirect(domain.StageEligibility)
	}

	option, ok := loan.Lookup(amount)
	if !ok {
		return nil, pkgerrors.ErrLoanOptionUnknown
	}

	return m.store.Merge(ctx, sessionID, domain.LoanPatch(option))
}

// ChooseStrategy records which payment confirmation path the user picked.
func (m *Machine) ChooseStrategy(ctx context.Context, sessionID string, strategy string) (*domain.LoanApplication, error) {
	parsed, err := payment.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}

	app, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stage := session.CurrentStage(app); stage != domain.StagePayment {
		return nil, redirect(stage)
	}

	s := string(parsed)
	return m.store.Merge(ctx, sessionID, domain.ApplicationPatch{PaymentStrategy: &s})
}

// InitiatePush asks the gateway to prompt the payer for the processing fee.
// On gateway acceptance the attempt is left pending until the gateway
// reports a result; on failure the attempt is retryable.
func (m *Machine) InitiatePush(ctx context.Context, sessionID string) (*payment.PushAttempt, error) {
	app, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stage := session.CurrentStage(app); stage != domain.StagePayment {
		return nil, redirect(stage)
	}

	// A live prompt must resolve via the gateway callback or be cancelled
	// before another one starts; replacing it would orphan a payment the
	// user may already have completed.
	if attempt, ok := m.pushes.Get(sessionID); ok &&
		(attempt.State == payment.PushStateInitiating || attempt.State == payment.PushStatePending) {
		return nil, pkgerrors.ErrPushInProgress
	}

	strategy := string(payment.StrategyPush)
	if _, err := m.store.Merge(ctx, sessionID, domain.ApplicationPatch{PaymentStrategy: &strategy}); err != nil {
		return nil, err
	}

	reference := mpesa.NewReference(m.refPrefix)
	m.pushes.Begin(sessionID, reference)
	return m.runPush(ctx, sessionID, app, reference)
}

// RetryPush re-runs a failed push attempt with a fresh reference.
func (m *Machine) RetryPush(ctx context.Context, sessionID string) (*payment.PushAttempt, error) {
	app, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stage := session.CurrentStage(app); stage != domain.StagePayment {
		return nil, redirect(stage)
	}

	reference := mpesa.NewReference(m.refPrefix)
	if _, err := m.pushes.Retry(sessionID, reference); err != nil {
		return nil, err
	}
	return m.runPush(ctx, sessionID, app, reference)
}

// CancelPush abandons the prompt and returns the session to strategy
// choice.
func (m *Machine) CancelPush(ctx context.Context, sessionID string) error {
	return m.pushes.Cancel(sessionID)
}

func (m *Machine) runPush(ctx context.Context, sessionID string, app *domain.LoanApplication, reference string) (*payment.PushAttempt, error) {
	phone := mpesa.NormalizeMSISDN(app.PhoneNumber)

	if err := m.initiator.STKPush(ctx, phone, app.ProcessingFee, reference); err != nil {
		_ = m.pushes.MarkFailed(sessionID, err.Error())
		m.logger.Warn("STK push rejected", map[string]interface{}{
			"session_id": sessionID,
			"reference":  reference,
			"error":      err.Error(),
		})
		attempt, _ := m.pushes.Get(sessionID)
		return attempt, err
	}

	if err := m.pushes.MarkPending(sessionID); err != nil {
		return nil, err
	}
	attempt, _ := m.pushes.Get(sessionID)
	return attempt, nil
}

// HandleGatewayResult records the gateway's final verdict for a push
// reference. On success the payment is confirmed in the aggregate.
func (m *Machine) HandleGatewayResult(ctx context.Context, reference string, success bool, message string) error {
	sessionID, ok := m.pushes.FindByReference(reference)
	if !ok {
		return pkgerrors.ErrPushNotStarted
	}

	if !success {
		if message == "" {
			message = "Payment failed. Please try again."
		}
		return m.pushes.MarkFailed(sessionID, message)
	}

	if err := m.pushes.MarkSucceeded(sessionID); err != nil {
		return err
	}
	if err := m.confirmPayment(ctx, sessionID); err != nil {
		return err
	}

	m.logger.Info("Push payment confirmed", map[string]interface{}{
		"session_id": sessionID,
		"reference":  reference,
	})
	return nil
}

// SubmitConfirmationText verifies pasted confirmation text against the
// expected fee and payee. Failures are indefinitely retryable.
func (m *Machine) SubmitConfirmationText(ctx context.Context, sessionID, text string) (*domain.LoanApplication, error) {
	app, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stage := session.CurrentStage(app); stage != domain.StagePayment {
		return nil, redirect(stage)
	}

	strategy := string(payment.StrategyPull)
	if _, err := m.store.Merge(ctx, sessionID, domain.ApplicationPatch{PaymentStrategy: &strategy}); err != nil {
		return nil, err
	}

	if _, err := m.parser.Verify(text, app.ProcessingFee); err != nil {
		m.logger.Debug("Confirmation text rejected", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}

	if err := m.confirmPayment(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.load(ctx, sessionID)
}

func (m *Machine) confirmPayment(ctx context.Context, sessionID string) error {
	confirmed := true
	at := m.now()
	_, err := m.store.Merge(ctx, sessionID, domain.ApplicationPatch{
		PaymentConfirmed: &confirmed,
		ConfirmedAt:      &at,
	})
	return err
}

// Status returns the shell-facing snapshot for the session.
func (m *Machine) Status(ctx context.Context, sessionID string) (*Snapshot, error) {
	app, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrApplicationNotFound) {
			return &Snapshot{
				State:    StateNoProfile,
				Stage:    domain.StageEligibility,
				Greeting: (&domain.LoanApplication{}).DisplayName(),
			}, nil
		}
		return nil, err
	}

	push, _ := m.pushes.Get(sessionID)
	return &Snapshot{
		State:       stateOf(app, push),
		Stage:       session.CurrentStage(app),
		Greeting:    app.DisplayName(),
		Application: app,
		Push:        push,
		LoanOptions: loan.Options(),
	}, nil
}

// Restart destroys the aggregate and any push attempt, starting a fresh
// funnel for the session.
func (m *Machine) Restart(ctx context.Context, sessionID string) error {
	_ = m.pushes.Cancel(sessionID)
	return m.store.Clear(ctx, sessionID)
}

func (m *Machine) load(ctx context.Context, sessionID string) (*domain.LoanApplication, error) {
	app, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrApplicationNotFound) {
			return nil, redirect(domain.StageEligibility)
		}
		return nil, err
	}
	return app, nil
}
