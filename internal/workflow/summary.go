package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"okoa/internal/domain"
	"okoa/internal/loan"
	"okoa/internal/session"
)

// PaymentPage is the payment-stage view: the application recap, the amount
// to pay, and the fixed pull-strategy instructions.
type PaymentPage struct {
	Applicant      string          `json:"applicant"`
	PhoneNumber    string          `json:"phone_number"`
	LoanAmount     int64           `json:"loan_amount"`
	ProcessingFee  int64           `json:"processing_fee"`
	TotalRepayment int64           `json:"total_repayment"`
	AmountToPay    string          `json:"amount_to_pay"`
	Strategy       string          `json:"strategy,omitempty"`
	Merchant       MerchantDetails `json:"merchant"`
	Instructions   string          `json:"instructions"`
}

// Summary is the final disbursement view rendered by the dashboard. It is
// assembled from already-trusted aggregate state and performs no further
// validation beyond the stage guard.
type Summary struct {
	Applicant           string    `json:"applicant"`
	PhoneNumber         string    `json:"phone_number"`
	LoanType            string    `json:"loan_type"`
	LoanAmount          int64     `json:"loan_amount"`
	ProcessingFeePaid   int64     `json:"processing_fee_paid"`
	InterestRate        string    `json:"interest_rate"`
	TermMonths          int       `json:"term_months"`
	TotalRepayment      int64     `json:"total_repayment"`
	DueDate             time.Time `json:"due_date"`
	DisbursementMessage string    `json:"disbursement_message"`
}

// PaymentDetails returns the payment-stage view, gated on a selected loan.
func (m *Machine) PaymentDetails(ctx context.Context, sessionID string) (*PaymentPage, error) {
	app, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.CanEnter(app, domain.StagePayment) {
		return nil, redirect(session.CurrentStage(app))
	}

	strategy := app.PaymentStrategy
	if strategy == "" {
		strategy = m.defaultStrategy
	}

	return &PaymentPage{
		Applicant:      app.DisplayName(),
		PhoneNumber:    app.PhoneNumber,
		LoanAmount:     app.LoanAmount,
		ProcessingFee:  app.ProcessingFee,
		TotalRepayment: loan.TotalRepayment(app.LoanAmount, m.rate),
		AmountToPay:    FormatKsh(app.ProcessingFee),
		Strategy:       strategy,
		Merchant:       m.merchant,
		Instructions: fmt.Sprintf("Pay %s to %s (merchant code %s), then paste the confirmation message below.",
			FormatKsh(app.ProcessingFee), m.merchant.Name, m.merchant.Code),
	}, nil
}

// Dashboard returns the disbursement summary and marks the application
// disbursed on first view.
func (m *Machine) Dashboard(ctx context.Context, sessionID string) (*Summary, error) {
	app, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stage := session.CurrentStage(app); stage != domain.StageDashboard {
		return nil, redirect(stage)
	}

	if !app.Disbursed {
		disbursed := true
		if app, err = m.store.Merge(ctx, sessionID, domain.ApplicationPatch{Disbursed: &disbursed}); err != nil {
			return nil, err
		}
	}

	confirmedAt := m.now()
	if app.ConfirmedAt != nil {
		confirmedAt = *app.ConfirmedAt
	}

	return &Summary{
		Applicant:         app.DisplayName(),
		PhoneNumber:       app.PhoneNumber,
		LoanType:          string(app.LoanType),
		LoanAmount:        app.LoanAmount,
		ProcessingFeePaid: app.ProcessingFee,
		InterestRate:      m.rate.String(),
		TermMonths:        m.termMonths,
		TotalRepayment:    loan.TotalRepayment(app.LoanAmount, m.rate),
		DueDate:           loan.DueDate(confirmedAt, m.termMonths),
		DisbursementMessage: fmt.Sprintf("Your loan of %s will be sent to your M-Pesa number %s within 24 hours.",
			FormatKsh(app.LoanAmount), app.PhoneNumber),
	}, nil
}

// FormatKsh renders an amount as "Ksh 16,800" with thousands grouping.
func FormatKsh(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	negative := false
	if digits[0] == '-' {
		negative = true
		digits = digits[1:]
	}

	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, d)
	}

	if negative {
		return "Ksh -" + string(grouped)
	}
	return "Ksh " + string(grouped)
}
