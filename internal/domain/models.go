// Package domain defines the loan application aggregate and the value types
// that move through the funnel.
package domain

import "time"

// LoanType represents the applicant's stated loan purpose
type LoanType string

const (
	LoanTypeBusiness  LoanType = "business"
	LoanTypePersonal  LoanType = "personal"
	LoanTypeEducation LoanType = "education"
	LoanTypeMedical   LoanType = "medical"
	LoanTypeEmergency LoanType = "emergency"
)

// Valid reports whether t is one of the offered loan purposes.
func (t LoanType) Valid() bool {
	switch t {
	case LoanTypeBusiness, LoanTypePersonal, LoanTypeEducation, LoanTypeMedical, LoanTypeEmergency:
		return true
	}
	return false
}

// ApplicantProfile is the normalized output of the eligibility stage.
// All string fields are trimmed.
type ApplicantProfile struct {
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phone_number"`
	IDNumber    string   `json:"id_number"`
	LoanType    LoanType `json:"loan_type"`
}

// LoanOption is one fixed (amount, fee) tier from the catalog. Fees are
// looked up verbatim and never derived from the amount.
type LoanOption struct {
	Amount int64 `json:"amount"`
	Fee    int64 `json:"fee"`
}

// LoanApplication is the single session-scoped aggregate. It accumulates
// fields stage by stage and is destroyed on restart or completion.
type LoanApplication struct {
	Name             string     `json:"name,omitempty"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	IDNumber         string     `json:"id_number,omitempty"`
	LoanType         LoanType   `json:"loan_type,omitempty"`
	LoanAmount       int64      `json:"loan_amount,omitempty"`
	ProcessingFee    int64      `json:"processing_fee,omitempty"`
	PaymentStrategy  string     `json:"payment_strategy,omitempty"`
	PaymentConfirmed bool       `json:"payment_confirmed,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	Disbursed        bool       `json:"disbursed,omitempty"`
}

// HasProfile reports whether the eligibility stage completed. The loan
// selection guard only requires the phone number; the eligibility stage
// never writes a partial profile, so phone presence implies the rest.
func (a *LoanApplication) HasProfile() bool {
	return a != nil && a.PhoneNumber != ""
}

// HasLoan reports whether a catalog tier has been selected.
func (a *LoanApplication) HasLoan() bool {
	return a != nil && a.LoanAmount > 0 && a.ProcessingFee > 0
}

// SelectedLoan returns the chosen tier, if any.
func (a *LoanApplication) SelectedLoan() (LoanOption, bool) {
	if !a.HasLoan() {
		return LoanOption{}, false
	}
	return LoanOption{Amount: a.LoanAmount, Fee: a.ProcessingFee}, true
}

// DisplayName returns the applicant name with the shell's fallback.
func (a *LoanApplication) DisplayName() string {
	if a == nil || a.Name == "" {
		return "Customer"
	}
	return a.Name
}

// ApplicationPatch is a partial update merged into the aggregate. Nil fields
// are left untouched, which makes merges of disjoint patches idempotent.
type ApplicationPatch struct {
	Name             *string
	PhoneNumber      *string
	IDNumber         *string
	LoanType         *LoanType
	LoanAmount       *int64
	ProcessingFee    *int64
	PaymentStrategy  *string
	PaymentConfirmed *bool
	ConfirmedAt      *time.Time
	Disbursed        *bool
}

// Apply merges the patch into app, field by field.
func (p ApplicationPatch) Apply(app *LoanApplication) {
	if p.Name != nil {
		app.Name = *p.Name
	}
	if p.PhoneNumber != nil {
		app.PhoneNumber = *p.PhoneNumber
	}
	if p.IDNumber != nil {
		app.IDNumber = *p.IDNumber
	}
	if p.LoanType != nil {
		app.LoanType = *p.LoanType
	}
	if p.LoanAmount != nil {
		app.LoanAmount = *p.LoanAmount
	}
	if p.ProcessingFee != nil {
		app.ProcessingFee = *p.ProcessingFee
	}
	if p.PaymentStrategy != nil {
		app.PaymentStrategy = *p.PaymentStrategy
	}
	if p.PaymentConfirmed != nil {
		app.PaymentConfirmed = *p.PaymentConfirmed
	}
	if p.ConfirmedAt != nil {
		app.ConfirmedAt = p.ConfirmedAt
	}
	if p.Disbursed != nil {
		app.Disbursed = *p.Disbursed
	}
}

// ProfilePatch builds a patch carrying every profile field.
func ProfilePatch(profile ApplicantProfile) ApplicationPatch {
	return ApplicationPatch{
		Name:        &profile.Name,
		PhoneNumber: &profile.PhoneNumber,
		IDNumber:    &profile.IDNumber,
		LoanType:    &profile.LoanType,
	}
}

// LoanPatch builds a patch carrying a selected tier.
func LoanPatch(option LoanOption) ApplicationPatch {
	return ApplicationPatch{
		LoanAmount:    &option.Amount,
		ProcessingFee: &option.Fee,
	}
}

// Stage identifies one screen of the funnel, in required order.
type Stage string

const (
	StageEligibility   Stage = "eligibility"
	StageLoanSelection Stage = "loan_selection"
	StagePayment       Stage = "payment"
	StageDashboard     Stage = "dashboard"
)
