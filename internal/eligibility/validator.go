// ==============================================================================
// ELIGIBILITY VALIDATOR - internal/eligibility/validator.go
// ==============================================================================
package eligibility

import (
	"strings"

	"okoa/internal/domain"
	"okoa/pkg/validator"
)

// Input carries the raw form fields exactly as submitted.
type Input struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	IDNumber    string `json:"id_number"`
	LoanType    string `json:"loan_type"`
}

// FieldError reports the first failing field. At most one is returned per
// submission; fields are checked in the order name, phone, id, loan type.
type FieldError struct {
	Field   string `json:"field"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Title + ": " + e.Message
}

// Validate checks the submitted fields and returns a normalized profile, or
// the first field error found. Validation is pure; the caller owns the
// session write.
func Validate(in Input) (domain.ApplicantProfile, *FieldError) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.PhoneNumber)
	id := strings.TrimSpace(in.IDNumber)
	loanType := domain.LoanType(strings.TrimSpace(in.LoanType))

	if !validator.IsApplicantName(name) {
		return domain.ApplicantProfile{}, &FieldError{
			Field:   "name",
			Title:   "Invalid Name",
			Message: "Please enter your full name (letters only)",
		}
	}

	if !validator.IsKenyanMSISDN(phone) {
		return domain.ApplicantProfile{}, &FieldError{
			Field:   "phone_number",
			Title:   "Invalid Phone",
			Message: "Please enter a valid Safaricom number (07XXXXXXXX)",
		}
	}

	if !validator.IsNationalID(id) {
		return domain.ApplicantProfile{}, &FieldError{
			Field:   "id_number",
			Title:   "Invalid ID",
			Message: "Please enter a valid Kenyan ID (7-10 digits)",
		}
	}

	if !loanType.Valid() {
		return domain.ApplicantProfile{}, &FieldError{
			Field:   "loan_type",
			Title:   "Missing Loan Type",
			Message: "Please select your loan purpose",
		}
	}

	return domain.ApplicantProfile{
		Name:        name,
		PhoneNumber: phone,
		IDNumber:    id,
		LoanType:    loanType,
	}, nil
}
