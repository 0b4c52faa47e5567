// ==============================================================================
// VALIDATOR PACKAGE - pkg/validator/validator.go
// ==============================================================================
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field format rules for the Kenyan loan funnel.
var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s.'-]{2,}$`)
	phonePattern = regexp.MustCompile(`^(?:\+?254|0)[17]\d{8}$`)
	idPattern    = regexp.MustCompile(`^\d{7,10}$`)
)

// IsApplicantName reports whether s is a plausible full name after trimming.
func IsApplicantName(s string) bool {
	return namePattern.MatchString(strings.TrimSpace(s))
}

// IsKenyanMSISDN reports whether s is a Kenyan mobile number in any of the
// accepted prefix forms (0..., 254..., +254...).
func IsKenyanMSISDN(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// IsNationalID reports whether s is a 7-10 digit national ID after trimming.
func IsNationalID(s string) bool {
	return idPattern.MatchString(strings.TrimSpace(s))
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		// Format validation errors
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

// ValidateStructured returns a map of field -> error message for frontend usage
func (v *Validator) ValidateStructured(i interface{}) map[string]string {
	errs := make(map[string]string)
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				msg := fmt.Sprintf("failed validation on '%s'", e.Tag())
				switch e.Tag() {
				case "required":
					msg = "This field is required"
				case "min":
					msg = fmt.Sprintf("Must be at least %s characters", e.Param())
				case "max":
					msg = fmt.Sprintf("Must be at most %s characters", e.Param())
				case "gt":
					msg = "Must be greater than zero"
				case "applicant_name":
					msg = "Please enter your full name (letters only)"
				case "kenyan_msisdn":
					msg = "Please enter a valid Safaricom number (07XXXXXXXX)"
				case "kenyan_id":
					msg = "Please enter a valid Kenyan ID (7-10 digits)"
				case "loan_type":
					msg = "Please select your loan purpose"
				}
				errs[e.Field()] = msg
			}
		} else {
			errs["_global"] = err.Error()
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *Validator) registerCustomValidations() {
	_ = v.validate.RegisterValidation("applicant_name", func(fl validator.FieldLevel) bool {
		return IsApplicantName(fl.Field().String())
	})

	_ = v.validate.RegisterValidation("kenyan_msisdn", func(fl validator.FieldLevel) bool {
		return IsKenyanMSISDN(fl.Field().String())
	})

	_ = v.validate.RegisterValidation("kenyan_id", func(fl validator.FieldLevel) bool {
		return IsNationalID(fl.Field().String())
	})

	_ = v.validate.RegisterValidation("loan_type", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
		case "business", "personal", "education", "medical", "emergency":
			return true
		}
		return false
	})
}
