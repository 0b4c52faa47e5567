// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Session / aggregate errors
	ErrApplicationNotFound = errors.New("loan application not found")

	// Stage guard errors
	ErrProfileIncomplete   = errors.New("applicant profile incomplete")
	ErrLoanNotSelected     = errors.New("loan amount not selected")
	ErrPaymentNotConfirmed = errors.New("processing fee payment not confirmed")

	// Loan catalog errors
	ErrLoanOptionUnknown = errors.New("loan amount is not an offered option")

	// Payment confirmation errors
	ErrEmptyConfirmation    = errors.New("confirmation message is empty")
	ErrConfirmationMismatch = errors.New("confirmation message does not match the expected payment")

	// Payment gateway errors
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrPushNotStarted     = errors.New("no payment prompt in progress")
	ErrPushInProgress     = errors.New("a payment prompt is already in progress")
	ErrPushNotRetryable   = errors.New("payment prompt is not in a retryable state")

	// Workflow errors
	ErrInvalidTransition = errors.New("workflow transition not allowed")
	ErrUnknownStrategy   = errors.New("unknown payment confirmation strategy")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
