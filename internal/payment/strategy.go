package payment

import (
	"context"

	pkgerrors "okoa/pkg/errors"
)

// Strategy names one of the two interchangeable ways of confirming the
// processing-fee payment.
type Strategy string

const (
	// StrategyPush asks the remote gateway to prompt the payer's device.
	StrategyPush Strategy = "push"
	// StrategyPull shows payment instructions and verifies pasted
	// confirmation text locally.
	StrategyPull Strategy = "pull"
)

// ParseStrategy validates a caller-supplied strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPush, StrategyPull:
		return Strategy(s), nil
	}
	return "", pkgerrors.ErrUnknownStrategy
}

// Initiator is the remote Payment Initiation collaborator. The call is
// synchronous: success only means the gateway accepted the request and the
// payer will be prompted.
type Initiator interface {
	STKPush(ctx context.Context, phone string, amount int64, reference string) error
}
