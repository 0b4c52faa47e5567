// ==============================================================================
// SESSION STATE STORE - internal/session/store.go
// ==============================================================================
// Single-owner store for the in-progress loan application. One aggregate per
// session; writes are merge-on-write so no stage ever observes a partial
// aggregate.
// ==============================================================================

package session

import (
	"context"

	"okoa/internal/domain"
)

// Store owns the session-scoped LoanApplication aggregate.
type Store interface {
	// Load returns the aggregate for the session, or
	// errors.ErrApplicationNotFound when none exists.
	Load(ctx context.Context, sessionID string) (*domain.LoanApplication, error)

	// Merge applies the patch to the existing aggregate, creating one if
	// absent, and returns the merged result.
	Merge(ctx context.Context, sessionID string, patch domain.ApplicationPatch) (*domain.LoanApplication, error)

	// Clear destroys the aggregate. Clearing an absent aggregate is not an
	// error.
	Clear(ctx context.Context, sessionID string) error
}
