// ==============================================================================
// PUSH PAYMENT TRACKING - internal/payment/push.go
// ==============================================================================
package payment

import (
	"sync"
	"time"

	pkgerrors "okoa/pkg/errors"
)

// PushState is one sub-state of the AwaitingPush flow.
type PushState string

const (
	PushStateInitiating PushState = "initiating"
	PushStatePending    PushState = "pending"
	PushStateSucceeded  PushState = "succeeded"
	PushStateFailed     PushState = "failed"
)

// PushAttempt records the progress of one gateway prompt for a session.
type PushAttempt struct {
	State     PushState `json:"state"`
	Reference string    `json:"reference"`
	LastError string    `json:"last_error,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// PushTracker holds the per-session AwaitingPush sub-state. The sub-state
// is ephemeral UI-facing progress; only the final confirmation is written to
// the aggregate. The tracker never blocks: the gateway call happens outside
// the lock and its outcome is reported back via MarkPending or MarkFailed.
type PushTracker struct {
	mu       sync.Mutex
	attempts map[string]*PushAttempt
}

func NewPushTracker() *PushTracker {
	return &PushTracker{attempts: make(map[string]*PushAttempt)}
}

// Begin starts a fresh attempt in the initiating state, replacing any
// previous attempt for the session.
func (t *PushTracker) Begin(sessionID, reference string) *PushAttempt {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempt := &PushAttempt{
		State:     PushStateInitiating,
		Reference: reference,
		StartedAt: time.Now(),
	}
	t.attempts[sessionID] = attempt
	return t.snapshot(attempt)
}

// MarkPending records that the gateway accepted the request and the payer
// is being prompted.
func (t *PushTracker) MarkPending(sessionID string) error {
	return t.transition(sessionID, PushStatePending, "", PushStateInitiating)
}

// MarkFailed records a gateway failure with its user-facing message.
func (t *PushTracker) MarkFailed(sessionID, message string) error {
	return t.transition(sessionID, PushStateFailed, message, PushStateInitiating, PushStatePending)
}

// MarkSucceeded records the gateway's final success signal.
func (t *PushTracker) MarkSucceeded(sessionID string) error {
	return t.transition(sessionID, PushStateSucceeded, "", PushStatePending)
}

// Retry re-enters initiating after a failure. Only a failed attempt is
// retryable; pending attempts must resolve or be cancelled first.
func (t *PushTracker) Retry(sessionID, reference string) (*PushAttempt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempt, ok := t.attempts[sessionID]
	if !ok {
		return nil, pkgerrors.ErrPushNotStarted
	}
	if attempt.State != PushStateFailed {
		return nil, pkgerrors.ErrPushNotRetryable
	}

	attempt.State = PushStateInitiating
	attempt.Reference = reference
	attempt.LastError = ""
	attempt.StartedAt = time.Now()
	return t.snapshot(attempt), nil
}

// Cancel abandons the attempt, returning the session to strategy choice.
func (t *PushTracker) Cancel(sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.attempts[sessionID]; !ok {
		return pkgerrors.ErrPushNotStarted
	}
	delete(t.attempts, sessionID)
	return nil
}

// Get returns a copy of the session's current attempt, if any.
func (t *PushTracker) Get(sessionID string) (*PushAttempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempt, ok := t.attempts[sessionID]
	if !ok {
		return nil, false
	}
	return t.snapshot(attempt), true
}

// FindByReference resolves the session owning a gateway reference, for
// correlating callback posts.
func (t *PushTracker) FindByReference(reference string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for sessionID, attempt := range t.attempts {
		if attempt.Reference == reference {
			return sessionID, true
		}
	}
	return "", false
}

func (t *PushTracker) transition(sessionID string, to PushState, message string, from ...PushState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	attempt, ok := t.attempts[sessionID]
	if !ok {
		return pkgerrors.ErrPushNotStarted
	}

	allowed := false
	for _, f := range from {
		if attempt.State == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return pkgerrors.ErrInvalidTransition
	}

	attempt.State = to
	attempt.LastError = message
	return nil
}

func (t *PushTracker) snapshot(a *PushAttempt) *PushAttempt {
	out := *a
	return &out
}
