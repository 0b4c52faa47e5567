package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "okoa/pkg/errors"
)

func TestPushTracker_HappyPath(t *testing.T) {
	tracker := NewPushTracker()

	attempt := tracker.Begin("sess-1", "PROC_ABC123")
	assert.Equal(t, PushStateInitiating, attempt.State)
	assert.Equal(t, "PROC_ABC123", attempt.Reference)
	assert.False(t, attempt.StartedAt.IsZero())

	require.NoError(t, tracker.MarkPending("sess-1"))
	require.NoError(t, tracker.MarkSucceeded("sess-1"))

	got, ok := tracker.Get("sess-1")
	require.True(t, ok)
	assert.Equal(t, PushStateSucceeded, got.State)
}

func TestPushTracker_FailureFromInitiatingOrPending(t *testing.T) {
	tracker := NewPushTracker()

	tracker.Begin("sess-1", "PROC_A")
	require.NoError(t, tracker.MarkFailed("sess-1", "Gateway rejected the request"))

	got, _ := tracker.Get("sess-1")
	assert.Equal(t, PushStateFailed, got.State)
	assert.Equal(t, "Gateway rejected the request", got.LastError)

	tracker.Begin("sess-2", "PROC_B")
	require.NoError(t, tracker.MarkPending("sess-2"))
	require.NoError(t, tracker.MarkFailed("sess-2", "User cancelled the prompt"))
}

func TestPushTracker_SucceededOnlyFromPending(t *testing.T) {
	tracker := NewPushTracker()

	tracker.Begin("sess-1", "PROC_A")
	err := tracker.MarkSucceeded("sess-1")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransition)
}

func TestPushTracker_TerminalStatesRejectFurtherTransitions(t *testing.T) {
	tracker := NewPushTracker()

	tracker.Begin("sess-1", "PROC_A")
	require.NoError(t, tracker.MarkPending("sess-1"))
	require.NoError(t, tracker.MarkSucceeded("sess-1"))

	assert.ErrorIs(t, tracker.MarkFailed("sess-1", "late failure"), pkgerrors.ErrInvalidTransition)
	assert.ErrorIs(t, tracker.MarkPending("sess-1"), pkgerrors.ErrInvalidTransition)
}

func TestPushTracker_RetryOnlyFromFailed(t *testing.T) {
	tracker := NewPushTracker()

	tracker.Begin("sess-1", "PROC_A")
	require.NoError(t, tracker.MarkPending("sess-1"))

	_, err := tracker.Retry("sess-1", "PROC_B")
	assert.ErrorIs(t, err, pkgerrors.ErrPushNotRetryable)

	require.NoError(t, tracker.MarkFailed("sess-1", "timeout"))

	attempt, err := tracker.Retry("sess-1", "PROC_B")
	require.NoError(t, err)
	assert.Equal(t, PushStateInitiating, attempt.State)
	assert.Equal(t, "PROC_B", attempt.Reference)
	assert.Empty(t, attempt.LastError)
}

func TestPushTracker_UnknownSession(t *testing.T) {
	tracker := NewPushTracker()

	assert.ErrorIs(t, tracker.MarkPending("nope"), pkgerrors.ErrPushNotStarted)
	assert.ErrorIs(t, tracker.Cancel("nope"), pkgerrors.ErrPushNotStarted)

	_, err := tracker.Retry("nope", "PROC_X")
	assert.ErrorIs(t, err, pkgerrors.ErrPushNotStarted)

	_, ok := tracker.Get("nope")
	assert.False(t, ok)
}

func TestPushTracker_Cancel(t *testing.T) {
	tracker := NewPushTracker()

	tracker.Begin("sess-1", "PROC_A")
	require.NoError(t, tracker.MarkPending("sess-1"))
	require.NoError(t, tracker.Cancel("sess-1"))

	_, ok := tracker.Get("sess-1")
	assert.False(t, ok)
}

func TestPushTracker_FindByReference(t *testing.T) {
	tracker := NewPushTracker()

	tracker.Begin("sess-1", "PROC_A")
	tracker.Begin("sess-2", "PROC_B")

	sessionID, ok := tracker.FindByReference("PROC_B")
	require.True(t, ok)
	assert.Equal(t, "sess-2", sessionID)

	_, ok = tracker.FindByReference("PROC_MISSING")
	assert.False(t, ok)
}

func TestPushTracker_GetReturnsCopy(t *testing.T) {
	tracker := NewPushTracker()

	tracker.Begin("sess-1", "PROC_A")
	got, _ := tracker.Get("sess-1")
	got.State = PushStateSucceeded

	fresh, _ := tracker.Get("sess-1")
	assert.Equal(t, PushStateInitiating, fresh.State)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("push")
	require.NoError(t, err)
	assert.Equal(t, StrategyPush, s)

	s, err = ParseStrategy("pull")
	require.NoError(t, err)
	assert.Equal(t, StrategyPull, s)

	_, err = ParseStrategy("carrier-pigeon")
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownStrategy)
}
