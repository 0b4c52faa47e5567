package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okoa/internal/domain"
	"okoa/pkg/cache"
	pkgerrors "okoa/pkg/errors"
)

func strPtr(s string) *string { return &s }

func profilePatch() domain.ApplicationPatch {
	return domain.ProfilePatch(domain.ApplicantProfile{
		Name:        "Jane Wanjiru",
		PhoneNumber: "0712345678",
		IDNumber:    "12345678",
		LoanType:    domain.LoanTypePersonal,
	})
}

func TestMemoryStore_LoadAbsent(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, pkgerrors.ErrApplicationNotFound)
}

func TestMemoryStore_MergeCreates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	app, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)
	assert.Equal(t, "Jane Wanjiru", app.Name)
	assert.True(t, app.HasProfile())
	assert.False(t, app.HasLoan())

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, app, loaded)
}

func TestMemoryStore_DisjointMergesAccumulate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	app, err := store.Merge(ctx, "sess-1", domain.LoanPatch(domain.LoanOption{Amount: 16800, Fee: 200}))
	require.NoError(t, err)

	// Profile fields survive the loan merge.
	assert.Equal(t, "Jane Wanjiru", app.Name)
	assert.Equal(t, int64(16800), app.LoanAmount)
	assert.Equal(t, int64(200), app.ProcessingFee)
}

func TestMemoryStore_MergeIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	second, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	app, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	app.Name = "Mallory"

	fresh, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane Wanjiru", fresh.Name)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "sess-1"))

	_, err = store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, pkgerrors.ErrApplicationNotFound)

	// Clearing an absent session is a no-op.
	assert.NoError(t, store.Clear(ctx, "sess-1"))
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return NewRedisStore(c, ttl), mr
}

func TestRedisStore_LoadAbsent(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)

	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, pkgerrors.ErrApplicationNotFound)
}

func TestRedisStore_MergeAndLoad(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	app, err := store.Merge(ctx, "sess-1", domain.LoanPatch(domain.LoanOption{Amount: 21200, Fee: 220}))
	require.NoError(t, err)
	assert.Equal(t, "Jane Wanjiru", app.Name)
	assert.Equal(t, int64(21200), app.LoanAmount)

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, app, loaded)
}

func TestRedisStore_PatchOverwritesOnlyNamedFields(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	app, err := store.Merge(ctx, "sess-1", domain.ApplicationPatch{PaymentStrategy: strPtr("pull")})
	require.NoError(t, err)
	assert.Equal(t, "pull", app.PaymentStrategy)
	assert.Equal(t, "0712345678", app.PhoneNumber)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, pkgerrors.ErrApplicationNotFound)
}

func TestRedisStore_LoadSlidesTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	// Each read pushes the expiry out, so the two 45s gaps together exceed
	// the TTL without the session being lost.
	mr.FastForward(45 * time.Second)
	_, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)

	mr.FastForward(45 * time.Second)
	_, err = store.Load(ctx, "sess-1")
	assert.NoError(t, err)
}

func TestRedisStore_Clear(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Merge(ctx, "sess-1", profilePatch())
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "sess-1"))

	_, err = store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, pkgerrors.ErrApplicationNotFound)
}
