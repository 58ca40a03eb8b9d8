package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockerAcquireAndRelease(t *testing.T) {
	_, client := newTestClient(t)
	locker := NewLocker(client, "")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	// A second acquisition on the same key must wait; with a short context
	// it times out instead.
	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, "s1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Different keys do not contend.
	unlockOther, err := locker.Lock(ctx, "s2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlockOther(ctx))

	// After release, the key is free again.
	require.NoError(t, unlock(ctx))
	unlock2, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLockerExpiredLockIsSafeToUnlock(t *testing.T) {
	mr, client := newTestClient(t)
	locker := NewLocker(client, "")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Second)
	require.NoError(t, err)

	// Expire the lock, then let another holder take it.
	mr.FastForward(2 * time.Second)
	unlockOther, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)

	// The stale unlock must not release the new holder's lock.
	require.NoError(t, unlock(ctx))
	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, "s1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlockOther(ctx))
}
