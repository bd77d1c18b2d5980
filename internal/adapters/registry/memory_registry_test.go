package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryRegistrySeenAfterMark(t *testing.T) {
	r := NewMemoryRegistry(zap.NewNop(), 0, 0)
	defer r.Stop()

	ctx := context.Background()
	deadline := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	seen, err := r.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, r.Mark(ctx, "msg-1", deadline))

	seen, err = r.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryRegistryZeroTTLNeverExpires(t *testing.T) {
	r := NewMemoryRegistry(zap.NewNop(), 0, 0)
	defer r.Stop()

	ctx := context.Background()
	require.NoError(t, r.Mark(ctx, "msg-2", time.Now()))
	require.NoError(t, r.Cleanup(ctx))

	seen, err := r.Seen(ctx, "msg-2")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMemoryRegistryTTLExpiry(t *testing.T) {
	r := NewMemoryRegistry(zap.NewNop(), 10*time.Millisecond, 0)
	defer r.Stop()

	ctx := context.Background()
	require.NoError(t, r.Mark(ctx, "msg-3", time.Now()))

	time.Sleep(20 * time.Millisecond)

	seen, err := r.Seen(ctx, "msg-3")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, r.Cleanup(ctx))
	r.mu.RLock()
	_, present := r.entries["msg-3"]
	r.mu.RUnlock()
	assert.False(t, present)
}
