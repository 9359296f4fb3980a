package lease_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-ai/marcus/internal/service/lease"
)

func TestAcquire_BlocksWhileActive(t *testing.T) {
	m := lease.New(lease.DefaultConfig(), nil)
	now := time.Now().UTC()

	l := m.Acquire("t1", "agent-1", now)
	require.NotNil(t, l)

	blocked := m.Acquire("t1", "agent-2", now)
	assert.Nil(t, blocked)
}

func TestAcquire_AllowsAfterExpiry(t *testing.T) {
	cfg := lease.DefaultConfig()
	cfg.DefaultDuration = time.Minute
	m := lease.New(cfg, nil)
	now := time.Now().UTC()

	l := m.Acquire("t1", "agent-1", now)
	require.NotNil(t, l)

	later := now.Add(2 * time.Minute)
	reacquired := m.Acquire("t1", "agent-2", later)
	require.NotNil(t, reacquired)
	assert.Equal(t, "agent-2", reacquired.AgentID)
}

func TestRelease_IsIdempotent(t *testing.T) {
	m := lease.New(lease.DefaultConfig(), nil)
	now := time.Now().UTC()
	m.Acquire("t1", "agent-1", now)

	ctx := context.Background()
	require.NoError(t, m.Release(ctx, "t1", "agent-1"))
	require.NoError(t, m.Release(ctx, "t1", "agent-1"))
}

func TestRelease_WrongAgentErrors(t *testing.T) {
	m := lease.New(lease.DefaultConfig(), nil)
	now := time.Now().UTC()
	m.Acquire("t1", "agent-1", now)

	err := m.Release(context.Background(), "t1", "agent-2")
	assert.Error(t, err)
}

func TestHeartbeat_UnknownLeaseReturnsFalse(t *testing.T) {
	m := lease.New(lease.DefaultConfig(), nil)
	ok, err := m.Heartbeat(context.Background(), "ghost", "agent-1", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTick_ExpiresAndRemoves(t *testing.T) {
	cfg := lease.DefaultConfig()
	cfg.DefaultDuration = time.Minute
	m := lease.New(cfg, nil)
	now := time.Now().UTC()
	m.Acquire("t1", "agent-1", now)

	expired := m.Tick(context.Background(), now.Add(2*time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, "t1", expired[0].TaskID)

	_, ok := m.Get("t1")
	assert.False(t, ok)
}

func TestForceRelease_UnknownLeaseIsNoop(t *testing.T) {
	m := lease.New(lease.DefaultConfig(), nil)
	err := m.ForceRelease(context.Background(), "ghost", "admin override")
	assert.NoError(t, err)
}

func TestRestore_MakesLeaseVisibleToGet(t *testing.T) {
	m := lease.New(lease.DefaultConfig(), nil)
	now := time.Now().UTC()
	original := m.Acquire("t1", "agent-1", now)
	require.NotNil(t, original)

	fresh := lease.New(lease.DefaultConfig(), nil)
	fresh.Restore(*original)

	got, ok := fresh.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "agent-1", got.AgentID)
}
