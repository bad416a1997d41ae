package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/novapay/pkg/adapters/redis"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunStateStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	state := domain.NewState(sessionID, "forgot-password")
	state.Payload["email"] = "asha@example.com"
	require.NoError(t, store.Save(ctx, sessionID, state))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned against wall-clock time, not miniredis time.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-session", domain.NewState("my-session", "register")))

	assert.True(t, mr.Exists("custom:app:my-session"), "expected key with custom prefix")
	assert.True(t, mr.Exists("custom:app:index"), "expected index with custom prefix")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-session")
}

func TestRedisStore_PayloadNumbersDecodeAsFloat(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	state := domain.NewState("s1", "send-money")
	state.Payload["amount"] = 500
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, float64(500), loaded.Payload["amount"])
}
