package preferences_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/novapay/pkg/preferences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpdateAndSubscribe(t *testing.T) {
	store := preferences.NewStore(preferences.Preferences{})
	assert.Equal(t, preferences.Default(), store.Get())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := store.Subscribe(ctx)

	got, err := store.Update(func(p *preferences.Preferences) {
		p.Authenticated = true
		p.Theme = preferences.ThemeDark
	})
	require.NoError(t, err)
	assert.True(t, got.Authenticated)

	select {
	case p := <-changes:
		assert.Equal(t, preferences.ThemeDark, p.Theme)
	case <-time.After(time.Second):
		t.Fatal("subscriber not notified")
	}
}

func TestStore_SlowSubscriberSeesLatest(t *testing.T) {
	store := preferences.NewStore(preferences.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := store.Subscribe(ctx)

	for _, collapsed := range []bool{true, false, true} {
		_, err := store.Update(func(p *preferences.Preferences) { p.SidebarCollapsed = collapsed })
		require.NoError(t, err)
	}

	p := <-changes
	assert.True(t, p.SidebarCollapsed)
}

func TestStore_RejectsInvalidTheme(t *testing.T) {
	store := preferences.NewStore(preferences.Default())
	_, err := store.Update(func(p *preferences.Preferences) { p.Theme = "neon" })
	assert.Error(t, err)
	assert.Equal(t, preferences.ThemeSystem, store.Get().Theme)
}

func TestStore_SubscriptionEndsWithContext(t *testing.T) {
	store := preferences.NewStore(preferences.Default())
	ctx, cancel := context.WithCancel(context.Background())
	changes := store.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestContextInjection(t *testing.T) {
	assert.Nil(t, preferences.FromContext(context.Background()))

	store := preferences.NewStore(preferences.Default())
	ctx := preferences.WithStore(context.Background(), store)
	assert.Same(t, store, preferences.FromContext(ctx))
}
