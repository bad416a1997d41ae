package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/novapay/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Load(ctx, sid)
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	t.Logf("Sessions touched: %d, Locks remaining: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}

func TestManager_InflightIsUntracked(t *testing.T) {
	mgr := NewManager(&MockStore{})
	cancelled := false

	mgr.track("s1", 1, func() { cancelled = true })
	mgr.untrack("s1", 2)
	if _, ok := mgr.inflight["s1"]; !ok {
		t.Fatal("untrack with a stale attempt must keep the newer entry")
	}

	mgr.abort("s1")
	if !cancelled {
		t.Error("abort should cancel the in-flight context")
	}
	if len(mgr.inflight) != 0 {
		t.Errorf("expected no in-flight entries, got %d", len(mgr.inflight))
	}
}
