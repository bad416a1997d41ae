package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "send-money")
		state.CurrentIndex = 2
		state.Status = domain.StatusError
		state.History = []int{0, 1, 2}
		state.Attempt = 3
		state.LastError = "payment declined"
		state.Payload["recipient"] = "Rahul"
		state.Payload["amount"] = 500

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "send-money", loaded.Flow)
		assert.Equal(t, 2, loaded.CurrentIndex)
		assert.Equal(t, domain.StatusError, loaded.Status)
		assert.Equal(t, []int{0, 1, 2}, loaded.History)
		assert.Equal(t, uint64(3), loaded.Attempt)
		assert.Equal(t, "payment declined", loaded.LastError)
		assert.Equal(t, "Rahul", loaded.Payload["recipient"])
		// Serializing stores may turn ints into float64 or json.Number.
		assert.NotNil(t, loaded.Payload["amount"])
	})

	t.Run("Loaded State Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Payload["recipient"] = "Mom"
		loaded.History = append(loaded.History, 3)

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Rahul", again.Payload["recipient"])
		assert.Equal(t, []int{0, 1, 2}, again.History)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "send-money"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "loan-apply"))
		_ = store.Save(ctx, id2, domain.NewState(id2, "register"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
