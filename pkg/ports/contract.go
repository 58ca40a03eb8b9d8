package ports

import (
	"context"
	"testing"
	"time"

	"github.com/airband-io/airband/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests verifying that a
// SessionStore implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, "ifr-clearance")
		session.CurrentNodeID = "start"
		session.Phase = domain.PhaseAwaitingAck
		session.Transcript = domain.Transcript{
			{Speaker: "ATC", Role: domain.RoleATC, Text: "N123AB, cleared to land runway 27.", Timestamp: time.Now().UTC()},
		}
		session.Visited = []string{"start"}
		session.HistoryByNode["start"] = domain.Transcript{}
		session.EvalSeq = 3
		session.Pending = &domain.EvalTicket{NodeID: "start", Seq: 3}

		err := store.Save(ctx, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, session.Phase, loaded.Phase)
		assert.Equal(t, session.EvalSeq, loaded.EvalSeq)
		require.Len(t, loaded.Transcript, 1)
		assert.Equal(t, "N123AB, cleared to land runway 27.", loaded.Transcript[0].Text)
		require.NotNil(t, loaded.Pending)
		assert.Equal(t, uint64(3), loaded.Pending.Seq)
	})

	t.Run("Isolation", func(t *testing.T) {
		session := domain.NewSession(sessionID+"-iso", "ifr-clearance")
		session.Visited = []string{"start"}
		require.NoError(t, store.Save(ctx, session))

		// Mutating the saved value must not leak into the store.
		session.Visited = append(session.Visited, "ask")

		loaded, err := store.Load(ctx, sessionID+"-iso")
		require.NoError(t, err)
		assert.Equal(t, []string{"start"}, loaded.Visited)

		_ = store.Delete(ctx, sessionID+"-iso")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, "ifr-clearance")))

		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, domain.NewSession(id1, "ifr-clearance"))
		_ = store.Save(ctx, domain.NewSession(id2, "ifr-clearance"))

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
