package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

func TestConversationStoreAssignsIDs(t *testing.T) {
	s := NewConversationStore()
	ctx := context.Background()
	now := time.Now()

	id, err := s.CreateConversation(ctx, &domain.Conversation{
		Owner: "user-1", LanguageCode: "es", Difficulty: domain.LevelBeginner,
		CreatedAt: now, LastActivity: now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.UpdateConversation(ctx, id, 4, now.Add(time.Minute)))

	conv, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, conv.TurnCount)

	require.ErrorIs(t, s.UpdateConversation(ctx, "missing", 2, now), domain.ErrConversationNotFound)
}

func TestTurnStoreReturnsCopies(t *testing.T) {
	s := NewTurnStore()
	ctx := context.Background()

	turn := &domain.Turn{ID: "t-1", ConversationID: "c-1", Speaker: domain.SpeakerUser, Text: "Hola"}
	ref, err := s.InsertTurn(ctx, turn)
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	// Mutating the caller's turn after the insert must not change the record.
	turn.Text = "changed"

	turns, err := s.ListTurnsByConversation(ctx, "c-1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "Hola", turns[0].Text)
	assert.Equal(t, ref, turns[0].StoreRef)
}

func TestListConversationsByOwnerOrderAndLimit(t *testing.T) {
	s := NewConversationStore()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 3; i++ {
		_, err := s.CreateConversation(ctx, &domain.Conversation{
			Owner: "user-1", LanguageCode: "es", Difficulty: domain.LevelBeginner,
			CreatedAt: base, LastActivity: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	convs, err := s.ListConversationsByOwner(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.True(t, convs[0].LastActivity.After(convs[1].LastActivity))
}
