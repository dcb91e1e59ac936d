package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConversationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id, err := s.CreateConversation(ctx, &domain.Conversation{
		Owner:        "user-1",
		Title:        "Spanish practice",
		LanguageCode: "es",
		Difficulty:   domain.LevelBeginner,
		CreatedAt:    now,
		LastActivity: now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	conv, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("user-1"), conv.Owner)
	assert.Equal(t, "es", conv.LanguageCode)
	assert.Equal(t, domain.LevelBeginner, conv.Difficulty)
	assert.Equal(t, 0, conv.TurnCount)

	later := now.Add(time.Minute)
	require.NoError(t, s.UpdateConversation(ctx, id, 2, later))

	conv, err = s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.TurnCount)
	assert.WithinDuration(t, later, conv.LastActivity, time.Second)
}

func TestConversationNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetConversation(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrConversationNotFound)

	err = s.UpdateConversation(ctx, "missing", 2, time.Now())
	require.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestTurnsOrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id, err := s.CreateConversation(ctx, &domain.Conversation{
		Owner: "user-1", Title: "French practice", LanguageCode: "fr",
		Difficulty: domain.LevelIntermediate, CreatedAt: now, LastActivity: now,
	})
	require.NoError(t, err)

	ref1, err := s.InsertTurn(ctx, &domain.Turn{
		ID: "t-1", ConversationID: id, Speaker: domain.SpeakerUser, Text: "Bonjour", CreatedAt: now,
	})
	require.NoError(t, err)
	require.NotEmpty(t, ref1)

	_, err = s.InsertTurn(ctx, &domain.Turn{
		ID: "t-2", ConversationID: id, Speaker: domain.SpeakerAssistant,
		Text: "Bonjour !", Translation: "Hello!", Tip: "Mind the liaison.",
		CreatedAt: now.Add(time.Second),
	})
	require.NoError(t, err)

	turns, err := s.ListTurnsByConversation(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, domain.TurnID("t-1"), turns[0].ID)
	assert.Equal(t, ref1, turns[0].StoreRef)
	assert.Equal(t, domain.TurnID("t-2"), turns[1].ID)
	assert.Equal(t, "Hello!", turns[1].Translation)
	assert.Equal(t, "Mind the liaison.", turns[1].Tip)
}

func TestListConversationsByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for i, owner := range []domain.UserID{"user-1", "user-1", "user-2"} {
		_, err := s.CreateConversation(ctx, &domain.Conversation{
			Owner: owner, Title: "practice", LanguageCode: "es",
			Difficulty: domain.LevelBeginner,
			CreatedAt:  now, LastActivity: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	convs, err := s.ListConversationsByOwner(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	// Newest activity first.
	assert.True(t, convs[0].LastActivity.After(convs[1].LastActivity) || convs[0].LastActivity.Equal(convs[1].LastActivity))

	convs, err = s.ListConversationsByOwner(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}
