package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// ConversationStore is a simple in-memory implementation of
// domain.ConversationStore. It is NOT persistent and is only suitable for
// development / local mode.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domain.ConversationID]*domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.ConversationID]*domain.Conversation),
	}
}

func (s *ConversationStore) CreateConversation(_ context.Context, conv *domain.Conversation) (domain.ConversationID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := domain.ConversationID(uuid.NewString())
	stored := *conv
	stored.ID = id
	s.conversations[id] = &stored
	return id, nil
}

func (s *ConversationStore) UpdateConversation(_ context.Context, id domain.ConversationID, turnCount int, lastActivity domain.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return domain.ErrConversationNotFound
	}
	conv.TurnCount = turnCount
	conv.LastActivity = lastActivity
	return nil
}

func (s *ConversationStore) GetConversation(_ context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}

	out := *conv
	return &out, nil
}

func (s *ConversationStore) ListConversationsByOwner(_ context.Context, owner domain.UserID, limit int) ([]*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Conversation
	for _, conv := range s.conversations {
		if conv.Owner == owner {
			c := *conv
			out = append(out, &c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
