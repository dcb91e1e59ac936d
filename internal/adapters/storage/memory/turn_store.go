package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// TurnStore is a simple in-memory implementation of domain.TurnStore.
type TurnStore struct {
	mu    sync.RWMutex
	turns map[domain.ConversationID][]*domain.Turn
}

func NewTurnStore() *TurnStore {
	return &TurnStore{
		turns: make(map[domain.ConversationID][]*domain.Turn),
	}
}

func (s *TurnStore) InsertTurn(_ context.Context, turn *domain.Turn) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy: the orchestrator keeps mutating its own turn (StoreRef)
	// after the insert acks.
	stored := *turn
	stored.StoreRef = uuid.NewString()
	s.turns[turn.ConversationID] = append(s.turns[turn.ConversationID], &stored)
	return stored.StoreRef, nil
}

func (s *TurnStore) ListTurnsByConversation(_ context.Context, id domain.ConversationID, limit int) ([]*domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[id]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]*domain.Turn, 0, len(turns))
	for _, t := range turns {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}
