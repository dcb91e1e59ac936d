package session

import (
	"context"
	"errors"
	"sync"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// ErrUnknownLanguage is returned by Open for language codes not in the catalog.
var ErrUnknownLanguage = errors.New("unknown language code")

// Manager keeps the live sessions, one per conversation. Sessions not in the
// registry can be resumed from the record store; live sessions are never
// rebuilt from stored records.
type Manager struct {
	convStore domain.ConversationStore
	turnStore domain.TurnStore
	tutor     domain.TutorClient

	mu   sync.Mutex
	live map[domain.ConversationID]*Session
}

func NewManager(convStore domain.ConversationStore, turnStore domain.TurnStore, tutor domain.TutorClient) *Manager {
	return &Manager{
		convStore: convStore,
		turnStore: turnStore,
		tutor:     tutor,
		live:      make(map[domain.ConversationID]*Session),
	}
}

// Open creates and initializes a new session for the given language. A failed
// initialization is returned to the caller and the session is not registered.
func (m *Manager) Open(ctx context.Context, owner domain.UserID, languageCode string, level domain.ProficiencyLevel) (*Session, error) {
	language, ok := domain.LanguageByCode(languageCode)
	if !ok {
		return nil, ErrUnknownLanguage
	}

	s := New(m.convStore, m.turnStore, m.tutor)
	if err := s.Initialize(ctx, owner, language, level); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.live[s.conv.ID] = s
	m.mu.Unlock()

	return s, nil
}

// Get returns the live session for a conversation, if any.
func (m *Manager) Get(id domain.ConversationID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live[id]
	return s, ok
}

// Resume returns the live session for a conversation or rebuilds one from the
// record store. Loading happens before the session goes live, so the rule
// that a live session never reads back from the store holds.
func (m *Manager) Resume(ctx context.Context, id domain.ConversationID) (*Session, error) {
	if s, ok := m.Get(id); ok {
		return s, nil
	}

	conv, err := m.convStore.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	language, ok := domain.LanguageByCode(conv.LanguageCode)
	if !ok {
		return nil, ErrUnknownLanguage
	}

	turns, err := m.turnStore.ListTurnsByConversation(ctx, id, 0)
	if err != nil {
		return nil, err
	}

	s := Restore(m.convStore, m.turnStore, m.tutor, conv, language, turns)

	m.mu.Lock()
	// Another request may have resumed the same conversation meanwhile; keep
	// the registered one so there is a single owner of the turn sequence.
	if existing, ok := m.live[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.live[id] = s
	m.mu.Unlock()

	return s, nil
}

// ListByOwner lists stored conversations for a user, newest first.
func (m *Manager) ListByOwner(ctx context.Context, owner domain.UserID, limit int) ([]*domain.Conversation, error) {
	return m.convStore.ListConversationsByOwner(ctx, owner, limit)
}
