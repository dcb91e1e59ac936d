package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// ─────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────

type convUpdate struct {
	id        domain.ConversationID
	turnCount int
}

type fakeConvStore struct {
	mu        sync.Mutex
	createErr error
	updateErr error
	created   []*domain.Conversation
	updates   []convUpdate
}

func (f *fakeConvStore) CreateConversation(_ context.Context, conv *domain.Conversation) (domain.ConversationID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, conv)
	return "conv-1", nil
}

func (f *fakeConvStore) UpdateConversation(_ context.Context, id domain.ConversationID, turnCount int, _ domain.Timestamp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, convUpdate{id: id, turnCount: turnCount})
	return nil
}

func (f *fakeConvStore) GetConversation(_ context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	return nil, domain.ErrConversationNotFound
}

func (f *fakeConvStore) ListConversationsByOwner(_ context.Context, _ domain.UserID, _ int) ([]*domain.Conversation, error) {
	return nil, nil
}

type fakeTurnStore struct {
	mu        sync.Mutex
	insertErr error
	inserted  []*domain.Turn
}

func (f *fakeTurnStore) InsertTurn(_ context.Context, turn *domain.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, turn)
	return "ref-" + string(turn.ID), nil
}

func (f *fakeTurnStore) ListTurnsByConversation(_ context.Context, _ domain.ConversationID, _ int) ([]*domain.Turn, error) {
	return nil, nil
}

func (f *fakeTurnStore) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeTutor struct {
	mu      sync.Mutex
	calls   int
	replyFn func(ctx context.Context, req domain.TutorRequest) (*domain.TutorReply, error)
}

func (f *fakeTutor) Reply(ctx context.Context, req domain.TutorRequest) (*domain.TutorReply, error) {
	f.mu.Lock()
	f.calls++
	fn := f.replyFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &domain.TutorReply{Response: "¿Qué tal?", Translation: "How's it going?"}, nil
}

func (f *fakeTutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// newTestSession builds a session with a synchronous persistence executor and
// a fixed clock, so tests observe fire-and-forget writes deterministically.
func newTestSession(tutor domain.TutorClient) (*Session, *fakeConvStore, *fakeTurnStore) {
	convStore := &fakeConvStore{}
	turnStore := &fakeTurnStore{}
	s := New(convStore, turnStore, tutor)
	s.persist = func(fn func()) { fn() }
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, convStore, turnStore
}

func spanish(t *testing.T) domain.Language {
	t.Helper()
	lang, ok := domain.LanguageByCode("es")
	require.True(t, ok)
	return lang
}

// ─────────────────────────────────────────────
// Initialize
// ─────────────────────────────────────────────

func TestInitializeSeedsGreetingWithoutPersistingIt(t *testing.T) {
	s, convStore, turnStore := newTestSession(&fakeTutor{})

	err := s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Turns, 1)
	greeting := snap.Turns[0]
	assert.Equal(t, domain.SpeakerAssistant, greeting.Speaker)
	assert.True(t, greeting.Synthetic)
	assert.Equal(t, "¡Hola! ¿Listo para practicar español?", greeting.Text)
	assert.Equal(t, "Hello! Ready to practice Spanish?", greeting.Translation)

	// The greeting is presentation-only: zero inserts.
	assert.Equal(t, 0, turnStore.insertCount())

	require.Len(t, convStore.created, 1)
	created := convStore.created[0]
	assert.Equal(t, domain.UserID("user-1"), created.Owner)
	assert.Equal(t, "es", created.LanguageCode)
	assert.Equal(t, domain.LevelBeginner, created.Difficulty)
	assert.Equal(t, "Spanish practice", created.Title)
	assert.Equal(t, domain.ConversationID("conv-1"), snap.Conversation.ID)
}

func TestInitializeFailureLatchesSession(t *testing.T) {
	tutor := &fakeTutor{}
	s, convStore, turnStore := newTestSession(tutor)
	convStore.createErr = errors.New("store down")

	err := s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner)
	require.Error(t, err)

	// Submitting on a failed session is a silent no-op.
	s.Submit(context.Background(), "Hola")
	assert.Equal(t, 0, tutor.callCount())
	assert.Equal(t, 0, turnStore.insertCount())
	assert.Empty(t, s.Snapshot().Turns)

	// Re-initializing a latched session is rejected too.
	convStore.createErr = nil
	require.ErrorIs(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner), ErrAlreadyInitialized)
}

// ─────────────────────────────────────────────
// Submit
// ─────────────────────────────────────────────

func TestSubmitAppendsUserTurnBeforeTutorReturns(t *testing.T) {
	var observed Snapshot
	tutor := &fakeTutor{}
	s, _, _ := newTestSession(tutor)
	tutor.replyFn = func(_ context.Context, _ domain.TutorRequest) (*domain.TutorReply, error) {
		observed = s.Snapshot()
		return &domain.TutorReply{Response: "Hola", Translation: "Hello"}, nil
	}

	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner))
	s.Submit(context.Background(), "Hola")

	// While the tutor call was in flight the user turn was already visible
	// and the session reported a pending exchange.
	require.Len(t, observed.Turns, 2)
	assert.Equal(t, domain.SpeakerUser, observed.Turns[1].Speaker)
	assert.Equal(t, "Hola", observed.Turns[1].Text)
	assert.True(t, observed.AwaitingReply)
}

func TestSubmitSuccessfulExchange(t *testing.T) {
	tutor := &fakeTutor{
		replyFn: func(_ context.Context, _ domain.TutorRequest) (*domain.TutorReply, error) {
			return &domain.TutorReply{Response: "Hola", Translation: "Hello", Tip: "Use formal greetings"}, nil
		},
	}
	s, convStore, turnStore := newTestSession(tutor)
	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner))

	s.Submit(context.Background(), "Hola")

	snap := s.Snapshot()
	require.Len(t, snap.Turns, 3) // greeting, user, assistant
	assert.False(t, snap.AwaitingReply)

	assistant := snap.Turns[2]
	assert.Equal(t, domain.SpeakerAssistant, assistant.Speaker)
	assert.Equal(t, "Hola", assistant.Text)
	assert.Equal(t, "Hello", assistant.Translation)
	assert.Equal(t, "Use formal greetings", assistant.Tip)
	assert.False(t, assistant.Synthetic)

	// turnCount moves by exactly 2 and is mirrored to the store.
	assert.Equal(t, 2, snap.Conversation.TurnCount)
	require.Len(t, convStore.updates, 1)
	assert.Equal(t, convUpdate{id: "conv-1", turnCount: 2}, convStore.updates[0])

	// Both real turns were inserted and got their store back-reference.
	require.Equal(t, 2, turnStore.insertCount())
	assert.NotEmpty(t, snap.Turns[1].StoreRef)
	assert.NotEmpty(t, snap.Turns[2].StoreRef)
}

func TestSubmitTutorFailureAppendsApology(t *testing.T) {
	tutor := &fakeTutor{
		replyFn: func(_ context.Context, _ domain.TutorRequest) (*domain.TutorReply, error) {
			return nil, errors.New("inference unavailable")
		},
	}
	s, convStore, turnStore := newTestSession(tutor)
	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner))

	s.Submit(context.Background(), "Hola")

	snap := s.Snapshot()
	require.Len(t, snap.Turns, 3) // greeting, user, apology
	assert.False(t, snap.AwaitingReply)

	apology := snap.Turns[2]
	assert.True(t, apology.Synthetic)
	assert.Equal(t, apologyMessage, apology.Text)
	assert.Equal(t, apologyMessage, apology.Translation)
	assert.Empty(t, apology.Tip)

	// Only the user turn was persisted; no counter update on a failed exchange.
	assert.Equal(t, 1, turnStore.insertCount())
	assert.Equal(t, domain.SpeakerUser, turnStore.inserted[0].Speaker)
	assert.Empty(t, convStore.updates)
	assert.Equal(t, 0, snap.Conversation.TurnCount)

	// The session is immediately usable again.
	tutor.replyFn = nil
	s.Submit(context.Background(), "¿Hola?")
	assert.Len(t, s.Snapshot().Turns, 5)
}

func TestSubmitNoOpGuards(t *testing.T) {
	tutor := &fakeTutor{}
	s, _, turnStore := newTestSession(tutor)

	// Before Initialize.
	s.Submit(context.Background(), "Hola")
	assert.Equal(t, 0, tutor.callCount())

	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner))

	// Empty and whitespace-only text.
	s.Submit(context.Background(), "")
	s.Submit(context.Background(), "   \n\t")
	assert.Equal(t, 0, tutor.callCount())
	assert.Equal(t, 0, turnStore.insertCount())
	assert.Len(t, s.Snapshot().Turns, 1)
}

func TestSubmitWhileAwaitingIsDropped(t *testing.T) {
	tutor := &fakeTutor{}
	s, _, _ := newTestSession(tutor)
	tutor.replyFn = func(_ context.Context, _ domain.TutorRequest) (*domain.TutorReply, error) {
		// A second submit arriving while the first exchange is in flight
		// must be dropped, not queued.
		s.Submit(context.Background(), "second")
		return &domain.TutorReply{Response: "Hola", Translation: "Hello"}, nil
	}

	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner))
	s.Submit(context.Background(), "first")

	assert.Equal(t, 1, tutor.callCount())
	snap := s.Snapshot()
	require.Len(t, snap.Turns, 3)
	assert.Equal(t, "first", snap.Turns[1].Text)
}

func TestSubmitHistoryExcludesSyntheticTurns(t *testing.T) {
	var captured domain.TutorRequest
	tutor := &fakeTutor{
		replyFn: func(_ context.Context, req domain.TutorRequest) (*domain.TutorReply, error) {
			captured = req
			return &domain.TutorReply{Response: "Bien", Translation: "Good"}, nil
		},
	}
	s, _, _ := newTestSession(tutor)
	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelIntermediate))

	s.Submit(context.Background(), "¿Cómo estás?")

	// The greeting never reaches the tutor; the new user turn does.
	require.Len(t, captured.History, 1)
	assert.Equal(t, domain.TutorMessage{Speaker: domain.SpeakerUser, Text: "¿Cómo estás?"}, captured.History[0])
	assert.Equal(t, "es", captured.LanguageCode)
	assert.Equal(t, "Spanish", captured.LanguageName)
	assert.Equal(t, domain.LevelIntermediate, captured.ProficiencyLevel)
}

func TestSubmitSurvivesPersistenceFailures(t *testing.T) {
	s, convStore, turnStore := newTestSession(&fakeTutor{})
	turnStore.insertErr = errors.New("write rejected")
	convStore.updateErr = errors.New("write rejected")

	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner))
	s.Submit(context.Background(), "Hola")

	// Failed writes are swallowed: the exchange still completed in memory.
	snap := s.Snapshot()
	require.Len(t, snap.Turns, 3)
	assert.Equal(t, 2, snap.Conversation.TurnCount)
	assert.Empty(t, snap.Turns[1].StoreRef)
	assert.Empty(t, snap.Turns[2].StoreRef)
}

func TestScenarioSpanishBeginnerExchange(t *testing.T) {
	tutor := &fakeTutor{
		replyFn: func(_ context.Context, _ domain.TutorRequest) (*domain.TutorReply, error) {
			return &domain.TutorReply{Response: "¡Hola! ¿Cómo te llamas?", Translation: "Hello! What's your name?"}, nil
		},
	}
	s, _, _ := newTestSession(tutor)

	require.NoError(t, s.Initialize(context.Background(), "user-1", spanish(t), domain.LevelBeginner))
	s.Submit(context.Background(), "Hola")

	snap := s.Snapshot()
	require.Len(t, snap.Turns, 3)
	assert.True(t, snap.Turns[0].Synthetic)
	assert.Equal(t, domain.SpeakerUser, snap.Turns[1].Speaker)
	assert.Equal(t, "Hola", snap.Turns[1].Text)
	assert.Equal(t, domain.SpeakerAssistant, snap.Turns[2].Speaker)
	assert.Equal(t, "¡Hola! ¿Cómo te llamas?", snap.Turns[2].Text)
	assert.Equal(t, 2, snap.Conversation.TurnCount)
}
