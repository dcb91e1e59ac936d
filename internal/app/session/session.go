package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-labs/lingua-agent/internal/domain"
	"github.com/lingua-labs/lingua-agent/internal/observability"
)

// apologyMessage is appended as a synthetic assistant turn when the tutor
// call fails. It is used as both text and translation and is never persisted.
const apologyMessage = "Sorry, I'm having trouble responding right now. Please try again."

// State tracks the session lifecycle. A session moves Uninitialized → Ready,
// bounces Ready ⇄ AwaitingReply once per exchange, and lands in FailedInit
// (terminal) only when Initialize cannot create the conversation record.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateAwaitingReply
	StateFailedInit
)

// ErrAlreadyInitialized is returned when Initialize is called on a session
// that already holds a conversation.
var ErrAlreadyInitialized = errors.New("session already initialized")

// Session owns one active conversation: its in-memory turn sequence, the
// in-flight guard, and the sequencing of user input against the tutor call.
// The in-memory sequence is the single source of truth for rendering; the
// record store holds a best-effort durable copy that is written to but never
// read back from while the session is live.
type Session struct {
	convStore domain.ConversationStore
	turnStore domain.TurnStore
	tutor     domain.TutorClient
	now       func() time.Time

	// persist runs fire-and-forget persistence work. The default spawns a
	// goroutine; tests swap in a synchronous executor.
	persist func(fn func())

	mu       sync.Mutex
	state    State
	conv     *domain.Conversation
	language domain.Language
	turns    []*domain.Turn
}

func New(convStore domain.ConversationStore, turnStore domain.TurnStore, tutor domain.TutorClient) *Session {
	return &Session{
		convStore: convStore,
		turnStore: turnStore,
		tutor:     tutor,
		now:       time.Now,
		persist:   func(fn func()) { go fn() },
		state:     StateUninitialized,
	}
}

// Restore rebuilds a Ready session from records loaded out of the store. It
// is used for resuming a conversation that is not currently live; the stored
// turns become the in-memory sequence as-is (the greeting was synthetic and
// was never stored, so it does not reappear).
func Restore(
	convStore domain.ConversationStore,
	turnStore domain.TurnStore,
	tutor domain.TutorClient,
	conv *domain.Conversation,
	language domain.Language,
	turns []*domain.Turn,
) *Session {
	s := New(convStore, turnStore, tutor)
	s.conv = conv
	s.language = language
	s.turns = turns
	s.state = StateReady
	return s
}

// Initialize creates the conversation record and seeds the greeting turn.
// The create is the one persistence call the session blocks on: without a
// store-assigned id no turns can be submitted, so a failure here latches the
// session in a terminal failed state and is returned to the caller.
func (s *Session) Initialize(ctx context.Context, owner domain.UserID, language domain.Language, level domain.ProficiencyLevel) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.mu.Unlock()

	log := observability.LoggerFromContext(ctx).With(
		"owner", owner,
		"language", language.Code,
		"level", level,
	)
	log.Info("initializing session")

	now := s.now()
	conv := &domain.Conversation{
		Owner:        owner,
		Title:        language.Name + " practice",
		LanguageCode: language.Code,
		Difficulty:   level,
		CreatedAt:    now,
		LastActivity: now,
	}

	id, err := s.convStore.CreateConversation(ctx, conv)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailedInit
		s.mu.Unlock()
		log.Error("failed to create conversation", "error", err)
		return err
	}
	conv.ID = id

	greeting := &domain.Turn{
		ID:             newTurnID(),
		ConversationID: id,
		Speaker:        domain.SpeakerAssistant,
		Text:           language.Greeting,
		Translation:    language.GreetingGloss,
		CreatedAt:      now,
		Synthetic:      true,
	}

	s.mu.Lock()
	s.conv = conv
	s.language = language
	s.turns = []*domain.Turn{greeting}
	s.state = StateReady
	s.mu.Unlock()

	log.Info("session initialized", "conversation_id", id)
	return nil
}

// Submit runs one exchange: optimistic user-turn append, tutor call,
// assistant-turn append, best-effort persistence of both turns and the
// conversation counters. Empty text, an uninitialized session, or an exchange
// already in flight make it a no-op, which drops duplicate submissions
// instead of queuing them.
func (s *Session) Submit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}

	// The user turn is appended before any network interaction so a snapshot
	// taken right after Submit starts already shows it.
	userTurn := &domain.Turn{
		ID:             newTurnID(),
		ConversationID: s.conv.ID,
		Speaker:        domain.SpeakerUser,
		Text:           text,
		CreatedAt:      s.now(),
	}
	s.turns = append(s.turns, userTurn)
	s.state = StateAwaitingReply
	req := s.tutorRequestLocked()
	convID := s.conv.ID
	s.mu.Unlock()

	// Unconditional guard release: whatever happens below, the session never
	// stays stuck in AwaitingReply.
	defer func() {
		s.mu.Lock()
		s.state = StateReady
		s.mu.Unlock()
	}()

	log := observability.LoggerFromContext(ctx).With("conversation_id", convID)

	s.persistTurn(userTurn)

	reply, err := s.tutor.Reply(ctx, req)
	if err != nil {
		log.Warn("tutor call failed", "error", err)
		s.appendSynthetic(apologyMessage, apologyMessage)
		return
	}

	assistant := &domain.Turn{
		ID:             newTurnID(),
		ConversationID: convID,
		Speaker:        domain.SpeakerAssistant,
		Text:           reply.Response,
		Translation:    reply.Translation,
		Tip:            reply.Tip,
		CreatedAt:      s.now(),
	}

	s.mu.Lock()
	s.turns = append(s.turns, assistant)
	s.conv.TurnCount += 2
	s.conv.LastActivity = s.now()
	turnCount := s.conv.TurnCount
	lastActivity := s.conv.LastActivity
	s.mu.Unlock()

	s.persistTurn(assistant)
	s.persist(func() {
		if err := s.convStore.UpdateConversation(context.Background(), convID, turnCount, lastActivity); err != nil {
			observability.Logger().Warn("conversation update not persisted",
				"conversation_id", convID,
				"error", err)
		}
	})

	log.Info("exchange completed", "turn_count", turnCount)
}

// Snapshot is what the presentation layer renders: value copies only, so the
// caller can never mutate the session's sequence.
type Snapshot struct {
	Conversation  domain.Conversation
	Language      domain.Language
	Turns         []domain.Turn
	AwaitingReply bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]domain.Turn, len(s.turns))
	for i, t := range s.turns {
		turns[i] = *t
	}

	snap := Snapshot{
		Language:      s.language,
		Turns:         turns,
		AwaitingReply: s.state == StateAwaitingReply,
	}
	if s.conv != nil {
		snap.Conversation = *s.conv
	}
	return snap
}

// tutorRequestLocked reduces the real (non-synthetic) turns to speaker/text
// pairs. Callers must hold s.mu.
func (s *Session) tutorRequestLocked() domain.TutorRequest {
	history := make([]domain.TutorMessage, 0, len(s.turns))
	for _, t := range s.turns {
		if t.Synthetic {
			continue
		}
		history = append(history, domain.TutorMessage{Speaker: t.Speaker, Text: t.Text})
	}
	return domain.TutorRequest{
		History:          history,
		LanguageCode:     s.language.Code,
		LanguageName:     s.language.Name,
		ProficiencyLevel: s.conv.Difficulty,
	}
}

// persistTurn writes a turn to the record store without blocking the
// exchange. The write is detached from the request context: the request may
// be long gone by the time it lands, and its failure is logged and swallowed.
// On ack the store's id is kept as a back-reference only; the local id stays
// the turn's identity.
func (s *Session) persistTurn(turn *domain.Turn) {
	s.persist(func() {
		ref, err := s.turnStore.InsertTurn(context.Background(), turn)
		if err != nil {
			observability.Logger().Warn("turn not persisted",
				"conversation_id", turn.ConversationID,
				"turn_id", turn.ID,
				"error", err)
			return
		}
		s.mu.Lock()
		turn.StoreRef = ref
		s.mu.Unlock()
	})
}

func (s *Session) appendSynthetic(text, translation string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, &domain.Turn{
		ID:             newTurnID(),
		ConversationID: s.conv.ID,
		Speaker:        domain.SpeakerAssistant,
		Text:           text,
		Translation:    translation,
		CreatedAt:      s.now(),
		Synthetic:      true,
	})
}

func newTurnID() domain.TurnID {
	return domain.TurnID(uuid.NewString())
}
