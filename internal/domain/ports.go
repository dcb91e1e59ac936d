package domain

import (
	"context"
	"errors"
)

// ErrConversationNotFound is returned by stores when a conversation id is unknown.
var ErrConversationNotFound = errors.New("conversation not found")

// TutorMessage is one history entry sent to the tutor: speaker and text only.
type TutorMessage struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// TutorRequest carries the full ordered history of real turns plus the
// conversation's language context.
type TutorRequest struct {
	History          []TutorMessage   `json:"history"`
	LanguageCode     string           `json:"languageCode"`
	LanguageName     string           `json:"languageName"`
	ProficiencyLevel ProficiencyLevel `json:"proficiencyLevel"`
}

// TutorReply is the structured reply from the tutor. Tip is optional and
// empty when the tutor has nothing to add.
type TutorReply struct {
	Response    string `json:"response"`
	Translation string `json:"translation"`
	Tip         string `json:"tip,omitempty"`
}

// TutorClient defines how the session orchestrator talks to the inference service.
type TutorClient interface {
	Reply(ctx context.Context, req TutorRequest) (*TutorReply, error)
}

// ConversationStore defines conversation record persistence.
type ConversationStore interface {
	// CreateConversation stores a new record and returns the id the store
	// assigned to it.
	CreateConversation(ctx context.Context, conv *Conversation) (ConversationID, error)
	// UpdateConversation mirrors the orchestrator-owned counter and activity
	// timestamp to the stored record.
	UpdateConversation(ctx context.Context, id ConversationID, turnCount int, lastActivity Timestamp) error
	GetConversation(ctx context.Context, id ConversationID) (*Conversation, error)
	ListConversationsByOwner(ctx context.Context, owner UserID, limit int) ([]*Conversation, error)
}

// TurnStore defines turn record persistence.
type TurnStore interface {
	// InsertTurn stores a turn and returns the store's identifier for it.
	InsertTurn(ctx context.Context, turn *Turn) (string, error)
	ListTurnsByConversation(ctx context.Context, id ConversationID, limit int) ([]*Turn, error)
}
