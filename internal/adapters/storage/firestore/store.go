package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// Store implements domain.ConversationStore and domain.TurnStore on
// Firestore: a "conversations" collection with a "turns" subcollection per
// conversation. Record ids are assigned by Firestore.
type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) conversationDoc(id domain.ConversationID) *firestore.DocumentRef {
	return s.conversationsCol().Doc(string(id))
}

func (s *Store) turnsCol(id domain.ConversationID) *firestore.CollectionRef {
	return s.conversationDoc(id).Collection("turns")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type conversationDoc struct {
	Owner        string    `firestore:"owner"`
	Title        string    `firestore:"title"`
	LanguageCode string    `firestore:"language_code"`
	Difficulty   string    `firestore:"difficulty"`
	TurnCount    int       `firestore:"turn_count"`
	CreatedAt    time.Time `firestore:"created_at"`
	LastActivity time.Time `firestore:"last_activity"`
}

type turnDoc struct {
	// LocalID is the orchestrator's identity for the turn, kept so a resumed
	// conversation renders with stable ids.
	LocalID     string    `firestore:"local_id"`
	Speaker     string    `firestore:"speaker"`
	Text        string    `firestore:"text"`
	Translation string    `firestore:"translation"`
	Tip         string    `firestore:"tip"`
	CreatedAt   time.Time `firestore:"created_at"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) (domain.ConversationID, error) {
	doc := conversationDoc{
		Owner:        string(conv.Owner),
		Title:        conv.Title,
		LanguageCode: conv.LanguageCode,
		Difficulty:   string(conv.Difficulty),
		TurnCount:    conv.TurnCount,
		CreatedAt:    conv.CreatedAt,
		LastActivity: conv.LastActivity,
	}

	ref := s.conversationsCol().NewDoc()
	if _, err := ref.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("firestore CreateConversation: %w", err)
	}
	return domain.ConversationID(ref.ID), nil
}

func (s *Store) UpdateConversation(ctx context.Context, id domain.ConversationID, turnCount int, lastActivity domain.Timestamp) error {
	_, err := s.conversationDoc(id).Update(ctx, []firestore.Update{
		{Path: "turn_count", Value: turnCount},
		{Path: "last_activity", Value: lastActivity},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrConversationNotFound
		}
		return fmt.Errorf("firestore UpdateConversation: %w", err)
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	snap, err := s.conversationDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("firestore GetConversation: %w", err)
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetConversation decode: %w", err)
	}

	return toConversation(id, doc), nil
}

func (s *Store) ListConversationsByOwner(ctx context.Context, owner domain.UserID, limit int) ([]*domain.Conversation, error) {
	q := s.conversationsCol().Where("owner", "==", string(owner)).OrderBy("last_activity", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Conversation
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListConversationsByOwner: %w", err)
		}

		var doc conversationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode conversationDoc: %w", err)
		}

		out = append(out, toConversation(domain.ConversationID(snap.Ref.ID), doc))
	}
	return out, nil
}

// ─────────────────────────────────────────
// TurnStore implementation
// ─────────────────────────────────────────

func (s *Store) InsertTurn(ctx context.Context, turn *domain.Turn) (string, error) {
	doc := turnDoc{
		LocalID:     string(turn.ID),
		Speaker:     string(turn.Speaker),
		Text:        turn.Text,
		Translation: turn.Translation,
		Tip:         turn.Tip,
		CreatedAt:   turn.CreatedAt,
	}

	ref := s.turnsCol(turn.ConversationID).NewDoc()
	if _, err := ref.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("firestore InsertTurn: %w", err)
	}
	return ref.ID, nil
}

func (s *Store) ListTurnsByConversation(ctx context.Context, id domain.ConversationID, limit int) ([]*domain.Turn, error) {
	q := s.turnsCol(id).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Turn
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListTurnsByConversation: %w", err)
		}

		var doc turnDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode turnDoc: %w", err)
		}

		out = append(out, &domain.Turn{
			ID:             domain.TurnID(doc.LocalID),
			ConversationID: id,
			Speaker:        domain.Speaker(doc.Speaker),
			Text:           doc.Text,
			Translation:    doc.Translation,
			Tip:            doc.Tip,
			CreatedAt:      doc.CreatedAt,
			StoreRef:       snap.Ref.ID,
		})
	}
	return out, nil
}

func toConversation(id domain.ConversationID, doc conversationDoc) *domain.Conversation {
	return &domain.Conversation{
		ID:           id,
		Owner:        domain.UserID(doc.Owner),
		Title:        doc.Title,
		LanguageCode: doc.LanguageCode,
		Difficulty:   domain.ProficiencyLevel(doc.Difficulty),
		TurnCount:    doc.TurnCount,
		CreatedAt:    doc.CreatedAt,
		LastActivity: doc.LastActivity,
	}
}
