package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// Store implements domain.ConversationStore and domain.TurnStore on a local
// SQLite database. Suitable for local mode where Firestore is not available.
type Store struct {
	db   *sql.DB
	path string
}

var _ domain.ConversationStore = (*Store)(nil)
var _ domain.TurnStore = (*Store)(nil)

func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "lingua.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		title TEXT NOT NULL,
		language_code TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		turn_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		last_activity DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner, last_activity DESC);

	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		local_id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		speaker TEXT NOT NULL,
		text TEXT NOT NULL,
		translation TEXT,
		tip TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Conversation operations

func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) (domain.ConversationID, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, owner, title, language_code, difficulty, turn_count, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, conv.Owner, conv.Title, conv.LanguageCode, conv.Difficulty, conv.TurnCount, conv.CreatedAt, conv.LastActivity)
	if err != nil {
		return "", fmt.Errorf("sqlite CreateConversation: %w", err)
	}
	return domain.ConversationID(id), nil
}

func (s *Store) UpdateConversation(ctx context.Context, id domain.ConversationID, turnCount int, lastActivity domain.Timestamp) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET turn_count = ?, last_activity = ? WHERE id = ?
	`, turnCount, lastActivity, id)
	if err != nil {
		return fmt.Errorf("sqlite UpdateConversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id domain.ConversationID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner, title, language_code, difficulty, turn_count, created_at, last_activity
		FROM conversations WHERE id = ?
	`, id).Scan(&conv.ID, &conv.Owner, &conv.Title, &conv.LanguageCode, &conv.Difficulty, &conv.TurnCount, &conv.CreatedAt, &conv.LastActivity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("sqlite GetConversation: %w", err)
	}
	return &conv, nil
}

func (s *Store) ListConversationsByOwner(ctx context.Context, owner domain.UserID, limit int) ([]*domain.Conversation, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, title, language_code, difficulty, turn_count, created_at, last_activity
		FROM conversations WHERE owner = ? ORDER BY last_activity DESC LIMIT ?
	`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListConversationsByOwner: %w", err)
	}
	defer rows.Close()

	var out []*domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(&conv.ID, &conv.Owner, &conv.Title, &conv.LanguageCode, &conv.Difficulty, &conv.TurnCount, &conv.CreatedAt, &conv.LastActivity); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, &conv)
	}
	return out, rows.Err()
}

// Turn operations

func (s *Store) InsertTurn(ctx context.Context, turn *domain.Turn) (string, error) {
	ref := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (id, local_id, conversation_id, speaker, text, translation, tip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ref, turn.ID, turn.ConversationID, turn.Speaker, turn.Text, turn.Translation, turn.Tip, turn.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("sqlite InsertTurn: %w", err)
	}
	return ref, nil
}

func (s *Store) ListTurnsByConversation(ctx context.Context, id domain.ConversationID, limit int) ([]*domain.Turn, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, local_id, speaker, text, translation, tip, created_at
		FROM turns WHERE conversation_id = ? ORDER BY created_at ASC LIMIT ?
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListTurnsByConversation: %w", err)
	}
	defer rows.Close()

	var out []*domain.Turn
	for rows.Next() {
		var (
			turn        domain.Turn
			translation sql.NullString
			tip         sql.NullString
		)
		if err := rows.Scan(&turn.StoreRef, &turn.ID, &turn.Speaker, &turn.Text, &translation, &tip, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.ConversationID = id
		turn.Translation = translation.String
		turn.Tip = tip.String
		out = append(out, &turn)
	}
	return out, rows.Err()
}
