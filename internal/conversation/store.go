package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists conversations in PostgreSQL. Message content is stored
// as JSONB-encoded Genkit parts; sequence numbers give a total order per
// conversation.
//
// Safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// CreateConversation creates an empty conversation for the owner.
func (s *Store) CreateConversation(ctx context.Context, ownerID string) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	conv.Path = PathFor(conv.ID)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, owner_id, title, path, message_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 0, $5, $6)`,
		conv.ID, conv.OwnerID, conv.Title, conv.Path, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting conversation: %w", err)
	}

	s.logger.Info("conversation created", "conversation_id", conv.ID, "owner_id", ownerID)
	return conv, nil
}

// GetConversation loads an owner's conversation with its full message
// history in sequence order.
func (s *Store) GetConversation(ctx context.Context, ownerID string, id uuid.UUID) (*Conversation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, path, message_count, created_at, updated_at
		 FROM conversations WHERE owner_id = $1 AND id = $2`,
		ownerID, id)

	var conv Conversation
	err := row.Scan(&conv.ID, &conv.OwnerID, &conv.Title, &conv.Path,
		&conv.MessageCount, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, role, content, created_at
		 FROM conversation_messages
		 WHERE conversation_id = $1
		 ORDER BY sequence_number`,
		id)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg Message
		var content []byte
		if err := rows.Scan(&msg.ID, &msg.Role, &content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if err := json.Unmarshal(content, &msg.Content); err != nil {
			return nil, fmt.Errorf("decoding message content: %w", err)
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return &conv, nil
}

// ListByOwner returns the owner's conversation headers, most recently
// updated first. Message bodies are not loaded.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, title, path, message_count, created_at, updated_at
		 FROM conversations WHERE owner_id = $1 ORDER BY updated_at DESC, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []*Conversation
	for rows.Next() {
		var conv Conversation
		if err := rows.Scan(&conv.ID, &conv.OwnerID, &conv.Title, &conv.Path,
			&conv.MessageCount, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return convs, nil
}

// SaveConversation appends the unsaved messages and refreshes the
// header in one transaction. The conversation row is locked first so
// sequence numbers stay dense under concurrent writers. A conversation
// with no title gets one derived from its first user message.
func (s *Store) SaveConversation(ctx context.Context, conv *Conversation, unsaved []Message) error {
	if len(unsaved) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM conversations WHERE id = $1 FOR UPDATE`,
		conv.ID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, conv.ID)
	}
	if err != nil {
		return fmt.Errorf("locking conversation: %w", err)
	}

	var maxSeq int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence_number), -1) FROM conversation_messages WHERE conversation_id = $1`,
		conv.ID).Scan(&maxSeq)
	if err != nil {
		return fmt.Errorf("reading max sequence number: %w", err)
	}

	for i, msg := range unsaved {
		content, err := json.Marshal(msg.Content)
		if err != nil {
			return fmt.Errorf("encoding message content: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO conversation_messages (id, conversation_id, role, content, sequence_number, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			msg.ID, conv.ID, msg.Role, content, maxSeq+1+i, msg.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
	}

	if conv.Title == "" {
		conv.Title = firstUserTitle(conv.Messages)
	}
	conv.MessageCount = maxSeq + 1 + len(unsaved)
	conv.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx,
		`UPDATE conversations SET title = $2, message_count = $3, updated_at = $4 WHERE id = $1`,
		conv.ID, conv.Title, conv.MessageCount, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating conversation header: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("conversation saved",
		"conversation_id", conv.ID,
		"appended", len(unsaved),
		"total", conv.MessageCount)
	return nil
}

// DeleteConversation removes an owner's conversation and its messages.
func (s *Store) DeleteConversation(ctx context.Context, ownerID string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM conversations WHERE owner_id = $1 AND id = $2`,
		ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// firstUserTitle derives a title from the first user text message.
func firstUserTitle(msgs []Message) string {
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			if text := msg.Text(); text != "" {
				return DeriveTitle(text)
			}
		}
	}
	return ""
}
