package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docuchat/backend/internal/models"
)

// MessagesRepository handles data access for the append-only messages table.
type MessagesRepository struct {
	db *pgxpool.Pool
}

// NewMessagesRepository creates a new messages repository.
func NewMessagesRepository(db *pgxpool.Pool) *MessagesRepository {
	return &MessagesRepository{db: db}
}

// Append inserts one message. Messages are never updated or deleted.
func (r *MessagesRepository) Append(ctx context.Context, message *models.Message) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.Must(uuid.NewV7())
	}

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (id, user_id, document_id, question, answer, context_snapshot,
			qa_match_count, chunk_match_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		message.ID, message.UserID, message.DocumentID, message.Question, message.Answer,
		message.ContextSnapshot, message.QAMatchCount, message.ChunkMatchCount, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	return nil
}

// ListByUser returns the user's messages, newest first, capped at limit.
func (r *MessagesRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, document_id, question, answer, context_snapshot,
			qa_match_count, chunk_match_count, created_at
		FROM messages WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message

	for rows.Next() {
		var m models.Message

		if err := rows.Scan(&m.ID, &m.UserID, &m.DocumentID, &m.Question, &m.Answer,
			&m.ContextSnapshot, &m.QAMatchCount, &m.ChunkMatchCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return messages, nil
}
