package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/docuchat/backend/internal/docerrors"
	"github.com/docuchat/backend/internal/models"
)

// DocumentsRepository handles data access for documents and their embedding
// sets (chunks and qa_items).
type DocumentsRepository struct {
	db *pgxpool.Pool
}

// NewDocumentsRepository creates a new documents repository.
func NewDocumentsRepository(db *pgxpool.Pool) *DocumentsRepository {
	return &DocumentsRepository{db: db}
}

// Upsert creates or replaces the user's document row. A re-upload keeps the
// existing document ID but resets processed_at to NULL, so queries report
// "not yet processed" until the new ingestion completes.
func (r *DocumentsRepository) Upsert(ctx context.Context, userID uuid.UUID, filename, filePath string) (*models.Document, error) {
	now := time.Now()

	var doc models.Document

	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (id, user_id, filename, file_path, text_length, processed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, NULL, $5, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET filename = EXCLUDED.filename, file_path = EXCLUDED.file_path,
			text_length = 0, processed_at = NULL, updated_at = $5
		RETURNING id, user_id, filename, file_path, text_length, processed_at, created_at, updated_at`,
		uuid.Must(uuid.NewV7()), userID, filename, filePath, now,
	).Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.FilePath, &doc.TextLength,
		&doc.ProcessedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert document: %w", err)
	}

	return &doc, nil
}

// FindByUserID returns the user's document, or a NotFoundError when nothing was uploaded yet.
func (r *DocumentsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Document, error) {
	var doc models.Document

	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, filename, file_path, text_length, processed_at, created_at, updated_at
		FROM documents WHERE user_id = $1`,
		userID,
	).Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.FilePath, &doc.TextLength,
		&doc.ProcessedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docerrors.NewNotFoundError("document", "no document uploaded")
		}

		return nil, fmt.Errorf("find document by user: %w", err)
	}

	return &doc, nil
}

// GetByID returns the document with the given ID, or a NotFoundError.
func (r *DocumentsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document

	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, filename, file_path, text_length, processed_at, created_at, updated_at
		FROM documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.FilePath, &doc.TextLength,
		&doc.ProcessedAt, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docerrors.NewNotFoundError("document", "")
		}

		return nil, fmt.Errorf("get document by id: %w", err)
	}

	return &doc, nil
}

// ReplaceIndex atomically replaces the document's embedding set in a single
// transaction: existing chunks and QA items are deleted, the new ones are
// inserted, and processed_at is set. Concurrent readers see either the old
// complete index or the new complete index, never a mix. Re-running for the
// same document supersedes the previous index instead of appending.
func (r *DocumentsRepository) ReplaceIndex(
	ctx context.Context, documentID uuid.UUID, textLength int,
	chunks []models.Chunk, qaItems []models.QAItem,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace index: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM qa_items WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete old qa items: %w", err)
	}

	now := time.Now()

	for _, chunk := range chunks {
		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (id, document_id, position, content, embedding, model, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.Must(uuid.NewV7()), documentID, chunk.Position, chunk.Content,
			pgvector.NewHalfVector(chunk.Embedding), chunk.Model, now,
		)
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.Position, err)
		}
	}

	for _, item := range qaItems {
		_, err := tx.Exec(ctx, `
			INSERT INTO qa_items (id, document_id, position, question, answer, embedding, model, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.Must(uuid.NewV7()), documentID, item.Position, item.Question, item.Answer,
			pgvector.NewHalfVector(item.Embedding), item.Model, now,
		)
		if err != nil {
			return fmt.Errorf("insert qa item %d: %w", item.Position, err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE documents SET text_length = $2, processed_at = $3, updated_at = $3 WHERE id = $1`,
		documentID, textLength, now,
	)
	if err != nil {
		return fmt.Errorf("mark document processed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace index: %w", err)
	}

	return nil
}

// LoadIndex returns the document's chunks and QA items with their embeddings,
// ordered by position. Both slices empty means no index exists yet.
func (r *DocumentsRepository) LoadIndex(ctx context.Context, documentID uuid.UUID) ([]models.Chunk, []models.QAItem, error) {
	chunks, err := r.loadChunks(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	qaItems, err := r.loadQAItems(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	return chunks, qaItems, nil
}

func (r *DocumentsRepository) loadChunks(ctx context.Context, documentID uuid.UUID) ([]models.Chunk, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, position, content, embedding, model, created_at
		FROM chunks WHERE document_id = $1 ORDER BY position`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk

	for rows.Next() {
		var (
			chunk models.Chunk
			vec   pgvector.HalfVector
		)

		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position, &chunk.Content,
			&vec, &chunk.Model, &chunk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}

		chunk.Embedding = vec.Slice()
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

func (r *DocumentsRepository) loadQAItems(ctx context.Context, documentID uuid.UUID) ([]models.QAItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, position, question, answer, embedding, model, created_at
		FROM qa_items WHERE document_id = $1 ORDER BY position`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("load qa items: %w", err)
	}
	defer rows.Close()

	var items []models.QAItem

	for rows.Next() {
		var (
			item models.QAItem
			vec  pgvector.HalfVector
		)

		if err := rows.Scan(&item.ID, &item.DocumentID, &item.Position, &item.Question, &item.Answer,
			&vec, &item.Model, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan qa item: %w", err)
		}

		item.Embedding = vec.Slice()
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating qa items: %w", err)
	}

	return items, nil
}
