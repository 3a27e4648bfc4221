package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/quickstore/internal/model"
	"github.com/tuanvumaihuynh/quickstore/internal/storage/db"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("not found")

type CreateDocumentParams struct {
	Collection string
	Data       map[string]any
}

type ListDocumentsParams struct {
	Collection string
	Skip       int
	Limit      int
}

type ReplaceDocumentParams struct {
	Collection string
	ID         int64
	Data       map[string]any
}

type DocumentRepository interface {
	WithDB(db db.DB) DocumentRepository
	CreateDocument(ctx context.Context, params CreateDocumentParams) (model.Document, error)
	GetDocument(ctx context.Context, collection string, id int64) (model.Document, error)
	// GetDocumentForUpdate is GetDocument holding a row lock until the
	// surrounding transaction ends.
	GetDocumentForUpdate(ctx context.Context, collection string, id int64) (model.Document, error)
	ListDocuments(ctx context.Context, params ListDocumentsParams) ([]model.Document, error)
	ReplaceDocument(ctx context.Context, params ReplaceDocumentParams) (model.Document, error)
	DeleteDocument(ctx context.Context, collection string, id int64) error
}

type documentRepository struct {
	db db.DB
}

func NewDocumentRepository(db db.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r documentRepository) WithDB(db db.DB) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, collection, data, created_at, updated_at`

func (r documentRepository) CreateDocument(ctx context.Context, params CreateDocumentParams) (model.Document, error) {
	data, err := json.Marshal(params.Data)
	if err != nil {
		return model.Document{}, fmt.Errorf("marshal data: %w", err)
	}

	now := time.Now()
	row := r.db.QueryRow(ctx, `
		INSERT INTO documents (collection, data, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, $3)
		RETURNING `+documentColumns,
		params.Collection, data, now,
	)

	doc, err := scanDocument(row)
	if err != nil {
		return model.Document{}, fmt.Errorf("insert document: %w", err)
	}

	return doc, nil
}

func (r documentRepository) GetDocument(ctx context.Context, collection string, id int64) (model.Document, error) {
	return r.getDocument(ctx, collection, id, "")
}

func (r documentRepository) GetDocumentForUpdate(ctx context.Context, collection string, id int64) (model.Document, error) {
	return r.getDocument(ctx, collection, id, " FOR UPDATE")
}

func (r documentRepository) getDocument(ctx context.Context, collection string, id int64, lock string) (model.Document, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE collection = $1 AND id = $2`+lock,
		collection, id,
	)

	doc, err := scanDocument(row)
	if err != nil {
		return model.Document{}, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

func (r documentRepository) ListDocuments(ctx context.Context, params ListDocumentsParams) ([]model.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE collection = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		params.Collection, params.Limit, params.Skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]model.Document, 0, params.Limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

func (r documentRepository) ReplaceDocument(ctx context.Context, params ReplaceDocumentParams) (model.Document, error) {
	data, err := json.Marshal(params.Data)
	if err != nil {
		return model.Document{}, fmt.Errorf("marshal data: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE documents
		SET data = $3::jsonb, updated_at = $4
		WHERE collection = $1 AND id = $2
		RETURNING `+documentColumns,
		params.Collection, params.ID, data, time.Now(),
	)

	doc, err := scanDocument(row)
	if err != nil {
		return model.Document{}, fmt.Errorf("update document: %w", err)
	}

	return doc, nil
}

func (r documentRepository) DeleteDocument(ctx context.Context, collection string, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete document: %w", ErrNotFound)
	}

	return nil
}

func scanDocument(row pgx.Row) (model.Document, error) {
	var (
		doc  model.Document
		data []byte
	)
	if err := row.Scan(&doc.ID, &doc.Collection, &data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, ErrNotFound
		}
		return model.Document{}, err
	}

	if err := json.Unmarshal(data, &doc.Data); err != nil {
		return model.Document{}, fmt.Errorf("unmarshal data: %w", err)
	}

	return doc, nil
}
