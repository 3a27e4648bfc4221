package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/tuanvumaihuynh/quickstore/internal/apperr"
	"github.com/tuanvumaihuynh/quickstore/internal/collection"
	"github.com/tuanvumaihuynh/quickstore/internal/event"
	"github.com/tuanvumaihuynh/quickstore/internal/model"
	"github.com/tuanvumaihuynh/quickstore/internal/repository"
	"github.com/tuanvumaihuynh/quickstore/internal/storage/db"
	"github.com/tuanvumaihuynh/quickstore/pkg/outbox"
	"github.com/tuanvumaihuynh/quickstore/pkg/zerror"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type CreateDocumentParams struct {
	Collection string
	Data       map[string]any
}

type ListDocumentsParams struct {
	Collection string
	// Skip is clamped to be non-negative.
	Skip int
	// Limit is clamped to [1, MaxListLimit]; zero means DefaultListLimit.
	Limit int
}

type ReplaceDocumentParams struct {
	Collection string
	ID         int64
	Data       map[string]any
}

type PatchDocumentParams struct {
	Collection string
	ID         int64
	// Fields are merged into the top level of the stored document.
	Fields map[string]any
}

type DocumentService interface {
	CreateDocument(ctx context.Context, params CreateDocumentParams) (model.Document, error)
	GetDocument(ctx context.Context, collection string, id int64) (model.Document, error)
	ListDocuments(ctx context.Context, params ListDocumentsParams) ([]model.Document, error)
	ReplaceDocument(ctx context.Context, params ReplaceDocumentParams) (model.Document, error)
	PatchDocument(ctx context.Context, params PatchDocumentParams) (model.Document, error)
	DeleteDocument(ctx context.Context, collection string, id int64) error
}

type documentService struct {
	db            db.DB
	collections   *collection.Registry
	documentRepo  repository.DocumentRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewDocumentService(
	db db.DB,
	collections *collection.Registry,
	documentRepo repository.DocumentRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) DocumentService {
	return &documentService{
		db:            db,
		collections:   collections,
		documentRepo:  documentRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *documentService) CreateDocument(ctx context.Context, params CreateDocumentParams) (model.Document, error) {
	if err := s.validate(params.Collection, params.Data); err != nil {
		return model.Document{}, err
	}

	var doc model.Document
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		doc, err = s.documentRepo.
			WithDB(db).
			CreateDocument(ctx, repository.CreateDocumentParams{
				Collection: params.Collection,
				Data:       params.Data,
			})
		if err != nil {
			return fmt.Errorf("document repository create document: %w", err)
		}

		return s.publish(ctx, db, event.TopicDocumentCreated, doc)
	}); err != nil {
		return model.Document{}, fmt.Errorf("db with tx: %w", err)
	}

	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, collectionName string, id int64) (model.Document, error) {
	if _, err := s.collection(collectionName); err != nil {
		return model.Document{}, err
	}

	doc, err := s.documentRepo.GetDocument(ctx, collectionName, id)
	if err != nil {
		return model.Document{}, notFound(fmt.Errorf("document repository get document: %w", err))
	}

	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, params ListDocumentsParams) ([]model.Document, error) {
	if _, err := s.collection(params.Collection); err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.ListDocuments(ctx, repository.ListDocumentsParams{
		Collection: params.Collection,
		Skip:       max(params.Skip, 0),
		Limit:      clampLimit(params.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("document repository list documents: %w", err)
	}

	return docs, nil
}

func (s *documentService) ReplaceDocument(ctx context.Context, params ReplaceDocumentParams) (model.Document, error) {
	if err := s.validate(params.Collection, params.Data); err != nil {
		return model.Document{}, err
	}

	var doc model.Document
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		doc, err = s.documentRepo.
			WithDB(db).
			ReplaceDocument(ctx, repository.ReplaceDocumentParams{
				Collection: params.Collection,
				ID:         params.ID,
				Data:       params.Data,
			})
		if err != nil {
			return notFound(fmt.Errorf("document repository replace document: %w", err))
		}

		return s.publish(ctx, db, event.TopicDocumentReplaced, doc)
	}); err != nil {
		return model.Document{}, fmt.Errorf("db with tx: %w", err)
	}

	return doc, nil
}

func (s *documentService) PatchDocument(ctx context.Context, params PatchDocumentParams) (model.Document, error) {
	c, err := s.collection(params.Collection)
	if err != nil {
		return model.Document{}, err
	}

	var doc model.Document
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		repo := s.documentRepo.WithDB(db)

		current, err := repo.GetDocumentForUpdate(ctx, params.Collection, params.ID)
		if err != nil {
			return notFound(fmt.Errorf("document repository get document for update: %w", err))
		}

		merged := maps.Clone(current.Data)
		if merged == nil {
			merged = map[string]any{}
		}
		maps.Copy(merged, params.Fields)

		if err := validateDocument(c, merged); err != nil {
			return err
		}

		doc, err = repo.ReplaceDocument(ctx, repository.ReplaceDocumentParams{
			Collection: params.Collection,
			ID:         params.ID,
			Data:       merged,
		})
		if err != nil {
			return notFound(fmt.Errorf("document repository replace document: %w", err))
		}

		return s.publish(ctx, db, event.TopicDocumentPatched, doc)
	}); err != nil {
		return model.Document{}, fmt.Errorf("db with tx: %w", err)
	}

	return doc, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, collectionName string, id int64) error {
	if _, err := s.collection(collectionName); err != nil {
		return err
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.documentRepo.
			WithDB(db).
			DeleteDocument(ctx, collectionName, id); err != nil {
			return notFound(fmt.Errorf("document repository delete document: %w", err))
		}

		return s.publish(ctx, db, event.TopicDocumentDeleted, model.Document{
			ID:         id,
			Collection: collectionName,
		})
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (s *documentService) collection(name string) (*collection.Collection, error) {
	c, ok := s.collections.Get(name)
	if !ok {
		return nil, apperr.CollectionNotFoundErr
	}
	return c, nil
}

func (s *documentService) validate(collectionName string, data map[string]any) error {
	c, err := s.collection(collectionName)
	if err != nil {
		return err
	}
	return validateDocument(c, data)
}

func validateDocument(c *collection.Collection, data map[string]any) error {
	err := c.Validate(data)
	if err == nil {
		return nil
	}

	var verr *collection.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validate document: %w", err)
	}

	details := make([]zerror.Detail, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		details = append(details, zerror.Detail{Field: v.Field, Message: v.Message})
	}
	return apperr.ValidationErr.WrapParent(err).WithDetails(details...)
}

// publish stores the document event in the outbox within the write
// transaction.
func (s *documentService) publish(ctx context.Context, db db.DB, topic string, doc model.Document) error {
	ev := event.DocumentEvent{
		Collection: doc.Collection,
		DocumentID: doc.ID,
		Data:       doc.Data,
		OccurredAt: time.Now(),
	}

	evBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// the relay produces messages sharing this key in outbox order
	partitionKey := doc.Collection + "/" + strconv.FormatInt(doc.ID, 10)
	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      evBytes,
			PartitionKey: &partitionKey,
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.DocumentNotFoundErr.WrapParent(err)
	}
	return err
}

func clampLimit(limit int) int {
	if limit == 0 {
		return DefaultListLimit
	}
	return min(max(limit, 1), MaxListLimit)
}
