package event

import (
	"context"
	"log/slog"
	"time"
)

const (
	TopicDocumentCreated  = "document.created"
	TopicDocumentReplaced = "document.replaced"
	TopicDocumentPatched  = "document.patched"
	TopicDocumentDeleted  = "document.deleted"
)

// DocumentTopics lists every topic a document write publishes to.
var DocumentTopics = []string{
	TopicDocumentCreated,
	TopicDocumentReplaced,
	TopicDocumentPatched,
	TopicDocumentDeleted,
}

// DocumentEvent is the payload of every document topic. Data is empty for
// deletions.
type DocumentEvent struct {
	Collection string         `json:"collection"`
	DocumentID int64          `json:"document_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (s *Service) handleDocumentEvent(ctx context.Context, topic string, ev DocumentEvent) error {
	s.logger.InfoContext(ctx, "document audit",
		slog.String("topic", topic),
		slog.String("collection", ev.Collection),
		slog.Int64("document_id", ev.DocumentID),
		slog.Time("occurred_at", ev.OccurredAt),
	)
	return nil
}
