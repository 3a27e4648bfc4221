package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/quickstore/internal/storage/mq"
)

// Service is the event service. It consumes document events and writes
// them to the audit log.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	for _, topic := range DocumentTopics {
		if err := s.mqConsumer.RegisterHandler(topic, s.consumeDocumentEvent); err != nil {
			return nil, fmt.Errorf("register %s event handler: %w", topic, err)
		}
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) consumeDocumentEvent(ctx context.Context, topic string, payload []byte) error {
	var ev DocumentEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("unmarshal document event: %w", err)
	}

	if err := s.handleDocumentEvent(ctx, topic, ev); err != nil {
		return fmt.Errorf("handle document event: %w", err)
	}

	return nil
}
