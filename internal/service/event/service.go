package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

// Emitter writes domain events to the outbox. The worker relays them to the
// broker.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type EventService struct {
	outboxRepo repository.OutboxRepository
	log        *logger.Logger
	now        func() time.Time
}

func NewEventService(outboxRepo repository.OutboxRepository, log *logger.Logger) *EventService {
	return &EventService{outboxRepo: outboxRepo, log: log, now: time.Now}
}

func (s *EventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := s.now()
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payloadJSON,
		Status:    model.OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	s.log.Debug("outbox event recorded", "event_type", eventType, "event_id", event.ID.String())
	return nil
}

// CleanupProcessedEvents deletes relayed events older than retention.
func (s *EventService) CleanupProcessedEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	count, err := s.outboxRepo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup events: %w", err)
	}
	return count, nil
}
