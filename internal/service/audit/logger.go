package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/pkg/logger"
)

// Recorder is what domain services depend on. Recording never fails the
// caller's operation.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions)
}

type AuditLogger struct {
	service *Service
	log     *logger.Logger
}

func NewAuditLogger(service *Service, log *logger.Logger) *AuditLogger {
	return &AuditLogger{service: service, log: log}
}

func (l *AuditLogger) Record(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) {
	if err := l.service.Log(ctx, userID, action, entityType, entityID, opts); err != nil {
		l.log.Error(err, "audit log write failed",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID.String(),
		)
	}
}
