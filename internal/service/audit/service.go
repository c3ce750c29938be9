package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type LogOptions struct {
	Changes   interface{}
	Metadata  interface{}
	IPAddress string
	UserAgent string
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	if opts == nil {
		opts = &LogOptions{}
	}

	var changes, metadata json.RawMessage
	var err error
	if opts.Changes != nil {
		if changes, err = json.Marshal(opts.Changes); err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
	}
	if opts.Metadata != nil {
		if metadata, err = json.Marshal(opts.Metadata); err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	// Fall back to the caller captured by the HTTP layer.
	ipAddress := opts.IPAddress
	userAgent := opts.UserAgent
	if client, ok := ClientFromContext(ctx); ok && ipAddress == "" {
		ipAddress = client.IPAddress
		userAgent = client.UserAgent
	}

	entry := &model.AuditLog{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    changes,
		Metadata:   metadata,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		CreatedAt:  s.now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.AuditLogFilters) ([]*model.AuditLog, int64, error) {
	logs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

// Cleanup removes entries older than retention.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteBefore(ctx, s.now().Add(-retention))
}
