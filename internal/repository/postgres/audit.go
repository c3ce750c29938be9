package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{NewBaseRepository(db)}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
        INSERT INTO audit_logs (
            id, user_id, action, entity_type, entity_id,
            changes, metadata, ip_address, user_agent, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.Action,
		log.EntityType,
		log.EntityID,
		jsonText(log.Changes),
		jsonText(log.Metadata),
		log.IPAddress,
		log.UserAgent,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, filters *model.AuditLogFilters) ([]*model.AuditLog, int64, error) {
	var w where
	if filters.UserID != uuid.Nil {
		w.add("user_id = ?", filters.UserID)
	}
	if filters.EntityType != "" {
		w.add("entity_type = ?", filters.EntityType)
	}
	if filters.EntityID != uuid.Nil {
		w.add("entity_id = ?", filters.EntityID)
	}
	if filters.Action != "" {
		w.add("action = ?", filters.Action)
	}
	if !filters.From.IsZero() {
		w.add("created_at >= ?", filters.From)
	}
	if !filters.To.IsZero() {
		w.add("created_at < ?", filters.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := `
        SELECT id, user_id, action, entity_type, entity_id,
               COALESCE(changes, '{}') AS changes, COALESCE(metadata, '{}') AS metadata,
               ip_address, user_agent, created_at
        FROM audit_logs` + w.String() + ` ORDER BY created_at DESC`
	query += " LIMIT " + w.next(filters.Limit()) + " OFFSET " + w.next(filters.Offset())

	logs := []*model.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit logs: %w", err)
	}
	return result.RowsAffected()
}

// jsonText passes JSON documents as text, defaulting to an empty object.
func jsonText(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
