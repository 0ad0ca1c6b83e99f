package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/pkg/database"
)

// AuditRepository implements port.AuditRepository on sqlite.
type AuditRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes a standalone audit entry outside any entity transition.
func (r *AuditRepository) Append(ctx context.Context, e entity.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_trail (entity_id, action, performed_by, performed_at, details)
		VALUES (?, ?, ?, ?, ?)`,
		e.EntityID, e.Action, e.PerformedBy, e.PerformedAt, e.Details,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("entity_id", e.EntityID),
			zap.String("action", e.Action),
			zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListByEntityID returns the entity's full history in insertion order.
func (r *AuditRepository) ListByEntityID(ctx context.Context, entityID string) ([]entity.AuditEntry, error) {
	trail, err := listAudit(ctx, r.db, entityID)
	if err != nil {
		r.logger.Error("Failed to list audit trail", zap.String("entity_id", entityID), zap.Error(err))
		return nil, err
	}
	return trail, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// appendAudit inserts an audit entry using the caller's transaction so the
// entry commits or rolls back together with the transition it describes.
func appendAudit(ctx context.Context, tx *sql.Tx, e entity.AuditEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_trail (entity_id, action, performed_by, performed_at, details)
		VALUES (?, ?, ?, ?, ?)`,
		e.EntityID, e.Action, e.PerformedBy, e.PerformedAt, e.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func listAudit(ctx context.Context, q querier, entityID string) ([]entity.AuditEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, entity_id, action, performed_by, performed_at, details
		FROM audit_trail WHERE entity_id = ? ORDER BY id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit trail: %w", err)
	}
	defer rows.Close()

	var trail []entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityID, &e.Action, &e.PerformedBy, &e.PerformedAt, &e.Details); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		trail = append(trail, e)
	}
	return trail, rows.Err()
}
