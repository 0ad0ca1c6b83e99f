package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/pkg/database"
)

// EntityRepository implements port.EntityRepository on sqlite.
type EntityRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(db *database.DB, logger *zap.Logger) *EntityRepository {
	return &EntityRepository{
		db:     db,
		logger: logger,
	}
}

const entityColumns = `
	id, entity_type, department, title, description, amount, originator,
	status, version, current_level_deadline,
	rejected_by, rejection_reason, rejection_level, rejected_at,
	revision_requested_by, revision_reason, revision_comments,
	revision_return_status, revision_return_level, revision_requested_at,
	payment_method, payment_transaction_id, payment_advice_url, paid_by, paid_at,
	created_at, updated_at`

// Create inserts the entity and its CREATED audit entry in one transaction.
func (r *EntityRepository) Create(ctx context.Context, e *entity.WorkflowEntity, audit entity.AuditEntry) error {
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO entities (
				id, entity_type, department, title, description, amount,
				originator, status, version, current_level_deadline,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			e.ID,
			e.Type.String(),
			e.Department,
			e.Title,
			e.Description,
			e.Amount,
			e.Originator,
			e.Status,
			e.Version,
			e.CurrentLevelDeadline,
			e.CreatedAt,
			e.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entity: %w", err)
		}
		return appendAudit(ctx, tx, audit)
	})
	if err != nil {
		r.logger.Error("Failed to create entity", zap.String("entity_id", e.ID), zap.Error(err))
		return err
	}
	e.AuditTrail = append(e.AuditTrail, audit)
	return nil
}

// GetByID loads the entity together with its approval records and audit
// trail. Returns (nil, nil) when the entity does not exist.
func (r *EntityRepository) GetByID(ctx context.Context, id string) (*entity.WorkflowEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = ?`

	e, err := scanEntity(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get entity", zap.String("entity_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	if err := r.loadApprovalRecords(ctx, e); err != nil {
		return nil, err
	}
	trail, err := listAudit(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	e.AuditTrail = trail
	return e, nil
}

// List returns a page of entities of one type, newest first. Approval
// records and audit trails are not hydrated for list rows.
func (r *EntityRepository) List(ctx context.Context, entityType entity.Type, limit, offset int) ([]*entity.WorkflowEntity, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + entityColumns + ` FROM entities WHERE entity_type = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, entityType.String(), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list entities", zap.String("type", entityType.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []*entity.WorkflowEntity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// ListOverdue returns pending entities whose level deadline has passed,
// oldest deadline first. Used by the reminder worker.
func (r *EntityRepository) ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*entity.WorkflowEntity, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + entityColumns + ` FROM entities
		WHERE status LIKE 'pending_%' AND current_level_deadline IS NOT NULL AND current_level_deadline <= ?
		ORDER BY current_level_deadline LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, asOf, limit)
	if err != nil {
		r.logger.Error("Failed to list overdue entities", zap.Error(err))
		return nil, fmt.Errorf("failed to list overdue entities: %w", err)
	}
	defer rows.Close()

	var entities []*entity.WorkflowEntity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// ApplyTransition commits the patch only if the stored status still equals
// expectedStatus. The status update, optional approval record and the
// audit entry share one transaction; a lost race rolls back everything and
// reports port.ErrStaleStatus.
func (r *EntityRepository) ApplyTransition(ctx context.Context, id, expectedStatus string, patch port.TransitionPatch) error {
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		sets := []string{"status = ?", "updated_at = ?"}
		args := []interface{}{patch.Status, patch.Audit.PerformedAt}

		if patch.SetDeadline != nil {
			sets = append(sets, "current_level_deadline = ?")
			args = append(args, *patch.SetDeadline)
		} else if patch.ClearDeadline {
			sets = append(sets, "current_level_deadline = NULL")
		}

		if rej := patch.Rejection; rej != nil {
			sets = append(sets, "rejected_by = ?", "rejection_reason = ?", "rejection_level = ?", "rejected_at = ?")
			args = append(args, rej.RejectedBy, rej.Reason, rej.Level, rej.RejectedAt)
		}

		if rev := patch.RevisionRequest; rev != nil {
			sets = append(sets,
				"revision_requested_by = ?", "revision_reason = ?", "revision_comments = ?",
				"revision_return_status = ?", "revision_return_level = ?", "revision_requested_at = ?")
			args = append(args, rev.RequestedBy, rev.Reason, rev.Comments, rev.ReturnToStatus, rev.ReturnToLevel, rev.RequestedAt)
		} else if patch.ClearRevisionRequest {
			sets = append(sets,
				"revision_requested_by = NULL", "revision_reason = NULL", "revision_comments = NULL",
				"revision_return_status = NULL", "revision_return_level = NULL", "revision_requested_at = NULL")
		}

		if p := patch.Payment; p != nil {
			sets = append(sets, "payment_method = ?", "payment_transaction_id = ?", "payment_advice_url = ?", "paid_by = ?", "paid_at = ?")
			args = append(args, p.Method, p.TransactionID, p.PaymentAdviceURL, p.PaidBy, p.PaidAt)
		}

		if patch.IncrementVersion {
			sets = append(sets, "version = version + 1")
		}

		query := fmt.Sprintf("UPDATE entities SET %s WHERE id = ? AND status = ?", strings.Join(sets, ", "))
		args = append(args, id, expectedStatus)

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update entity: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return port.ErrStaleStatus
		}

		if rec := patch.ApprovalRecord; rec != nil {
			// The unique (entity_id, role) constraint guarantees a level's
			// record is written once and never overwritten.
			_, err := tx.ExecContext(ctx, `
				INSERT INTO approval_records (entity_id, role, approved_by, approved_at, comments, department)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, rec.Role, rec.ApprovedBy, rec.ApprovedAt, rec.Comments, rec.Department,
			)
			if err != nil {
				return fmt.Errorf("failed to insert approval record: %w", err)
			}
		}

		return appendAudit(ctx, tx, patch.Audit)
	})
	if err != nil && err != port.ErrStaleStatus {
		r.logger.Error("Failed to apply transition",
			zap.String("entity_id", id),
			zap.String("action", patch.Audit.Action),
			zap.Error(err))
	}
	return err
}

// Delete hard-removes the entity, its approval records and its audit
// trail in one transaction.
func (r *EntityRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM approval_records WHERE entity_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete approval records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM audit_trail WHERE entity_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete audit trail: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM entities WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete entity: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete entity", zap.String("entity_id", id), zap.Error(err))
	}
	return err
}

func (r *EntityRepository) loadApprovalRecords(ctx context.Context, e *entity.WorkflowEntity) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role, approved_by, approved_at, comments, department
		FROM approval_records WHERE entity_id = ? ORDER BY approved_at`, e.ID)
	if err != nil {
		return fmt.Errorf("failed to load approval records: %w", err)
	}
	defer rows.Close()

	e.ApprovalRecords = make(map[string]entity.ApprovalRecord)
	for rows.Next() {
		var rec entity.ApprovalRecord
		if err := rows.Scan(&rec.Role, &rec.ApprovedBy, &rec.ApprovedAt, &rec.Comments, &rec.Department); err != nil {
			return fmt.Errorf("failed to scan approval record: %w", err)
		}
		e.ApprovalRecords[rec.Role] = rec
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(row rowScanner) (*entity.WorkflowEntity, error) {
	var (
		e            entity.WorkflowEntity
		entityType   string
		deadline     sql.NullTime
		rejBy        sql.NullString
		rejReason    sql.NullString
		rejLevel     sql.NullInt64
		rejAt        sql.NullTime
		revBy        sql.NullString
		revReason    sql.NullString
		revComments  sql.NullString
		revStatus    sql.NullString
		revLevel     sql.NullInt64
		revAt        sql.NullTime
		payMethod    sql.NullString
		payTxID      sql.NullString
		payAdviceURL sql.NullString
		paidBy       sql.NullString
		paidAt       sql.NullTime
	)

	err := row.Scan(
		&e.ID, &entityType, &e.Department, &e.Title, &e.Description, &e.Amount, &e.Originator,
		&e.Status, &e.Version, &deadline,
		&rejBy, &rejReason, &rejLevel, &rejAt,
		&revBy, &revReason, &revComments, &revStatus, &revLevel, &revAt,
		&payMethod, &payTxID, &payAdviceURL, &paidBy, &paidAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Type = entity.Type(entityType)
	e.ApprovalRecords = make(map[string]entity.ApprovalRecord)
	if deadline.Valid {
		e.CurrentLevelDeadline = &deadline.Time
	}
	if rejBy.Valid {
		e.Rejection = &entity.Rejection{
			RejectedBy: rejBy.String,
			Reason:     rejReason.String,
			Level:      int(rejLevel.Int64),
			RejectedAt: rejAt.Time,
		}
	}
	if revBy.Valid {
		e.RevisionRequest = &entity.RevisionRequest{
			RequestedBy:    revBy.String,
			Reason:         revReason.String,
			Comments:       revComments.String,
			ReturnToStatus: revStatus.String,
			ReturnToLevel:  int(revLevel.Int64),
			RequestedAt:    revAt.Time,
		}
	}
	if payMethod.Valid {
		e.Payment = &entity.Payment{
			Method:           payMethod.String,
			TransactionID:    payTxID.String,
			PaymentAdviceURL: payAdviceURL.String,
			PaidBy:           paidBy.String,
			PaidAt:           paidAt.Time,
		}
	}
	return &e, nil
}
