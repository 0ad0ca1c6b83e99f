package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/pkg/database"
)

// FlowRepository implements port.FlowRepository on sqlite.
type FlowRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewFlowRepository creates a new flow repository
func NewFlowRepository(db *database.DB, logger *zap.Logger) *FlowRepository {
	return &FlowRepository{
		db:     db,
		logger: logger,
	}
}

// GetActiveByDepartment returns the department's active template with its
// steps, or nil when the department has none.
func (r *FlowRepository) GetActiveByDepartment(ctx context.Context, department string) (*entity.ApprovalFlowTemplate, error) {
	var tpl entity.ApprovalFlowTemplate
	err := r.db.QueryRowContext(ctx, `
		SELECT id, department, description, is_active, created_at, updated_at
		FROM flow_templates WHERE department = ? AND is_active = 1`, department).
		Scan(&tpl.ID, &tpl.Department, &tpl.Description, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get flow template", zap.String("department", department), zap.Error(err))
		return nil, fmt.Errorf("failed to get flow template: %w", err)
	}

	if err := r.loadSteps(ctx, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Upsert replaces the department's template and steps atomically. The old
// steps are removed by cascade when the template row is deleted.
func (r *FlowRepository) Upsert(ctx context.Context, tpl *entity.ApprovalFlowTemplate) error {
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM flow_templates WHERE department = ?", tpl.Department); err != nil {
			return fmt.Errorf("failed to delete previous template: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO flow_templates (id, department, description, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			tpl.ID, tpl.Department, tpl.Description, tpl.IsActive, tpl.CreatedAt, tpl.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert template: %w", err)
		}
		for _, step := range tpl.Steps {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO flow_steps (template_id, step_number, role, department, description, next_status)
				VALUES (?, ?, ?, ?, ?, ?)`,
				tpl.ID, step.StepNumber, step.Role, step.Department, step.Description, step.NextStatus,
			)
			if err != nil {
				return fmt.Errorf("failed to insert step %d: %w", step.StepNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to upsert flow template", zap.String("department", tpl.Department), zap.Error(err))
	}
	return err
}

// List returns every stored template with steps, active or not.
func (r *FlowRepository) List(ctx context.Context) ([]*entity.ApprovalFlowTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, department, description, is_active, created_at, updated_at
		FROM flow_templates ORDER BY department`)
	if err != nil {
		r.logger.Error("Failed to list flow templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list flow templates: %w", err)
	}
	defer rows.Close()

	var templates []*entity.ApprovalFlowTemplate
	for rows.Next() {
		var tpl entity.ApprovalFlowTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Department, &tpl.Description, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, &tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, tpl := range templates {
		if err := r.loadSteps(ctx, tpl); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (r *FlowRepository) loadSteps(ctx context.Context, tpl *entity.ApprovalFlowTemplate) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT step_number, role, department, description, next_status
		FROM flow_steps WHERE template_id = ? ORDER BY step_number`, tpl.ID)
	if err != nil {
		return fmt.Errorf("failed to load flow steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step entity.FlowStep
		if err := rows.Scan(&step.StepNumber, &step.Role, &step.Department, &step.Description, &step.NextStatus); err != nil {
			return fmt.Errorf("failed to scan flow step: %w", err)
		}
		tpl.Steps = append(tpl.Steps, step)
	}
	return rows.Err()
}
