package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/internal/domain/flow"
)

// FlowService manages approval flow templates and hands resolvers to the
// engine. It implements port.FlowProvider.
type FlowService interface {
	port.FlowProvider
	GetFlow(ctx context.Context, department string) (*entity.ApprovalFlowTemplate, error)
	UpsertFlow(ctx context.Context, department, description string, steps []entity.FlowStep) (*entity.ApprovalFlowTemplate, error)
	ListFlows(ctx context.Context) ([]*entity.ApprovalFlowTemplate, error)
}

type flowServiceImpl struct {
	flows    port.FlowRepository
	validate *validator.Validate
	logger   Logger
	now      func() time.Time
}

// NewFlowService creates a new FlowService.
func NewFlowService(flows port.FlowRepository, logger Logger) FlowService {
	return &flowServiceImpl{
		flows:    flows,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
	}
}

// GetFlow returns the department's active flow template.
func (s *flowServiceImpl) GetFlow(ctx context.Context, department string) (*entity.ApprovalFlowTemplate, error) {
	tpl, err := s.flows.GetActiveByDepartment(ctx, department)
	if err != nil {
		s.logger.Error("Failed to load flow", "error", err, "department", department)
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", flow.ErrFlowNotFound, department)
	}
	return tpl, nil
}

// ResolverFor builds a resolver over the department's active flow.
func (s *flowServiceImpl) ResolverFor(ctx context.Context, department string) (*flow.Resolver, error) {
	tpl, err := s.GetFlow(ctx, department)
	if err != nil {
		return nil, err
	}
	return flow.NewResolver(tpl)
}

// UpsertFlow validates and stores the department's flow. Validation is the
// same check resolvers run at load time, so a stored flow never fails to
// resolve later.
func (s *flowServiceImpl) UpsertFlow(ctx context.Context, department, description string, steps []entity.FlowStep) (*entity.ApprovalFlowTemplate, error) {
	for i, step := range steps {
		if err := s.validate.Struct(step); err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", flow.ErrInvalidFlow, i+1, err)
		}
	}

	now := s.now()
	tpl := &entity.ApprovalFlowTemplate{
		ID:          uuid.NewString(),
		Department:  department,
		Description: description,
		IsActive:    true,
		Steps:       steps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := flow.ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	if err := s.flows.Upsert(ctx, tpl); err != nil {
		s.logger.Error("Failed to upsert flow", "error", err, "department", department)
		return nil, err
	}

	s.logger.Info("Flow upserted", "department", department, "steps", len(steps))
	return tpl, nil
}

// ListFlows returns every registered flow template.
func (s *flowServiceImpl) ListFlows(ctx context.Context) ([]*entity.ApprovalFlowTemplate, error) {
	return s.flows.List(ctx)
}
