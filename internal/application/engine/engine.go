// Package engine implements the generic approval state machine shared by
// claims, budgets, contracts and invoices. One instance serves every
// entity type; per-type behavior comes from TypeConfig, never from
// type-specific transition code.
//
// Every operation is a single atomic read-check-write: all resolution
// (flow, roles, approvers) completes before the one compare-and-swap
// update, so a failed operation leaves no partial state and a timed-out
// caller observes either a full commit or nothing. Notifications happen
// after the commit and can never reverse it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/internal/domain/flow"
	"github.com/mwangaza-erp/approvalflow/internal/domain/workflow"
)

// Engine executes approval transitions for every registered entity type.
type Engine struct {
	types     map[entity.Type]TypeConfig
	entities  port.EntityRepository
	audits    port.AuditRepository
	flows     port.FlowProvider
	directory port.ApproverDirectory
	notifier  port.Notifier
	logger    *zap.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates the engine. types usually comes from DefaultTypeConfigs,
// overridden from configuration.
func New(
	types map[entity.Type]TypeConfig,
	entities port.EntityRepository,
	audits port.AuditRepository,
	flows port.FlowProvider,
	directory port.ApproverDirectory,
	notifier port.Notifier,
	logger *zap.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		types:     types,
		entities:  entities,
		audits:    audits,
		flows:     flows,
		directory: directory,
		notifier:  notifier,
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateInput is the payload for Create.
type CreateInput struct {
	Type        entity.Type `validate:"required"`
	Department  string      `validate:"required"`
	Title       string      `validate:"required"`
	Description string
	Amount      float64 `validate:"gte=0"`
}

// PaymentInput is the payload for MarkPaid. PaymentAdviceURL is required
// only for entity types configured to demand it.
type PaymentInput struct {
	Method           string `validate:"required"`
	TransactionID    string `validate:"required"`
	PaymentAdviceURL string
}

// RevisionInput is the payload for RequestRevision.
type RevisionInput struct {
	Reason   string `validate:"required"`
	Comments string
}

// Create registers a new entity. Depending on the type's configuration it
// starts in draft, or directly in the first pending state, in which case
// the first level's approvers are resolved and notified; a first level
// with no reachable approvers blocks creation entirely.
func (e *Engine) Create(ctx context.Context, in CreateInput, actorID string) (*entity.WorkflowEntity, error) {
	if err := e.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	cfg, err := e.typeConfig(in.Type)
	if err != nil {
		return nil, err
	}
	resolver, err := e.resolverFor(ctx, in.Department)
	if err != nil {
		return nil, err
	}

	now := e.now()
	ent := &entity.WorkflowEntity{
		ID:              uuid.NewString(),
		Type:            in.Type,
		Department:      in.Department,
		Title:           in.Title,
		Description:     in.Description,
		Amount:          in.Amount,
		Originator:      actorID,
		Status:          entity.StatusDraft,
		Version:         1,
		ApprovalRecords: make(map[string]entity.ApprovalRecord),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var firstApprovers []*entity.User
	if cfg.StartInFirstPending {
		first, err := resolver.NextStep(entity.StatusDraft)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		firstApprovers, err = e.directory.GetApprovers(ctx, first.NotifyRole, first.NotifyDepartment)
		if err != nil {
			return nil, err
		}
		deadline := now.Add(cfg.SLAForLevel(first.NextLevel))
		ent.Status = first.NextStatus
		ent.CurrentLevelDeadline = &deadline
	}

	audit := entity.AuditEntry{
		EntityID:    ent.ID,
		Action:      entity.ActionCreated,
		PerformedBy: actorID,
		PerformedAt: now,
		Details:     fmt.Sprintf("%s created in %s", ent.Type, ent.Status),
	}
	if err := e.entities.Create(ctx, ent, audit); err != nil {
		return nil, err
	}

	e.logger.Info("entity created",
		zap.String("entity_id", ent.ID),
		zap.String("type", ent.Type.String()),
		zap.String("department", ent.Department),
		zap.String("status", ent.Status))

	if cfg.StartInFirstPending {
		e.notifier.Notify(ctx, port.EventCreated, ent, firstApprovers, port.NotificationInfo{
			ActorID:  actorID,
			Level:    1,
			Deadline: ent.CurrentLevelDeadline,
		})
	}
	return ent, nil
}

// Submit moves a draft into the first pending level, or resumes a
// revision-suspended entity at the exact level recorded in its revision
// request. It refuses to commit when the target level has no approvers.
func (e *Engine) Submit(ctx context.Context, id, actorID string) (*entity.WorkflowEntity, error) {
	ent, cfg, resolver, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ent.Status != entity.StatusDraft && ent.Status != entity.StatusRevisionRequested {
		return nil, fmt.Errorf("%w: submit requires draft or revision_requested status", ErrInvalidTransition)
	}
	if ent.Originator != actorID && !e.actorHasRole(ctx, actorID, entity.RoleAdmin) {
		return nil, fmt.Errorf("%w: only the originator may submit", ErrForbidden)
	}

	var targetStatus string
	var targetLevel int
	var notifyRole, notifyDept string

	switch ent.Status {
	case entity.StatusRevisionRequested:
		if ent.RevisionRequest == nil {
			return nil, fmt.Errorf("%w: revision state without revision request", ErrInvalidTransition)
		}
		targetStatus = ent.RevisionRequest.ReturnToStatus
		targetLevel = ent.RevisionRequest.ReturnToLevel
		role, _, err := resolver.RoleForStatus(targetStatus)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		step, _ := resolver.StepForStatus(targetStatus)
		notifyRole, notifyDept = role, step.Department
	default:
		first, err := resolver.NextStep(entity.StatusDraft)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		targetStatus = first.NextStatus
		targetLevel = first.NextLevel
		notifyRole, notifyDept = first.NotifyRole, first.NotifyDepartment
	}

	// Approvers must resolve before anything is written.
	approvers, err := e.directory.GetApprovers(ctx, notifyRole, notifyDept)
	if err != nil {
		return nil, err
	}

	machine, err := e.machineFor(resolver, cfg, ent.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(withReturnTarget(ctx, targetStatus), workflow.TriggerSubmit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := e.now()
	deadline := now.Add(cfg.SLAForLevel(targetLevel))
	patch := port.TransitionPatch{
		Status:               targetStatus,
		SetDeadline:          &deadline,
		ClearRevisionRequest: true,
		Audit: entity.AuditEntry{
			EntityID:    ent.ID,
			Action:      entity.ActionSubmitted,
			PerformedBy: actorID,
			PerformedAt: now,
			Details:     fmt.Sprintf("submitted for %s approval (level %d)", notifyRole, targetLevel),
		},
	}
	if err := e.apply(ctx, ent, patch); err != nil {
		return nil, err
	}

	e.notifier.Notify(ctx, port.EventSubmitted, ent, approvers, port.NotificationInfo{
		ActorID:  actorID,
		Level:    targetLevel,
		Deadline: &deadline,
	})
	return ent, nil
}

// Approve records the current level's sign-off and advances the entity to
// the status the current step declares. At the final step the entity
// becomes approved and the originator is notified; otherwise the next
// step's approvers are, and the transition refuses to commit if none
// exist.
func (e *Engine) Approve(ctx context.Context, id, actorID, comments string) (*entity.WorkflowEntity, error) {
	ent, cfg, resolver, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	currentRole, currentLevel, err := resolver.RoleForStatus(ent.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: entity is not awaiting approval", ErrInvalidTransition)
	}
	actor, err := e.requireRole(ctx, actorID, currentRole)
	if err != nil {
		return nil, err
	}

	next, err := resolver.NextStep(ent.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	var nextApprovers []*entity.User
	if !next.Terminal {
		nextApprovers, err = e.directory.GetApprovers(ctx, next.NotifyRole, next.NotifyDepartment)
		if err != nil {
			return nil, err
		}
	}

	machine, err := e.machineFor(resolver, cfg, ent.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerApprove); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := e.now()
	step, _ := resolver.StepForStatus(ent.Status)
	record := entity.ApprovalRecord{
		Role:       currentRole,
		ApprovedBy: actor.ID,
		ApprovedAt: now,
		Comments:   comments,
		Department: step.Department,
	}
	patch := port.TransitionPatch{
		Status:         next.NextStatus,
		ApprovalRecord: &record,
		Audit: entity.AuditEntry{
			EntityID:    ent.ID,
			Action:      entity.ActionApproved,
			PerformedBy: actor.ID,
			PerformedAt: now,
			Details:     fmt.Sprintf("approved at level %d as %s", currentLevel, currentRole),
		},
	}
	var deadline time.Time
	if next.Terminal {
		patch.ClearDeadline = true
	} else {
		deadline = now.Add(cfg.SLAForLevel(next.NextLevel))
		patch.SetDeadline = &deadline
	}

	if err := e.apply(ctx, ent, patch); err != nil {
		return nil, err
	}
	ent.ApprovalRecords[currentRole] = record

	if next.Terminal {
		e.notifyOriginator(ctx, port.EventFinalApproval, ent, port.NotificationInfo{ActorID: actor.ID, Comments: comments})
	} else {
		e.notifier.Notify(ctx, port.EventApprovalAdvanced, ent, nextApprovers, port.NotificationInfo{
			ActorID:  actor.ID,
			Level:    next.NextLevel,
			Deadline: &deadline,
		})
	}
	return ent, nil
}

// Reject terminates the entity from any pending state; requires the role
// of the current level.
func (e *Engine) Reject(ctx context.Context, id, actorID, reason string) (*entity.WorkflowEntity, error) {
	ent, cfg, resolver, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	currentRole, currentLevel, err := resolver.RoleForStatus(ent.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: entity is not awaiting approval", ErrInvalidTransition)
	}
	actor, err := e.requireRole(ctx, actorID, currentRole)
	if err != nil {
		return nil, err
	}

	machine, err := e.machineFor(resolver, cfg, ent.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerReject); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := e.now()
	patch := port.TransitionPatch{
		Status:        entity.StatusRejected,
		ClearDeadline: true,
		Rejection: &entity.Rejection{
			RejectedBy: actor.ID,
			Reason:     reason,
			Level:      currentLevel,
			RejectedAt: now,
		},
		Audit: entity.AuditEntry{
			EntityID:    ent.ID,
			Action:      entity.ActionRejected,
			PerformedBy: actor.ID,
			PerformedAt: now,
			Details:     fmt.Sprintf("rejected at level %d: %s", currentLevel, reason),
		},
	}
	if err := e.apply(ctx, ent, patch); err != nil {
		return nil, err
	}

	e.notifyOriginator(ctx, port.EventRejected, ent, port.NotificationInfo{ActorID: actor.ID, Reason: reason, Level: currentLevel})
	return ent, nil
}

// RequestRevision suspends a pending entity so the originator can amend
// it. The current status and level are recorded as the point of return;
// a later Submit resumes there, never at the head of the flow.
func (e *Engine) RequestRevision(ctx context.Context, id, actorID string, in RevisionInput) (*entity.WorkflowEntity, error) {
	if err := e.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	ent, cfg, resolver, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}

	currentRole, currentLevel, err := resolver.RoleForStatus(ent.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: entity is not awaiting approval", ErrInvalidTransition)
	}
	actor, err := e.requireRole(ctx, actorID, currentRole)
	if err != nil {
		return nil, err
	}

	machine, err := e.machineFor(resolver, cfg, ent.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerRequestRevision); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := e.now()
	patch := port.TransitionPatch{
		Status:           entity.StatusRevisionRequested,
		ClearDeadline:    true,
		IncrementVersion: true,
		RevisionRequest: &entity.RevisionRequest{
			RequestedBy:    actor.ID,
			Reason:         in.Reason,
			Comments:       in.Comments,
			ReturnToStatus: ent.Status,
			ReturnToLevel:  currentLevel,
			RequestedAt:    now,
		},
		Audit: entity.AuditEntry{
			EntityID:    ent.ID,
			Action:      entity.ActionRevisionRequested,
			PerformedBy: actor.ID,
			PerformedAt: now,
			Details:     fmt.Sprintf("revision requested at level %d: %s", currentLevel, in.Reason),
		},
	}
	if err := e.apply(ctx, ent, patch); err != nil {
		return nil, err
	}

	e.notifyOriginator(ctx, port.EventRevisionRequested, ent, port.NotificationInfo{ActorID: actor.ID, Reason: in.Reason, Level: currentLevel})
	return ent, nil
}

// MarkPaid settles an approved entity into the type's settled status
// (paid, active or completed) and records the payment block.
func (e *Engine) MarkPaid(ctx context.Context, id, actorID string, in PaymentInput) (*entity.WorkflowEntity, error) {
	if err := e.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	ent, cfg, resolver, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	machine, err := e.machineFor(resolver, cfg, ent.Status)
	if err != nil {
		return nil, err
	}
	// Wrong status must surface as a transition error before any payload
	// requirement is reported.
	if err := machine.Fire(ctx, workflow.TriggerMarkPaid); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if cfg.RequiresPaymentField("payment_advice_url") && in.PaymentAdviceURL == "" {
		return nil, fmt.Errorf("%w: payment_advice_url is required for %s", ErrValidation, ent.Type)
	}

	now := e.now()
	patch := port.TransitionPatch{
		Status:        cfg.SettledStatus,
		ClearDeadline: true,
		Payment: &entity.Payment{
			Method:           in.Method,
			TransactionID:    in.TransactionID,
			PaymentAdviceURL: in.PaymentAdviceURL,
			PaidBy:           actorID,
			PaidAt:           now,
		},
		Audit: entity.AuditEntry{
			EntityID:    ent.ID,
			Action:      entity.ActionMarkedAsPaid,
			PerformedBy: actorID,
			PerformedAt: now,
			Details:     fmt.Sprintf("settled via %s (%s)", in.Method, in.TransactionID),
		},
	}
	if err := e.apply(ctx, ent, patch); err != nil {
		return nil, err
	}

	e.notifyOriginator(ctx, port.EventPaid, ent, port.NotificationInfo{ActorID: actorID})
	return ent, nil
}

// Cancel withdraws an entity from draft or any pending state. Allowed for
// the originator, admins and the type's configured delegate roles; never
// allowed once the entity is approved, rejected, settled or cancelled.
func (e *Engine) Cancel(ctx context.Context, id, actorID string) (*entity.WorkflowEntity, error) {
	ent, cfg, resolver, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.authorizeCancel(ctx, ent, cfg, actorID); err != nil {
		return nil, err
	}

	machine, err := e.machineFor(resolver, cfg, ent.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerCancel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := e.now()
	patch := port.TransitionPatch{
		Status:        entity.StatusCancelled,
		ClearDeadline: true,
		Audit: entity.AuditEntry{
			EntityID:    ent.ID,
			Action:      entity.ActionCancelled,
			PerformedBy: actorID,
			PerformedAt: now,
		},
	}
	if err := e.apply(ctx, ent, patch); err != nil {
		return nil, err
	}

	e.notifyOriginator(ctx, port.EventCancelled, ent, port.NotificationInfo{ActorID: actorID})
	return ent, nil
}

// Delete hard-removes an entity from draft or cancelled with no recorded
// payment. The audit trail does not survive deletion.
func (e *Engine) Delete(ctx context.Context, id, actorID string) error {
	ent, err := e.getEntity(ctx, id)
	if err != nil {
		return err
	}
	if ent.Originator != actorID && !e.actorHasRole(ctx, actorID, entity.RoleAdmin) {
		return fmt.Errorf("%w: only the originator may delete", ErrForbidden)
	}
	if ent.Status != entity.StatusDraft && ent.Status != entity.StatusCancelled {
		return fmt.Errorf("%w: delete requires draft or cancelled status", ErrInvalidTransition)
	}
	if ent.HasPayment() {
		return fmt.Errorf("%w: entity has a recorded payment", ErrInvalidTransition)
	}
	if err := e.entities.Delete(ctx, id); err != nil {
		return err
	}
	e.logger.Info("entity deleted", zap.String("entity_id", id), zap.String("actor", actorID))
	return nil
}

// Get returns the entity with its approval records and audit trail.
func (e *Engine) Get(ctx context.Context, id string) (*entity.WorkflowEntity, error) {
	return e.getEntity(ctx, id)
}

// List returns a page of entities of one type.
func (e *Engine) List(ctx context.Context, entityType entity.Type, limit, offset int) ([]*entity.WorkflowEntity, error) {
	if _, err := e.typeConfig(entityType); err != nil {
		return nil, err
	}
	return e.entities.List(ctx, entityType, limit, offset)
}

// AuditTrail returns the entity's history, oldest first.
func (e *Engine) AuditTrail(ctx context.Context, id string) ([]entity.AuditEntry, error) {
	if _, err := e.getEntity(ctx, id); err != nil {
		return nil, err
	}
	return e.audits.ListByEntityID(ctx, id)
}

func (e *Engine) typeConfig(t entity.Type) (TypeConfig, error) {
	cfg, ok := e.types[t]
	if !ok {
		return TypeConfig{}, fmt.Errorf("%w: unknown entity type %q", ErrValidation, t)
	}
	return cfg, nil
}

func (e *Engine) resolverFor(ctx context.Context, department string) (*flow.Resolver, error) {
	resolver, err := e.flows.ResolverFor(ctx, department)
	if err != nil {
		if errors.Is(err, flow.ErrFlowNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}
	return resolver, nil
}

func (e *Engine) getEntity(ctx context.Context, id string) (*entity.WorkflowEntity, error) {
	ent, err := e.entities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, fmt.Errorf("%w: entity %s", ErrNotFound, id)
	}
	return ent, nil
}

func (e *Engine) load(ctx context.Context, id string) (*entity.WorkflowEntity, TypeConfig, *flow.Resolver, error) {
	ent, err := e.getEntity(ctx, id)
	if err != nil {
		return nil, TypeConfig{}, nil, err
	}
	cfg, err := e.typeConfig(ent.Type)
	if err != nil {
		return nil, TypeConfig{}, nil, err
	}
	resolver, err := e.resolverFor(ctx, ent.Department)
	if err != nil {
		return nil, TypeConfig{}, nil, err
	}
	return ent, cfg, resolver, nil
}

func (e *Engine) machineFor(r *flow.Resolver, cfg TypeConfig, status string) (workflow.StateMachine, error) {
	machine, err := buildMachine(r, cfg, status)
	if err != nil {
		// A stored status outside the flow's vocabulary is a flow error,
		// never silently accepted.
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	return machine, nil
}

// apply commits the patch with a compare-and-swap on the status the
// entity was read at, then mirrors the accepted changes onto the
// in-memory entity for the caller.
func (e *Engine) apply(ctx context.Context, ent *entity.WorkflowEntity, patch port.TransitionPatch) error {
	if err := e.entities.ApplyTransition(ctx, ent.ID, ent.Status, patch); err != nil {
		if errors.Is(err, port.ErrStaleStatus) {
			return fmt.Errorf("%w: entity %s", ErrStatusConflict, ent.ID)
		}
		return err
	}

	ent.Status = patch.Status
	if patch.SetDeadline != nil {
		ent.CurrentLevelDeadline = patch.SetDeadline
	} else if patch.ClearDeadline {
		ent.CurrentLevelDeadline = nil
	}
	if patch.Rejection != nil {
		ent.Rejection = patch.Rejection
	}
	if patch.RevisionRequest != nil {
		ent.RevisionRequest = patch.RevisionRequest
	} else if patch.ClearRevisionRequest {
		ent.RevisionRequest = nil
	}
	if patch.Payment != nil {
		ent.Payment = patch.Payment
	}
	if patch.IncrementVersion {
		ent.Version++
	}
	ent.UpdatedAt = patch.Audit.PerformedAt
	ent.AuditTrail = append(ent.AuditTrail, patch.Audit)

	e.logger.Info("transition applied",
		zap.String("entity_id", ent.ID),
		zap.String("action", patch.Audit.Action),
		zap.String("status", ent.Status),
		zap.String("actor", patch.Audit.PerformedBy))
	return nil
}

// requireRole loads the actor and verifies they hold the permission role
// mapped from the flow role of the current level.
func (e *Engine) requireRole(ctx context.Context, actorID, flowRole string) (*entity.User, error) {
	actor, err := e.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, actorID)
	}
	if !actor.IsActive() || !actor.HasRole(e.directory.PermissionRole(flowRole)) {
		return nil, ErrForbidden
	}
	return actor, nil
}

func (e *Engine) actorHasRole(ctx context.Context, actorID, role string) bool {
	actor, err := e.directory.GetUser(ctx, actorID)
	if err != nil || actor == nil {
		return false
	}
	return actor.IsActive() && actor.HasRole(role)
}

func (e *Engine) authorizeCancel(ctx context.Context, ent *entity.WorkflowEntity, cfg TypeConfig, actorID string) error {
	if ent.Originator == actorID {
		return nil
	}
	actor, err := e.directory.GetUser(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsActive() {
		return ErrForbidden
	}
	if actor.HasRole(entity.RoleAdmin) {
		return nil
	}
	for _, role := range cfg.CancelDelegateRoles {
		if actor.HasRole(role) {
			return nil
		}
	}
	return ErrForbidden
}

// notifyOriginator resolves the originator and dispatches a terminal-event
// notification; a missing originator is logged and skipped, never an
// error, because the transition is already committed.
func (e *Engine) notifyOriginator(ctx context.Context, event port.NotificationEvent, ent *entity.WorkflowEntity, info port.NotificationInfo) {
	originator, err := e.directory.GetUser(ctx, ent.Originator)
	if err != nil || originator == nil {
		e.logger.Warn("originator unavailable for notification",
			zap.String("entity_id", ent.ID),
			zap.String("originator", ent.Originator),
			zap.Error(err))
		return
	}
	e.notifier.Notify(ctx, event, ent, []*entity.User{originator}, info)
}
