package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// OverdueLister is the slice of the entity store the reminder needs.
type OverdueLister interface {
	ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*entity.WorkflowEntity, error)
}

// DeadlineReminder periodically scans for pending entities whose level
// deadline has lapsed and re-notifies the approvers of the current level.
// It never transitions anything; deadlines are advisory.
type DeadlineReminder struct {
	entities  OverdueLister
	flows     port.FlowProvider
	directory port.ApproverDirectory
	notifier  port.Notifier
	logger    *zap.Logger

	pollInterval time.Duration
	batchSize    int

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	now       func() time.Time
}

// NewDeadlineReminder creates a new deadline reminder worker
func NewDeadlineReminder(
	entities OverdueLister,
	flows port.FlowProvider,
	directory port.ApproverDirectory,
	notifier port.Notifier,
	logger *zap.Logger,
) *DeadlineReminder {
	return &DeadlineReminder{
		entities:     entities,
		flows:        flows,
		directory:    directory,
		notifier:     notifier,
		logger:       logger,
		pollInterval: 15 * time.Minute,
		batchSize:    50,
		now:          time.Now,
	}
}

// Start starts the reminder loop
func (w *DeadlineReminder) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("deadline reminder is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true

	w.logger.Info("DeadlineReminder started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Int("batch_size", w.batchSize))

	go w.loop()

	return nil
}

// Stop stops the reminder loop
func (w *DeadlineReminder) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	w.isRunning = false
	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("DeadlineReminder stopped")
}

func (w *DeadlineReminder) loop() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.remind()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.remind()
		}
	}
}

// remind sends one reminder pass over the overdue backlog.
func (w *DeadlineReminder) remind() {
	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	overdue, err := w.entities.ListOverdue(ctx, w.now(), w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list overdue entities", zap.Error(err))
		return
	}
	if len(overdue) == 0 {
		return
	}

	reminded := 0
	for _, ent := range overdue {
		resolver, err := w.flows.ResolverFor(ctx, ent.Department)
		if err != nil {
			w.logger.Warn("No flow for overdue entity",
				zap.String("entity_id", ent.ID),
				zap.String("department", ent.Department),
				zap.Error(err))
			continue
		}

		role, level, err := resolver.RoleForStatus(ent.Status)
		if err != nil {
			w.logger.Warn("Overdue entity has unknown status",
				zap.String("entity_id", ent.ID),
				zap.String("status", ent.Status))
			continue
		}

		step, err := resolver.StepForStatus(ent.Status)
		if err != nil {
			continue
		}
		approvers, err := w.directory.GetApprovers(ctx, role, step.Department)
		if err != nil {
			w.logger.Warn("No approvers to remind",
				zap.String("entity_id", ent.ID),
				zap.String("role", role),
				zap.Error(err))
			continue
		}

		w.notifier.Notify(ctx, port.EventApprovalOverdue, ent, approvers, port.NotificationInfo{
			Level:    level,
			Deadline: ent.CurrentLevelDeadline,
		})
		reminded++
	}

	w.logger.Info("Deadline reminders sent",
		zap.Int("overdue", len(overdue)),
		zap.Int("reminded", reminded))
}
