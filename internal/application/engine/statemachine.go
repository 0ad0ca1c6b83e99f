package engine

import (
	"context"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/internal/domain/flow"
	"github.com/mwangaza-erp/approvalflow/internal/domain/workflow"
)

type returnTargetKey struct{}

// withReturnTarget marks the pending status a revision-suspended entity
// resumes at; the guarded submit transitions read it back out.
func withReturnTarget(ctx context.Context, status string) context.Context {
	return context.WithValue(ctx, returnTargetKey{}, status)
}

func returnTargetGuard(status string) workflow.GuardFunc {
	return func(ctx context.Context) bool {
		target, _ := ctx.Value(returnTargetKey{}).(string)
		return target == status
	}
}

// buildMachine assembles the state machine for one entity under one
// department flow. States are the flow's pending set plus the shared
// lifecycle states; targets of approve come from the resolver so the
// machine always agrees with the flow template.
func buildMachine(r *flow.Resolver, cfg TypeConfig, initial string) (workflow.StateMachine, error) {
	b := workflow.NewBuilder()

	draft := workflow.State(entity.StatusDraft)
	rejected := workflow.State(entity.StatusRejected)
	cancelled := workflow.State(entity.StatusCancelled)
	revision := workflow.State(entity.StatusRevisionRequested)
	approved := workflow.State(entity.StatusApproved)

	first, err := r.NextStep(entity.StatusDraft)
	if err != nil {
		return nil, err
	}
	b.Configure(draft).
		Permit(workflow.TriggerSubmit, workflow.State(first.NextStatus)).
		Permit(workflow.TriggerCancel, cancelled)

	for _, status := range r.PendingStatuses() {
		tr, err := r.NextStep(status)
		if err != nil {
			return nil, err
		}
		b.Configure(workflow.State(status)).
			Permit(workflow.TriggerApprove, workflow.State(tr.NextStatus)).
			Permit(workflow.TriggerReject, rejected).
			Permit(workflow.TriggerRequestRevision, revision).
			Permit(workflow.TriggerCancel, cancelled)

		// Resubmission resumes at the exact pending state recorded in the
		// revision request, never at the head of the flow.
		b.Configure(revision).
			PermitIf(workflow.TriggerSubmit, workflow.State(status), returnTargetGuard(status))
	}

	b.Configure(approved).
		Permit(workflow.TriggerMarkPaid, workflow.State(cfg.SettledStatus))

	return b.Build(workflow.State(initial))
}
