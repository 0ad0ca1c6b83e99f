package entity

import (
	"fmt"
	"time"
)

// NextStatusApproved is the literal terminal value a flow step may declare
// as its nextStatus. Anything else must match another step's pending status.
const NextStatusApproved = StatusApproved

// ApprovalFlowTemplate is the ordered approval chain registered for a
// department. At most one active template exists per department.
type ApprovalFlowTemplate struct {
	ID          string
	Department  string
	Description string
	IsActive    bool
	Steps       []FlowStep
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FlowStep is one level of the chain. Role names the actor category that
// must act at this level; NextStatus is where the entity goes once this
// level approves.
type FlowStep struct {
	StepNumber  int    `validate:"required,min=1"`
	Role        string `validate:"required"`
	Department  string `validate:"required"`
	Description string
	NextStatus  string `validate:"required"`
}

// PendingStatus synthesizes the pending status gating the given role.
// Multi-word roles (head_of_programs) round-trip safely because the role
// is never recovered by splitting this string; see flow.Resolver.
func PendingStatus(role string) string {
	return fmt.Sprintf("pending_%s_approval", role)
}

// PendingStatusFor returns the pending status of the step.
func (s FlowStep) PendingStatus() string {
	return PendingStatus(s.Role)
}

// FirstStep returns the step numbered 1, or false when the template is empty.
func (t *ApprovalFlowTemplate) FirstStep() (FlowStep, bool) {
	for _, s := range t.Steps {
		if s.StepNumber == 1 {
			return s, true
		}
	}
	return FlowStep{}, false
}

// StepAt returns the step with the given number, or false.
func (t *ApprovalFlowTemplate) StepAt(number int) (FlowStep, bool) {
	for _, s := range t.Steps {
		if s.StepNumber == number {
			return s, true
		}
	}
	return FlowStep{}, false
}
