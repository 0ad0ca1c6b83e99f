// Package flow computes approval-chain transitions from a department's
// registered flow template. A Resolver is built once per template; from
// then on every status lookup goes through an explicit status-to-step
// table, never through parsing the status string back into a role.
package flow

import (
	"errors"
	"fmt"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

var (
	// ErrFlowNotFound is returned when a department has no active flow.
	ErrFlowNotFound = errors.New("no active approval flow for department")

	// ErrInvalidFlow is returned when a template fails structural validation.
	ErrInvalidFlow = errors.New("invalid approval flow template")

	// ErrUnknownStatus is returned when a status does not belong to the
	// resolver's flow. An entity carrying such a status is in a flow error
	// state and no transition may be derived from it.
	ErrUnknownStatus = errors.New("status does not belong to approval flow")
)

// Transition is the outcome of resolving one approval step.
//
// NextStatus is decided by the step the entity currently sits at; the role
// to notify is decided by the step after it. The two only coincide when the
// chain is linear, which is why both are carried explicitly.
type Transition struct {
	NextStatus       string
	NotifyRole       string
	NotifyDepartment string
	NextLevel        int
	Terminal         bool
}

// Resolver answers next-step questions for a single department's flow.
type Resolver struct {
	template      *entity.ApprovalFlowTemplate
	stepByStatus  map[string]entity.FlowStep
	roleByStatus  map[string]string
	levelByStatus map[string]int
}

// NewResolver validates the template and precomputes the status lookup
// tables. The validation rules mirror what upsert enforces at write time,
// so a stored template that loads here is always resolvable.
func NewResolver(tpl *entity.ApprovalFlowTemplate) (*Resolver, error) {
	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	r := &Resolver{
		template:      tpl,
		stepByStatus:  make(map[string]entity.FlowStep, len(tpl.Steps)),
		roleByStatus:  make(map[string]string, len(tpl.Steps)),
		levelByStatus: make(map[string]int, len(tpl.Steps)),
	}
	for _, s := range tpl.Steps {
		status := s.PendingStatus()
		r.stepByStatus[status] = s
		r.roleByStatus[status] = s.Role
		r.levelByStatus[status] = s.StepNumber
	}
	return r, nil
}

// Template returns the template the resolver was built from.
func (r *Resolver) Template() *entity.ApprovalFlowTemplate {
	return r.template
}

// Department returns the department the flow is scoped to.
func (r *Resolver) Department() string {
	return r.template.Department
}

// PendingStatuses returns every pending status of the flow in step order.
func (r *Resolver) PendingStatuses() []string {
	statuses := make([]string, 0, len(r.template.Steps))
	for i := 1; i <= len(r.template.Steps); i++ {
		step, _ := r.template.StepAt(i)
		statuses = append(statuses, step.PendingStatus())
	}
	return statuses
}

// IsPendingStatus reports whether the status belongs to this flow's
// pending set.
func (r *Resolver) IsPendingStatus(status string) bool {
	_, ok := r.stepByStatus[status]
	return ok
}

// RoleForStatus returns the role and level gating the given pending
// status, looked up from the table built at load time.
func (r *Resolver) RoleForStatus(status string) (role string, level int, err error) {
	role, ok := r.roleByStatus[status]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrUnknownStatus, status)
	}
	return role, r.levelByStatus[status], nil
}

// StepForStatus returns the full step gating the given pending status.
func (r *Resolver) StepForStatus(status string) (entity.FlowStep, error) {
	step, ok := r.stepByStatus[status]
	if !ok {
		return entity.FlowStep{}, fmt.Errorf("%w: %s", ErrUnknownStatus, status)
	}
	return step, nil
}

// NextStep resolves the transition out of currentStatus.
//
// From draft the entity enters the first step's pending status and that
// step's role is notified. From a pending status, the matched step's own
// NextStatus is applied; if it is the literal "approved" the transition is
// terminal, otherwise the role of the following step is the one to notify.
// A status not covered by the flow yields ErrUnknownStatus and the caller
// must refuse the transition.
func (r *Resolver) NextStep(currentStatus string) (*Transition, error) {
	if currentStatus == entity.StatusDraft {
		first, ok := r.template.FirstStep()
		if !ok {
			return nil, fmt.Errorf("%w: department %s has no steps", ErrInvalidFlow, r.template.Department)
		}
		return &Transition{
			NextStatus:       first.PendingStatus(),
			NotifyRole:       first.Role,
			NotifyDepartment: first.Department,
			NextLevel:        first.StepNumber,
		}, nil
	}

	current, ok := r.stepByStatus[currentStatus]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, currentStatus)
	}

	if current.NextStatus == entity.NextStatusApproved {
		return &Transition{
			NextStatus: entity.StatusApproved,
			Terminal:   true,
		}, nil
	}

	next, ok := r.template.StepAt(current.StepNumber + 1)
	if !ok {
		return nil, fmt.Errorf("%w: step %d declares next status %q but step %d does not exist",
			ErrInvalidFlow, current.StepNumber, current.NextStatus, current.StepNumber+1)
	}
	return &Transition{
		NextStatus:       current.NextStatus,
		NotifyRole:       next.Role,
		NotifyDepartment: next.Department,
		NextLevel:        next.StepNumber,
	}, nil
}
