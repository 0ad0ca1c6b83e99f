package flow

import (
	"fmt"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// ValidateTemplate checks the structural rules enforced on every flow
// template at write time and again at load time:
//
//   - at least one step, numbered contiguously from 1
//   - no role appears twice (pending statuses must be unambiguous)
//   - every step's nextStatus is either the literal "approved" or the
//     pending status of some step in the same template
//   - the final step's nextStatus is the literal "approved"
//
// A step's nextStatus is deliberately not required to name step n+1: the
// resulting status comes from the current step while the notified role
// comes from the following step, and flows may rely on that split.
func ValidateTemplate(tpl *entity.ApprovalFlowTemplate) error {
	if tpl == nil {
		return fmt.Errorf("%w: template is nil", ErrInvalidFlow)
	}
	if tpl.Department == "" {
		return fmt.Errorf("%w: department is required", ErrInvalidFlow)
	}
	if len(tpl.Steps) == 0 {
		return fmt.Errorf("%w: department %s has no steps", ErrInvalidFlow, tpl.Department)
	}

	seenNumbers := make(map[int]bool, len(tpl.Steps))
	seenRoles := make(map[string]bool, len(tpl.Steps))
	pendingSet := make(map[string]bool, len(tpl.Steps))
	for _, s := range tpl.Steps {
		if s.Role == "" {
			return fmt.Errorf("%w: step %d has no role", ErrInvalidFlow, s.StepNumber)
		}
		if seenNumbers[s.StepNumber] {
			return fmt.Errorf("%w: duplicate step number %d", ErrInvalidFlow, s.StepNumber)
		}
		if seenRoles[s.Role] {
			return fmt.Errorf("%w: role %s appears more than once", ErrInvalidFlow, s.Role)
		}
		seenNumbers[s.StepNumber] = true
		seenRoles[s.Role] = true
		pendingSet[s.PendingStatus()] = true
	}

	for n := 1; n <= len(tpl.Steps); n++ {
		step, ok := tpl.StepAt(n)
		if !ok {
			return fmt.Errorf("%w: step numbers must be contiguous from 1, missing %d", ErrInvalidFlow, n)
		}

		if step.NextStatus == entity.NextStatusApproved {
			continue
		}
		if n == len(tpl.Steps) {
			return fmt.Errorf("%w: final step %d must declare next status %q, got %q",
				ErrInvalidFlow, n, entity.NextStatusApproved, step.NextStatus)
		}
		if !pendingSet[step.NextStatus] {
			return fmt.Errorf("%w: step %d next status %q is not a pending status of this flow",
				ErrInvalidFlow, n, step.NextStatus)
		}
	}
	return nil
}
