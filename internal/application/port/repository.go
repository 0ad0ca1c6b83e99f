// Package port defines the interfaces the application layer consumes.
// Implementations live in internal/infrastructure; tests supply mocks.
package port

import (
	"context"
	"errors"
	"time"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// ErrStaleStatus is returned by ApplyTransition when the entity's status
// no longer matches the expected value, meaning another transition won the
// race. Nothing is written in that case.
var ErrStaleStatus = errors.New("entity status changed concurrently")

// TransitionPatch is the single-write mutation applied by one accepted
// transition. Every field is optional except Status; the audit entry is
// written in the same transaction as the status change so that a committed
// transition always has exactly one trail entry.
type TransitionPatch struct {
	Status string

	SetDeadline   *time.Time
	ClearDeadline bool

	ApprovalRecord       *entity.ApprovalRecord
	Rejection            *entity.Rejection
	RevisionRequest      *entity.RevisionRequest
	ClearRevisionRequest bool
	Payment              *entity.Payment

	IncrementVersion bool

	Audit entity.AuditEntry
}

// EntityRepository persists workflow entities. GetByID returns (nil, nil)
// when no entity exists; callers translate that into their own not-found
// error.
type EntityRepository interface {
	Create(ctx context.Context, e *entity.WorkflowEntity, audit entity.AuditEntry) error
	GetByID(ctx context.Context, id string) (*entity.WorkflowEntity, error)
	List(ctx context.Context, entityType entity.Type, limit, offset int) ([]*entity.WorkflowEntity, error)

	// ApplyTransition performs the atomic compare-and-swap update: the
	// patch commits only if the stored status still equals expectedStatus,
	// otherwise ErrStaleStatus is returned and nothing is written.
	ApplyTransition(ctx context.Context, id, expectedStatus string, patch TransitionPatch) error

	// Delete hard-removes the entity together with its approval records
	// and audit trail.
	Delete(ctx context.Context, id string) error
}

// FlowRepository persists approval flow templates.
type FlowRepository interface {
	GetActiveByDepartment(ctx context.Context, department string) (*entity.ApprovalFlowTemplate, error)
	Upsert(ctx context.Context, tpl *entity.ApprovalFlowTemplate) error
	List(ctx context.Context) ([]*entity.ApprovalFlowTemplate, error)
}

// UserRepository reads the identity directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// FindActiveByRole returns active users holding the permission role,
	// scoped to department when department is non-empty.
	FindActiveByRole(ctx context.Context, role, department string) ([]*entity.User, error)
}

// AuditRepository records and reads an entity's history. Transition
// entries are appended inside EntityRepository transactions; Append is for
// non-transition events (contract acceptance). The trail is never edited
// after the fact.
type AuditRepository interface {
	Append(ctx context.Context, e entity.AuditEntry) error
	ListByEntityID(ctx context.Context, entityID string) ([]entity.AuditEntry, error)
}
