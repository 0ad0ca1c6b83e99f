package port

import (
	"context"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/internal/domain/flow"
)

// ApproverDirectory resolves actors and approver sets for the engine.
type ApproverDirectory interface {
	// GetUser returns the user or (nil, nil) when unknown.
	GetUser(ctx context.Context, id string) (*entity.User, error)

	// GetApprovers returns the non-empty set of active users authorized to
	// act at the given flow role, optionally scoped to a department. An
	// empty result is an error: a pending level nobody can act on must
	// block the transition that would create it.
	GetApprovers(ctx context.Context, role, department string) ([]*entity.User, error)

	// PermissionRole maps a flow role onto the permission role an actor
	// must hold; flow roles map to themselves unless remapped.
	PermissionRole(role string) string
}

// FlowProvider hands out a resolver for a department's active flow.
type FlowProvider interface {
	ResolverFor(ctx context.Context, department string) (*flow.Resolver, error)
}
