package engine

import "errors"

var (
	// ErrNotFound is returned when an entity, flow or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when the requested operation is not
	// allowed from the entity's current status, or the flow cannot resolve
	// a next step for it.
	ErrInvalidTransition = errors.New("operation not allowed from current status")

	// ErrForbidden is returned when the actor lacks the role required at
	// the current level. The message is deliberately generic.
	ErrForbidden = errors.New("actor is not authorized for this action")

	// ErrNoApprovers is returned before any write when a transition would
	// leave the entity pending on a level no active user can act on.
	ErrNoApprovers = errors.New("no approvers available for the next level")

	// ErrStatusConflict is returned when a concurrent transition changed
	// the entity's status between read and write; nothing was applied.
	ErrStatusConflict = errors.New("entity was modified concurrently")

	// ErrValidation is returned when the request payload is structurally
	// invalid (missing payment fields, unknown entity type).
	ErrValidation = errors.New("invalid request")
)
