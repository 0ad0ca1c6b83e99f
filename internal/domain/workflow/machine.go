package workflow

import "context"

// StateMachine tracks a current state and validates trigger-driven
// transitions against the configuration it was built with.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger

	// Knows reports whether the state was configured into the machine,
	// either as a transition source or target
	Knows(state State) bool
}
