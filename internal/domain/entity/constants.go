package entity

// Lifecycle statuses shared by every entity type. Pending statuses are not
// listed here because they are synthesized from the department's flow
// (pending_<role>_approval); the full status enum for a given entity is the
// union of these values and the flow-derived pending set.
const (
	StatusDraft             = "draft"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"
	StatusPaid              = "paid"
	StatusActive            = "active"
	StatusCompleted         = "completed"
	StatusCancelled         = "cancelled"
	StatusRevisionRequested = "revision_requested"
)

// Audit trail actions. One action is recorded per successful transition.
const (
	ActionCreated           = "CREATED"
	ActionSubmitted         = "SUBMITTED_FOR_APPROVAL"
	ActionApproved          = "APPROVED"
	ActionRejected          = "REJECTED"
	ActionRevisionRequested = "REVISION_REQUESTED"
	ActionMarkedAsPaid      = "MARKED_AS_PAID"
	ActionCancelled         = "CANCELLED"
	ActionContractAccepted  = "CONTRACT_ACCEPTED"
)

// RoleAdmin short-circuits cancel authorization regardless of flow role.
const RoleAdmin = "admin"
