package entity

import "time"

// Type identifies which financial request kind a WorkflowEntity carries.
// Every type shares the same transition logic; only configuration differs.
type Type string

const (
	TypeClaim    Type = "claim"
	TypeBudget   Type = "budget"
	TypeContract Type = "contract"
	TypeInvoice  Type = "invoice"
)

// IsValid returns true for one of the four registered entity types.
func (t Type) IsValid() bool {
	switch t {
	case TypeClaim, TypeBudget, TypeContract, TypeInvoice:
		return true
	}
	return false
}

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// WorkflowEntity is the shared shape of claims, budgets, contracts and
// invoices as the approval engine sees them. Fields the engine does not
// read or write (line items, attachments, document bodies) live with the
// owning service, not here.
type WorkflowEntity struct {
	ID          string
	Type        Type
	Department  string
	Title       string
	Description string
	Amount      float64
	Originator  string

	Status               string
	Version              int64
	CurrentLevelDeadline *time.Time

	// ApprovalRecords is keyed by flow role; a role's record is written
	// exactly once, when that level approves.
	ApprovalRecords map[string]ApprovalRecord

	Rejection       *Rejection
	RevisionRequest *RevisionRequest
	Payment         *Payment

	AuditTrail []AuditEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApprovalRecord captures one level's sign-off.
type ApprovalRecord struct {
	Role       string
	ApprovedBy string
	ApprovedAt time.Time
	Comments   string
	Department string
}

// Rejection captures the terminal rejection of an entity.
type Rejection struct {
	RejectedBy string
	Reason     string
	Level      int
	RejectedAt time.Time
}

// RevisionRequest suspends an entity at a pending level so the originator
// can amend and resubmit. ReturnToStatus/ReturnToLevel record the exact
// point of resumption; a resubmit never restarts the flow.
type RevisionRequest struct {
	RequestedBy    string
	Reason         string
	Comments       string
	ReturnToStatus string
	ReturnToLevel  int
	RequestedAt    time.Time
}

// Payment is the settlement block recorded by markPaid.
type Payment struct {
	Method           string
	TransactionID    string
	PaymentAdviceURL string
	PaidBy           string
	PaidAt           time.Time
}

// AuditEntry is one immutable line of an entity's history.
type AuditEntry struct {
	ID          int64
	EntityID    string
	Action      string
	PerformedBy string
	PerformedAt time.Time
	Details     string
}

// IsTerminal reports whether no further flow-driven transition can occur
// from the given status without an explicit cancel or delete.
func IsTerminal(status string) bool {
	switch status {
	case StatusRejected, StatusCancelled, StatusPaid, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// HasPayment reports whether a settlement has been recorded.
func (e *WorkflowEntity) HasPayment() bool {
	return e.Payment != nil
}
