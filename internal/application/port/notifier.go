package port

import (
	"context"
	"time"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// NotificationEvent identifies why a notification is being sent; the
// dispatcher chooses wording per event.
type NotificationEvent string

const (
	EventCreated           NotificationEvent = "created"
	EventSubmitted         NotificationEvent = "submitted"
	EventApprovalAdvanced  NotificationEvent = "approval_advanced"
	EventFinalApproval     NotificationEvent = "final_approval"
	EventRejected          NotificationEvent = "rejected"
	EventRevisionRequested NotificationEvent = "revision_requested"
	EventPaid              NotificationEvent = "paid"
	EventCancelled         NotificationEvent = "cancelled"
	EventApprovalOverdue   NotificationEvent = "approval_overdue"
)

// NotificationInfo carries the transition context the message templates
// render from.
type NotificationInfo struct {
	ActorID  string
	Level    int
	Deadline *time.Time
	Reason   string
	Comments string
}

// Notifier fans a notification out to the recipients over every channel.
// It is strictly best-effort: it returns nothing, swallows channel
// failures and must never be allowed to influence the outcome of the
// already-committed transition it reports on.
type Notifier interface {
	Notify(ctx context.Context, event NotificationEvent, e *entity.WorkflowEntity, recipients []*entity.User, info NotificationInfo)
}
