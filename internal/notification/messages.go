package notification

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// Message is the rendered content for one event, with a short SMS variant.
type Message struct {
	Subject string
	Body    string
	SMS     string
}

func buildMessage(event port.NotificationEvent, e *entity.WorkflowEntity, info port.NotificationInfo) Message {
	label := entityLabel(e)

	switch event {
	case port.EventCreated:
		subject := fmt.Sprintf("New %s awaiting your approval", e.Type)
		body := fmt.Sprintf("%s was created in department %s and is awaiting level %d approval.%s",
			label, e.Department, info.Level, deadlineSentence(info.Deadline))
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s awaits your approval%s", label, deadlineClause(info.Deadline))}

	case port.EventSubmitted:
		subject := fmt.Sprintf("%s submitted for your approval", titleCase(e.Type.String()))
		body := fmt.Sprintf("%s was submitted for level %d approval.%s",
			label, info.Level, deadlineSentence(info.Deadline))
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s submitted for your approval%s", label, deadlineClause(info.Deadline))}

	case port.EventApprovalAdvanced:
		subject := fmt.Sprintf("%s awaiting your approval", titleCase(e.Type.String()))
		body := fmt.Sprintf("%s passed the previous level and now awaits level %d approval.%s",
			label, info.Level, deadlineSentence(info.Deadline))
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s awaits your approval%s", label, deadlineClause(info.Deadline))}

	case port.EventFinalApproval:
		subject := fmt.Sprintf("%s fully approved", titleCase(e.Type.String()))
		body := fmt.Sprintf("%s has passed every approval level and is now approved.", label)
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s has been approved", label)}

	case port.EventRejected:
		subject := fmt.Sprintf("%s rejected", titleCase(e.Type.String()))
		body := fmt.Sprintf("%s was rejected at level %d. Reason: %s", label, info.Level, info.Reason)
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s was rejected: %s", label, info.Reason)}

	case port.EventRevisionRequested:
		subject := fmt.Sprintf("Revision requested on your %s", e.Type)
		body := fmt.Sprintf("The level %d approver requested changes to %s. Reason: %s. Resubmit once amended; approval resumes at the same level.",
			info.Level, label, info.Reason)
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("Revision requested on %s: %s", label, info.Reason)}

	case port.EventPaid:
		subject := fmt.Sprintf("%s settled", titleCase(e.Type.String()))
		body := fmt.Sprintf("%s has been settled and marked %s.", label, e.Status)
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s has been marked %s", label, e.Status)}

	case port.EventCancelled:
		subject := fmt.Sprintf("%s cancelled", titleCase(e.Type.String()))
		body := fmt.Sprintf("%s was cancelled and will not proceed.", label)
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s was cancelled", label)}

	case port.EventApprovalOverdue:
		subject := fmt.Sprintf("Overdue: %s still awaiting your approval", e.Type)
		body := fmt.Sprintf("%s has been waiting at level %d beyond its review window. Please approve, reject or request a revision.",
			label, info.Level)
		return Message{Subject: subject, Body: body,
			SMS: fmt.Sprintf("%s is overdue for your approval", label)}
	}

	subject := fmt.Sprintf("Update on %s", label)
	return Message{Subject: subject, Body: subject, SMS: subject}
}

func entityLabel(e *entity.WorkflowEntity) string {
	return fmt.Sprintf("%s %q (%s)", e.Type, e.Title, e.ID)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// deadlineSentence renders the SLA window as a human duration, e.g.
// "Please act within 2 days."
func deadlineSentence(deadline *time.Time) string {
	window := deadlineWindow(deadline)
	if window == "" {
		return ""
	}
	return fmt.Sprintf(" Please act within %s.", window)
}

func deadlineClause(deadline *time.Time) string {
	window := deadlineWindow(deadline)
	if window == "" {
		return ""
	}
	return fmt.Sprintf(" (due in %s)", window)
}

func deadlineWindow(deadline *time.Time) string {
	if deadline == nil {
		return ""
	}
	remaining := time.Until(*deadline)
	if remaining <= 0 {
		return ""
	}
	return durafmt.Parse(remaining.Round(time.Minute)).LimitFirstN(2).String()
}
