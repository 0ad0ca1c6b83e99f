// Package notification fans approval events out to their recipients over
// email and SMS. Delivery is strictly best-effort: the state transition a
// notification reports on has already committed, so channel failures are
// logged and swallowed, never propagated.
package notification

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// Dispatcher implements port.Notifier over an email and an SMS channel.
type Dispatcher struct {
	email  EmailSender
	sms    SMSSender
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher over the two channels.
func NewDispatcher(email EmailSender, sms SMSSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		email:  email,
		sms:    sms,
		logger: logger,
	}
}

// Notify sends the event to every recipient on both channels. Each
// recipient gets an independent email and SMS dispatch running
// concurrently; the call returns once the whole batch settles. A failed
// channel never blocks the other, and no failure reaches the caller.
func (d *Dispatcher) Notify(ctx context.Context, event port.NotificationEvent, e *entity.WorkflowEntity, recipients []*entity.User, info port.NotificationInfo) {
	if len(recipients) == 0 {
		return
	}

	msg := buildMessage(event, e, info)

	var wg sync.WaitGroup
	for _, recipient := range recipients {
		if recipient == nil {
			continue
		}

		if recipient.Email != "" {
			wg.Add(1)
			go func(r *entity.User) {
				defer wg.Done()
				if err := d.email.SendEmail(ctx, r.Email, msg.Subject, msg.Body); err != nil {
					d.logger.Warn("email notification failed",
						zap.String("entity_id", e.ID),
						zap.String("event", string(event)),
						zap.String("recipient", r.ID),
						zap.Error(err))
				}
			}(recipient)
		}

		if recipient.PhoneNumber != "" {
			wg.Add(1)
			go func(r *entity.User) {
				defer wg.Done()
				if err := d.sms.SendSMS(ctx, r.PhoneNumber, msg.SMS); err != nil {
					d.logger.Warn("sms notification failed",
						zap.String("entity_id", e.ID),
						zap.String("event", string(event)),
						zap.String("recipient", r.ID),
						zap.Error(err))
				}
			}(recipient)
		}
	}
	wg.Wait()
}
