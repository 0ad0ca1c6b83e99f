package notification

import "context"

// EmailSender is the call contract of the email delivery channel. The
// transport behind it (relay, provider API) is external to this system.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the call contract of the SMS delivery channel.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}
