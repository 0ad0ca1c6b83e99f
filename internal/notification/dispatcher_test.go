package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

type fakeEmail struct {
	mu  sync.Mutex
	to  []string
	err error
}

func (f *fakeEmail) SendEmail(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	return nil
}

type fakeSMS struct {
	mu   sync.Mutex
	to   []string
	body []string
	err  error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.body = append(f.body, body)
	return nil
}

func testEntity() *entity.WorkflowEntity {
	return &entity.WorkflowEntity{
		ID:     "ent-1",
		Type:   entity.TypeClaim,
		Title:  "Field travel reimbursement",
		Status: "pending_hod_approval",
	}
}

func TestDispatcher_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("every recipient gets both channels", func(t *testing.T) {
		email := &fakeEmail{}
		sms := &fakeSMS{}
		logger, _ := zap.NewDevelopment()
		d := NewDispatcher(email, sms, logger)

		d.Notify(ctx, port.EventSubmitted, testEntity(), []*entity.User{
			{ID: "u1", Email: "u1@mwangaza.org", PhoneNumber: "+254700000001"},
			{ID: "u2", Email: "u2@mwangaza.org", PhoneNumber: "+254700000002"},
		}, port.NotificationInfo{Level: 1})

		assert.ElementsMatch(t, []string{"u1@mwangaza.org", "u2@mwangaza.org"}, email.to)
		assert.ElementsMatch(t, []string{"+254700000001", "+254700000002"}, sms.to)
	})

	t.Run("recipient without a phone gets email only", func(t *testing.T) {
		email := &fakeEmail{}
		sms := &fakeSMS{}
		logger, _ := zap.NewDevelopment()
		d := NewDispatcher(email, sms, logger)

		d.Notify(ctx, port.EventSubmitted, testEntity(), []*entity.User{
			{ID: "u1", Email: "u1@mwangaza.org"},
		}, port.NotificationInfo{})

		assert.Equal(t, []string{"u1@mwangaza.org"}, email.to)
		assert.Empty(t, sms.to)
	})

	t.Run("a failing channel never blocks the other", func(t *testing.T) {
		email := &fakeEmail{err: errors.New("relay refused")}
		sms := &fakeSMS{}
		logger, _ := zap.NewDevelopment()
		d := NewDispatcher(email, sms, logger)

		// Must not panic and must not propagate the failure.
		d.Notify(ctx, port.EventRejected, testEntity(), []*entity.User{
			{ID: "u1", Email: "u1@mwangaza.org", PhoneNumber: "+254700000001"},
		}, port.NotificationInfo{Reason: "no receipts"})

		assert.Equal(t, []string{"+254700000001"}, sms.to)
	})

	t.Run("no recipients is a no-op", func(t *testing.T) {
		email := &fakeEmail{}
		sms := &fakeSMS{}
		logger, _ := zap.NewDevelopment()
		d := NewDispatcher(email, sms, logger)

		d.Notify(ctx, port.EventCreated, testEntity(), nil, port.NotificationInfo{})

		assert.Empty(t, email.to)
		assert.Empty(t, sms.to)
	})
}

func TestBuildMessage(t *testing.T) {
	e := testEntity()

	tests := []struct {
		event port.NotificationEvent
		info  port.NotificationInfo
	}{
		{event: port.EventCreated, info: port.NotificationInfo{Level: 1}},
		{event: port.EventSubmitted, info: port.NotificationInfo{Level: 1}},
		{event: port.EventApprovalAdvanced, info: port.NotificationInfo{Level: 2}},
		{event: port.EventFinalApproval, info: port.NotificationInfo{}},
		{event: port.EventRejected, info: port.NotificationInfo{Reason: "no receipts"}},
		{event: port.EventRevisionRequested, info: port.NotificationInfo{Reason: "fix totals"}},
		{event: port.EventPaid, info: port.NotificationInfo{}},
		{event: port.EventCancelled, info: port.NotificationInfo{}},
		{event: port.EventApprovalOverdue, info: port.NotificationInfo{Level: 2}},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			msg := buildMessage(tt.event, e, tt.info)
			require.NotEmpty(t, msg.Subject)
			require.NotEmpty(t, msg.Body)
			require.NotEmpty(t, msg.SMS)
			assert.Contains(t, msg.Body, e.Title)
		})
	}
}
