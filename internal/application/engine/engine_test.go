package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/internal/domain/flow"
)

// --- Mocks ---

type mockEntityRepo struct {
	entities map[string]*entity.WorkflowEntity
	audits   *mockAuditRepo
	applied  []port.TransitionPatch
	deleted  []string
	applyErr error
}

func (m *mockEntityRepo) Create(ctx context.Context, e *entity.WorkflowEntity, audit entity.AuditEntry) error {
	e.AuditTrail = append(e.AuditTrail, audit)
	m.entities[e.ID] = e
	m.audits.entries = append(m.audits.entries, audit)
	return nil
}

func (m *mockEntityRepo) GetByID(ctx context.Context, id string) (*entity.WorkflowEntity, error) {
	return m.entities[id], nil
}

func (m *mockEntityRepo) List(ctx context.Context, entityType entity.Type, limit, offset int) ([]*entity.WorkflowEntity, error) {
	var out []*entity.WorkflowEntity
	for _, e := range m.entities {
		if e.Type == entityType {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntityRepo) ApplyTransition(ctx context.Context, id, expectedStatus string, patch port.TransitionPatch) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	e, ok := m.entities[id]
	if !ok || e.Status != expectedStatus {
		return port.ErrStaleStatus
	}
	m.applied = append(m.applied, patch)
	m.audits.entries = append(m.audits.entries, patch.Audit)
	return nil
}

func (m *mockEntityRepo) Delete(ctx context.Context, id string) error {
	delete(m.entities, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAuditRepo struct {
	entries []entity.AuditEntry
}

func (m *mockAuditRepo) Append(ctx context.Context, e entity.AuditEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditRepo) ListByEntityID(ctx context.Context, entityID string) ([]entity.AuditEntry, error) {
	var out []entity.AuditEntry
	for _, e := range m.entries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockFlowProvider struct {
	resolvers map[string]*flow.Resolver
}

func (m *mockFlowProvider) ResolverFor(ctx context.Context, department string) (*flow.Resolver, error) {
	r, ok := m.resolvers[department]
	if !ok {
		return nil, fmt.Errorf("%w: %s", flow.ErrFlowNotFound, department)
	}
	return r, nil
}

type mockDirectory struct {
	users map[string]*entity.User
}

func (m *mockDirectory) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return m.users[id], nil
}

func (m *mockDirectory) PermissionRole(role string) string {
	return role
}

func (m *mockDirectory) GetApprovers(ctx context.Context, role, department string) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range m.users {
		if u.IsActive() && u.HasRole(role) && (department == "" || u.Department == department) {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: role %s department %q", ErrNoApprovers, role, department)
	}
	return out, nil
}

type notifierCall struct {
	event      port.NotificationEvent
	entityID   string
	status     string
	recipients []string
	info       port.NotificationInfo
}

type mockNotifier struct {
	calls []notifierCall
}

func (m *mockNotifier) Notify(ctx context.Context, event port.NotificationEvent, e *entity.WorkflowEntity, recipients []*entity.User, info port.NotificationInfo) {
	ids := make([]string, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.ID)
	}
	m.calls = append(m.calls, notifierCall{
		event:      event,
		entityID:   e.ID,
		status:     e.Status,
		recipients: ids,
		info:       info,
	})
}

func (m *mockNotifier) last() notifierCall {
	return m.calls[len(m.calls)-1]
}

// --- Fixture ---

type fixture struct {
	engine    *Engine
	entities  *mockEntityRepo
	audits    *mockAuditRepo
	directory *mockDirectory
	notifier  *mockNotifier
	now       time.Time
}

// programmesFlow is a three-level chain: head of department, then finance
// officer in the finance department, then director.
func programmesFlow(t *testing.T) *flow.Resolver {
	t.Helper()
	r, err := flow.NewResolver(&entity.ApprovalFlowTemplate{
		ID:         "flow-programmes",
		Department: "programmes",
		IsActive:   true,
		Steps: []entity.FlowStep{
			{StepNumber: 1, Role: "hod", Department: "programmes", NextStatus: "pending_finance_officer_approval"},
			{StepNumber: 2, Role: "finance_officer", Department: "finance", NextStatus: "pending_director_approval"},
			{StepNumber: 3, Role: "director", Department: "operations", NextStatus: "approved"},
		},
	})
	require.NoError(t, err)
	return r
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	audits := &mockAuditRepo{}
	entities := &mockEntityRepo{
		entities: make(map[string]*entity.WorkflowEntity),
		audits:   audits,
	}
	directory := &mockDirectory{users: map[string]*entity.User{
		"user-alice": {ID: "user-alice", Name: "Alice", Email: "alice@mwangaza.org", Department: "programmes", Status: entity.UserStatusActive, Roles: []string{"staff"}},
		"user-hod":   {ID: "user-hod", Name: "Harriet", Email: "harriet@mwangaza.org", Department: "programmes", Status: entity.UserStatusActive, Roles: []string{"hod"}},
		"user-fin":   {ID: "user-fin", Name: "Frank", Email: "frank@mwangaza.org", Department: "finance", Status: entity.UserStatusActive, Roles: []string{"finance_officer"}},
		"user-dir":   {ID: "user-dir", Name: "Dora", Email: "dora@mwangaza.org", Department: "operations", Status: entity.UserStatusActive, Roles: []string{"director"}},
		"user-admin": {ID: "user-admin", Name: "Ada", Email: "ada@mwangaza.org", Department: "operations", Status: entity.UserStatusActive, Roles: []string{entity.RoleAdmin}},
		"user-pm":    {ID: "user-pm", Name: "Peter", Email: "peter@mwangaza.org", Department: "programmes", Status: entity.UserStatusActive, Roles: []string{"project_manager"}},
	}}
	notifier := &mockNotifier{}
	flows := &mockFlowProvider{resolvers: map[string]*flow.Resolver{
		"programmes": programmesFlow(t),
	}}
	logger, _ := zap.NewDevelopment()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	eng := New(DefaultTypeConfigs(), entities, audits, flows, directory, notifier, logger,
		WithClock(func() time.Time { return now }))

	return &fixture{
		engine:    eng,
		entities:  entities,
		audits:    audits,
		directory: directory,
		notifier:  notifier,
		now:       now,
	}
}

func (f *fixture) createClaim(t *testing.T) *entity.WorkflowEntity {
	t.Helper()
	ent, err := f.engine.Create(context.Background(), CreateInput{
		Type:       entity.TypeClaim,
		Department: "programmes",
		Title:      "Field travel reimbursement",
		Amount:     1250.00,
	}, "user-alice")
	require.NoError(t, err)
	return ent
}

// advanceClaim creates a claim and walks it through the given number of
// approvals after submission.
func (f *fixture) advanceClaim(t *testing.T, approvals int) *entity.WorkflowEntity {
	t.Helper()
	ctx := context.Background()
	ent := f.createClaim(t)
	_, err := f.engine.Submit(ctx, ent.ID, "user-alice")
	require.NoError(t, err)

	approvers := []string{"user-hod", "user-fin", "user-dir"}
	for i := 0; i < approvals; i++ {
		_, err := f.engine.Approve(ctx, ent.ID, approvers[i], "")
		require.NoError(t, err)
	}
	return ent
}

// --- Tests ---

func TestEngine_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("claim starts in draft with no deadline", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)

		assert.Equal(t, entity.StatusDraft, ent.Status)
		assert.Equal(t, int64(1), ent.Version)
		assert.Nil(t, ent.CurrentLevelDeadline)
		assert.Equal(t, "user-alice", ent.Originator)
		assert.Empty(t, f.notifier.calls)

		require.Len(t, ent.AuditTrail, 1)
		assert.Equal(t, entity.ActionCreated, ent.AuditTrail[0].Action)
	})

	t.Run("budget starts in first pending level with deadline", func(t *testing.T) {
		f := newFixture(t)
		ent, err := f.engine.Create(ctx, CreateInput{
			Type:       entity.TypeBudget,
			Department: "programmes",
			Title:      "Q3 outreach budget",
			Amount:     80000,
		}, "user-alice")
		require.NoError(t, err)

		assert.Equal(t, "pending_hod_approval", ent.Status)
		require.NotNil(t, ent.CurrentLevelDeadline)
		assert.Equal(t, f.now.Add(48*time.Hour), *ent.CurrentLevelDeadline)

		require.Len(t, f.notifier.calls, 1)
		call := f.notifier.last()
		assert.Equal(t, port.EventCreated, call.event)
		assert.Equal(t, []string{"user-hod"}, call.recipients)
		assert.Equal(t, 1, call.info.Level)
	})

	t.Run("budget with unreachable first level is refused", func(t *testing.T) {
		f := newFixture(t)
		delete(f.directory.users, "user-hod")

		_, err := f.engine.Create(ctx, CreateInput{
			Type:       entity.TypeBudget,
			Department: "programmes",
			Title:      "Q3 outreach budget",
		}, "user-alice")
		assert.ErrorIs(t, err, ErrNoApprovers)
		assert.Empty(t, f.entities.entities)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Create(ctx, CreateInput{
			Type:       entity.TypeClaim,
			Department: "programmes",
		}, "user-alice")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown entity type is refused", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Create(ctx, CreateInput{
			Type:       entity.Type("grant"),
			Department: "programmes",
			Title:      "x",
		}, "user-alice")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("department without a flow is refused", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Create(ctx, CreateInput{
			Type:       entity.TypeClaim,
			Department: "logistics",
			Title:      "x",
		}, "user-alice")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEngine_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("draft enters first pending level", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)

		got, err := f.engine.Submit(ctx, ent.ID, "user-alice")
		require.NoError(t, err)

		assert.Equal(t, "pending_hod_approval", got.Status)
		require.NotNil(t, got.CurrentLevelDeadline)
		assert.Equal(t, f.now.Add(24*time.Hour), *got.CurrentLevelDeadline)

		call := f.notifier.last()
		assert.Equal(t, port.EventSubmitted, call.event)
		assert.Equal(t, []string{"user-hod"}, call.recipients)
	})

	t.Run("only the originator or an admin may submit", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)

		_, err := f.engine.Submit(ctx, ent.ID, "user-fin")
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.engine.Submit(ctx, ent.ID, "user-admin")
		assert.NoError(t, err)
	})

	t.Run("double submit is refused", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)

		_, err := f.engine.Submit(ctx, ent.ID, "user-alice")
		require.NoError(t, err)
		_, err = f.engine.Submit(ctx, ent.ID, "user-alice")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("no approvers at first level blocks without writing", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)
		delete(f.directory.users, "user-hod")

		_, err := f.engine.Submit(ctx, ent.ID, "user-alice")
		assert.ErrorIs(t, err, ErrNoApprovers)
		assert.Empty(t, f.entities.applied)
		assert.Equal(t, entity.StatusDraft, f.entities.entities[ent.ID].Status)
	})
}

func TestEngine_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("walks the full chain to approved", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 0)

		got, err := f.engine.Approve(ctx, ent.ID, "user-hod", "looks fine")
		require.NoError(t, err)
		assert.Equal(t, "pending_finance_officer_approval", got.Status)

		record, ok := got.ApprovalRecords["hod"]
		require.True(t, ok)
		assert.Equal(t, "user-hod", record.ApprovedBy)
		assert.Equal(t, "looks fine", record.Comments)
		assert.Equal(t, "programmes", record.Department)

		require.NotNil(t, got.CurrentLevelDeadline)
		assert.Equal(t, f.now.Add(48*time.Hour), *got.CurrentLevelDeadline)

		call := f.notifier.last()
		assert.Equal(t, port.EventApprovalAdvanced, call.event)
		assert.Equal(t, []string{"user-fin"}, call.recipients)
		assert.Equal(t, 2, call.info.Level)

		_, err = f.engine.Approve(ctx, ent.ID, "user-fin", "")
		require.NoError(t, err)
		got, err = f.engine.Approve(ctx, ent.ID, "user-dir", "")
		require.NoError(t, err)

		assert.Equal(t, entity.StatusApproved, got.Status)
		assert.Nil(t, got.CurrentLevelDeadline)
		assert.Len(t, got.ApprovalRecords, 3)

		call = f.notifier.last()
		assert.Equal(t, port.EventFinalApproval, call.event)
		assert.Equal(t, []string{"user-alice"}, call.recipients)
	})

	t.Run("actor without the level's role is refused", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 0)

		_, err := f.engine.Approve(ctx, ent.ID, "user-fin", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("inactive approver is refused", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 0)
		f.directory.users["user-hod"].Status = "disabled"

		_, err := f.engine.Approve(ctx, ent.ID, "user-hod", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("approve on a draft is refused", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)

		_, err := f.engine.Approve(ctx, ent.ID, "user-hod", "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("empty next level blocks the approval without writing", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 0)
		delete(f.directory.users, "user-fin")
		writes := len(f.entities.applied)

		_, err := f.engine.Approve(ctx, ent.ID, "user-hod", "")
		assert.ErrorIs(t, err, ErrNoApprovers)
		assert.Len(t, f.entities.applied, writes)
		assert.Equal(t, "pending_hod_approval", f.entities.entities[ent.ID].Status)
	})

	t.Run("concurrent transition surfaces as a status conflict", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 0)
		f.entities.applyErr = port.ErrStaleStatus

		_, err := f.engine.Approve(ctx, ent.ID, "user-hod", "")
		assert.ErrorIs(t, err, ErrStatusConflict)
	})
}

func TestEngine_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ent := f.advanceClaim(t, 1)

	got, err := f.engine.Reject(ctx, ent.ID, "user-fin", "no supporting receipts")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, got.Status)
	assert.Nil(t, got.CurrentLevelDeadline)
	require.NotNil(t, got.Rejection)
	assert.Equal(t, "user-fin", got.Rejection.RejectedBy)
	assert.Equal(t, 2, got.Rejection.Level)
	assert.Equal(t, "no supporting receipts", got.Rejection.Reason)

	call := f.notifier.last()
	assert.Equal(t, port.EventRejected, call.event)
	assert.Equal(t, []string{"user-alice"}, call.recipients)

	// Terminal: nothing more can happen.
	_, err = f.engine.Approve(ctx, ent.ID, "user-fin", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEngine_RevisionRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("resubmission resumes at the recorded level", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 1) // sitting at level 2 (finance officer)

		got, err := f.engine.RequestRevision(ctx, ent.ID, "user-fin", RevisionInput{
			Reason: "amounts do not match the receipts",
		})
		require.NoError(t, err)

		assert.Equal(t, entity.StatusRevisionRequested, got.Status)
		assert.Equal(t, int64(2), got.Version)
		assert.Nil(t, got.CurrentLevelDeadline)
		require.NotNil(t, got.RevisionRequest)
		assert.Equal(t, "pending_finance_officer_approval", got.RevisionRequest.ReturnToStatus)
		assert.Equal(t, 2, got.RevisionRequest.ReturnToLevel)

		call := f.notifier.last()
		assert.Equal(t, port.EventRevisionRequested, call.event)
		assert.Equal(t, []string{"user-alice"}, call.recipients)

		got, err = f.engine.Submit(ctx, ent.ID, "user-alice")
		require.NoError(t, err)

		// Resumes at level 2, not back at the head of the flow.
		assert.Equal(t, "pending_finance_officer_approval", got.Status)
		assert.Nil(t, got.RevisionRequest)
		require.NotNil(t, got.CurrentLevelDeadline)
		assert.Equal(t, f.now.Add(48*time.Hour), *got.CurrentLevelDeadline)

		call = f.notifier.last()
		assert.Equal(t, port.EventSubmitted, call.event)
		assert.Equal(t, []string{"user-fin"}, call.recipients)
		assert.Equal(t, 2, call.info.Level)

		// Level 1's sign-off survived the round trip.
		_, ok := got.ApprovalRecords["hod"]
		assert.True(t, ok)
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 0)

		_, err := f.engine.RequestRevision(ctx, ent.ID, "user-hod", RevisionInput{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestEngine_MarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("approved claim settles to paid", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 3)

		got, err := f.engine.MarkPaid(ctx, ent.ID, "user-fin", PaymentInput{
			Method:           "bank_transfer",
			TransactionID:    "TXN-4471",
			PaymentAdviceURL: "https://files.mwangaza.org/advice/4471.pdf",
		})
		require.NoError(t, err)

		assert.Equal(t, entity.StatusPaid, got.Status)
		require.NotNil(t, got.Payment)
		assert.Equal(t, "bank_transfer", got.Payment.Method)
		assert.Equal(t, "user-fin", got.Payment.PaidBy)

		call := f.notifier.last()
		assert.Equal(t, port.EventPaid, call.event)
		assert.Equal(t, []string{"user-alice"}, call.recipients)
	})

	t.Run("claims require a payment advice", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 3)

		_, err := f.engine.MarkPaid(ctx, ent.ID, "user-fin", PaymentInput{
			Method:        "bank_transfer",
			TransactionID: "TXN-4471",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("budgets settle to completed without an advice", func(t *testing.T) {
		f := newFixture(t)
		ent, err := f.engine.Create(ctx, CreateInput{
			Type:       entity.TypeBudget,
			Department: "programmes",
			Title:      "Q3 outreach budget",
		}, "user-alice")
		require.NoError(t, err)
		for _, approver := range []string{"user-hod", "user-fin", "user-dir"} {
			_, err = f.engine.Approve(ctx, ent.ID, approver, "")
			require.NoError(t, err)
		}

		got, err := f.engine.MarkPaid(ctx, ent.ID, "user-fin", PaymentInput{
			Method:        "internal",
			TransactionID: "BGT-9",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, got.Status)
	})

	t.Run("pending entity cannot be settled", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 1)

		_, err := f.engine.MarkPaid(ctx, ent.ID, "user-fin", PaymentInput{
			Method:        "bank_transfer",
			TransactionID: "TXN-1",
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		// The missing advice URL must not mask the status error.
		assert.NotErrorIs(t, err, ErrValidation)
	})
}

func TestEngine_Cancel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		wantErr error
	}{
		{name: "originator may cancel", actor: "user-alice"},
		{name: "admin may cancel", actor: "user-admin"},
		{name: "delegate role may cancel", actor: "user-pm"},
		{name: "uninvolved approver may not", actor: "user-dir", wantErr: ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ent := f.advanceClaim(t, 1)

			got, err := f.engine.Cancel(ctx, ent.ID, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entity.StatusCancelled, got.Status)
			assert.Nil(t, got.CurrentLevelDeadline)
			assert.Equal(t, port.EventCancelled, f.notifier.last().event)
		})
	}

	t.Run("approved entity cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 3)

		_, err := f.engine.Cancel(ctx, ent.ID, "user-alice")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestEngine_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("originator deletes a draft", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)

		require.NoError(t, f.engine.Delete(ctx, ent.ID, "user-alice"))
		assert.Equal(t, []string{ent.ID}, f.entities.deleted)

		_, err := f.engine.Get(ctx, ent.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled entity can be deleted", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 1)
		_, err := f.engine.Cancel(ctx, ent.ID, "user-alice")
		require.NoError(t, err)

		assert.NoError(t, f.engine.Delete(ctx, ent.ID, "user-admin"))
	})

	t.Run("pending entity cannot be deleted", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 0)

		err := f.engine.Delete(ctx, ent.ID, "user-alice")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("settled payment blocks deletion", func(t *testing.T) {
		f := newFixture(t)
		ent := f.advanceClaim(t, 3)
		_, err := f.engine.MarkPaid(ctx, ent.ID, "user-fin", PaymentInput{
			Method:           "bank_transfer",
			TransactionID:    "TXN-2",
			PaymentAdviceURL: "https://files.mwangaza.org/advice/2.pdf",
		})
		require.NoError(t, err)

		err = f.engine.Delete(ctx, ent.ID, "user-alice")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("non-originator may not delete", func(t *testing.T) {
		f := newFixture(t)
		ent := f.createClaim(t)

		err := f.engine.Delete(ctx, ent.ID, "user-fin")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestEngine_AuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ent := f.advanceClaim(t, 2)

	trail, err := f.engine.AuditTrail(ctx, ent.ID)
	require.NoError(t, err)
	require.Len(t, trail, 4)

	actions := make([]string, 0, len(trail))
	for _, e := range trail {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{
		entity.ActionCreated,
		entity.ActionSubmitted,
		entity.ActionApproved,
		entity.ActionApproved,
	}, actions)

	_, err = f.engine.AuditTrail(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
