package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

func srccTemplate() *entity.ApprovalFlowTemplate {
	return &entity.ApprovalFlowTemplate{
		ID:         "flow-srcc",
		Department: "SRCC",
		IsActive:   true,
		Steps: []entity.FlowStep{
			{StepNumber: 1, Role: "hod", Department: "SRCC", NextStatus: "pending_finance_approval"},
			{StepNumber: 2, Role: "finance", Department: "Finance", NextStatus: "pending_director_approval"},
			{StepNumber: 3, Role: "director", Department: "Head Office", NextStatus: "approved"},
		},
	}
}

func TestResolver_NextStep(t *testing.T) {
	resolver, err := NewResolver(srccTemplate())
	require.NoError(t, err)

	t.Run("draft enters the first pending status", func(t *testing.T) {
		tr, err := resolver.NextStep(entity.StatusDraft)
		require.NoError(t, err)
		assert.Equal(t, "pending_hod_approval", tr.NextStatus)
		assert.Equal(t, "hod", tr.NotifyRole)
		assert.Equal(t, "SRCC", tr.NotifyDepartment)
		assert.Equal(t, 1, tr.NextLevel)
		assert.False(t, tr.Terminal)
	})

	t.Run("current step decides status, next step decides notify", func(t *testing.T) {
		tr, err := resolver.NextStep("pending_hod_approval")
		require.NoError(t, err)
		assert.Equal(t, "pending_finance_approval", tr.NextStatus)
		assert.Equal(t, "finance", tr.NotifyRole)
		assert.Equal(t, "Finance", tr.NotifyDepartment)
		assert.Equal(t, 2, tr.NextLevel)
	})

	t.Run("final step is terminal", func(t *testing.T) {
		tr, err := resolver.NextStep("pending_director_approval")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusApproved, tr.NextStatus)
		assert.True(t, tr.Terminal)
		assert.Empty(t, tr.NotifyRole)
	})

	t.Run("unknown status is refused", func(t *testing.T) {
		_, err := resolver.NextStep("pending_ceo_approval")
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})
}

func TestResolver_RoleForStatus(t *testing.T) {
	resolver, err := NewResolver(srccTemplate())
	require.NoError(t, err)

	role, level, err := resolver.RoleForStatus("pending_finance_approval")
	require.NoError(t, err)
	assert.Equal(t, "finance", role)
	assert.Equal(t, 2, level)

	_, _, err = resolver.RoleForStatus(entity.StatusDraft)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestResolver_MultiWordRoleRoundTrip(t *testing.T) {
	// Roles containing underscores must resolve through the table, not by
	// splitting the status string.
	tpl := &entity.ApprovalFlowTemplate{
		ID:         "flow-programs",
		Department: "Programs",
		IsActive:   true,
		Steps: []entity.FlowStep{
			{StepNumber: 1, Role: "head_of_programs", Department: "Programs", NextStatus: "approved"},
		},
	}
	resolver, err := NewResolver(tpl)
	require.NoError(t, err)

	role, level, err := resolver.RoleForStatus("pending_head_of_programs_approval")
	require.NoError(t, err)
	assert.Equal(t, "head_of_programs", role)
	assert.Equal(t, 1, level)
}

func TestResolver_PendingStatuses(t *testing.T) {
	resolver, err := NewResolver(srccTemplate())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"pending_hod_approval",
		"pending_finance_approval",
		"pending_director_approval",
	}, resolver.PendingStatuses())
	assert.True(t, resolver.IsPendingStatus("pending_hod_approval"))
	assert.False(t, resolver.IsPendingStatus(entity.StatusApproved))
}

func TestValidateTemplate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tpl *entity.ApprovalFlowTemplate)
		wantErr bool
	}{
		{
			name:   "valid template",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {},
		},
		{
			name: "no steps",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {
				tpl.Steps = nil
			},
			wantErr: true,
		},
		{
			name: "missing department",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {
				tpl.Department = ""
			},
			wantErr: true,
		},
		{
			name: "non-contiguous step numbers",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {
				tpl.Steps[2].StepNumber = 5
			},
			wantErr: true,
		},
		{
			name: "duplicate role",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {
				tpl.Steps[1].Role = "hod"
			},
			wantErr: true,
		},
		{
			name: "next status outside the flow",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {
				tpl.Steps[0].NextStatus = "pending_ceo_approval"
			},
			wantErr: true,
		},
		{
			name: "final step not terminal",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {
				tpl.Steps[2].NextStatus = "pending_hod_approval"
			},
			wantErr: true,
		},
		{
			name: "next status may skip ahead",
			mutate: func(tpl *entity.ApprovalFlowTemplate) {
				// Step 1 routes straight to the director's pending status;
				// the status/notify indirection allows this.
				tpl.Steps[0].NextStatus = "pending_director_approval"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := srccTemplate()
			tt.mutate(tpl)
			err := ValidateTemplate(tpl)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFlow)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
