package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachine_Fire(t *testing.T) {
	ctx := context.Background()

	newMachine := func(t *testing.T) StateMachine {
		b := NewBuilder()
		b.Configure("draft").
			Permit(TriggerSubmit, "pending_hod_approval").
			Permit(TriggerCancel, "cancelled")
		b.Configure("pending_hod_approval").
			Permit(TriggerApprove, "approved").
			Permit(TriggerReject, "rejected")

		m, err := b.Build("draft")
		require.NoError(t, err)
		return m
	}

	t.Run("permitted trigger transitions", func(t *testing.T) {
		m := newMachine(t)
		require.NoError(t, m.Fire(ctx, TriggerSubmit))
		assert.Equal(t, State("pending_hod_approval"), m.State())

		require.NoError(t, m.Fire(ctx, TriggerApprove))
		assert.Equal(t, State("approved"), m.State())
	})

	t.Run("unpermitted trigger is refused", func(t *testing.T) {
		m := newMachine(t)
		err := m.Fire(ctx, TriggerApprove)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, State("draft"), m.State())
	})

	t.Run("terminal state permits nothing", func(t *testing.T) {
		m := newMachine(t)
		require.NoError(t, m.Fire(ctx, TriggerCancel))
		err := m.Fire(ctx, TriggerSubmit)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestStateMachine_Guards(t *testing.T) {
	type targetKey struct{}

	guardFor := func(want string) GuardFunc {
		return func(ctx context.Context) bool {
			got, _ := ctx.Value(targetKey{}).(string)
			return got == want
		}
	}

	b := NewBuilder()
	b.Configure("revision_requested").
		PermitIf(TriggerSubmit, "pending_hod_approval", guardFor("pending_hod_approval")).
		PermitIf(TriggerSubmit, "pending_finance_approval", guardFor("pending_finance_approval"))

	t.Run("first passing guard wins", func(t *testing.T) {
		m, err := b.Build("revision_requested")
		require.NoError(t, err)

		ctx := context.WithValue(context.Background(), targetKey{}, "pending_finance_approval")
		require.NoError(t, m.Fire(ctx, TriggerSubmit))
		assert.Equal(t, State("pending_finance_approval"), m.State())
	})

	t.Run("no passing guard fails the fire", func(t *testing.T) {
		m, err := b.Build("revision_requested")
		require.NoError(t, err)

		err = m.Fire(context.Background(), TriggerSubmit)
		assert.ErrorIs(t, err, ErrGuardFailed)
		assert.Equal(t, State("revision_requested"), m.State())
	})
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder()
	b.Configure("draft").Permit(TriggerSubmit, "pending_hod_approval")

	t.Run("target states count as known", func(t *testing.T) {
		m, err := b.Build("pending_hod_approval")
		require.NoError(t, err)
		assert.True(t, m.Knows("draft"))
		assert.True(t, m.Knows("pending_hod_approval"))
	})

	t.Run("unknown initial state is an error", func(t *testing.T) {
		_, err := b.Build("paid")
		assert.ErrorIs(t, err, ErrUnknownState)
	})

	t.Run("machines are independent of later builder use", func(t *testing.T) {
		m, err := b.Build("draft")
		require.NoError(t, err)

		b.Configure("draft").Permit(TriggerCancel, "cancelled")

		assert.False(t, m.CanFire(TriggerCancel))
		assert.True(t, m.CanFire(TriggerSubmit))
	})
}
