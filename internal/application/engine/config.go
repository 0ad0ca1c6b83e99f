package engine

import (
	"time"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// TypeConfig is the per-entity-type configuration the generic engine runs
// on. The four financial request types share one transition
// implementation; everything that used to differ between their
// hand-written services is captured here.
type TypeConfig struct {
	Type entity.Type

	// StartInFirstPending creates entities directly in the first pending
	// state instead of draft. Budgets and contracts are created
	// as-submitted; claims and invoices are composed in draft first.
	StartInFirstPending bool

	// SettledStatus is the status markPaid moves an approved entity to.
	SettledStatus string

	// SLAHoursByLevel is the escalating approval window per level, level 1
	// first. Levels beyond the table reuse the last window.
	SLAHoursByLevel []int

	// RequiredPaymentFields names extra payment fields beyond method and
	// transaction id that markPaid must refuse without.
	RequiredPaymentFields []string

	// CancelDelegateRoles are permission roles that may cancel an entity
	// besides its originator and admins.
	CancelDelegateRoles []string
}

// SLAForLevel returns the approval window for a level.
func (c TypeConfig) SLAForLevel(level int) time.Duration {
	if len(c.SLAHoursByLevel) == 0 {
		return 48 * time.Hour
	}
	if level < 1 {
		level = 1
	}
	if level > len(c.SLAHoursByLevel) {
		level = len(c.SLAHoursByLevel)
	}
	return time.Duration(c.SLAHoursByLevel[level-1]) * time.Hour
}

// RequiresPaymentField reports whether the named extra field is mandatory.
func (c TypeConfig) RequiresPaymentField(name string) bool {
	for _, f := range c.RequiredPaymentFields {
		if f == name {
			return true
		}
	}
	return false
}

// DefaultTypeConfigs returns the standard configuration for the four
// entity types.
func DefaultTypeConfigs() map[entity.Type]TypeConfig {
	return map[entity.Type]TypeConfig{
		entity.TypeClaim: {
			Type:                  entity.TypeClaim,
			SettledStatus:         entity.StatusPaid,
			SLAHoursByLevel:       []int{24, 48, 72},
			RequiredPaymentFields: []string{"payment_advice_url"},
			CancelDelegateRoles:   []string{"project_manager"},
		},
		entity.TypeInvoice: {
			Type:                  entity.TypeInvoice,
			SettledStatus:         entity.StatusPaid,
			SLAHoursByLevel:       []int{24, 48, 72},
			RequiredPaymentFields: []string{"payment_advice_url"},
			CancelDelegateRoles:   []string{"project_manager"},
		},
		entity.TypeBudget: {
			Type:                entity.TypeBudget,
			StartInFirstPending: true,
			SettledStatus:       entity.StatusCompleted,
			SLAHoursByLevel:     []int{48, 72, 96},
			CancelDelegateRoles: []string{"project_manager"},
		},
		entity.TypeContract: {
			Type:                entity.TypeContract,
			StartInFirstPending: true,
			SettledStatus:       entity.StatusActive,
			SLAHoursByLevel:     []int{48, 72, 96},
			CancelDelegateRoles: []string{"project_manager"},
		},
	}
}
