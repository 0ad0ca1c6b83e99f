package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/mwangaza-erp/approvalflow/internal/application/engine"
	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/internal/notification"
	"github.com/mwangaza-erp/approvalflow/pkg/cache"
)

// ErrInvalidAcceptanceCode is returned when a code is wrong, expired or
// already used.
var ErrInvalidAcceptanceCode = errors.New("invalid or expired acceptance code")

const (
	defaultAcceptanceTTL = 10 * time.Minute
	acceptanceKeyPrefix  = "acceptance:"
	acceptanceCodeDigits = 6
)

// AcceptanceService runs the contract acceptance handshake: once a
// contract is active, its originator confirms acceptance with a one-time
// SMS code. Codes live in an injected time-bounded cache, never in
// process-wide state.
type AcceptanceService interface {
	IssueCode(ctx context.Context, contractID string) error
	VerifyCode(ctx context.Context, contractID, code, actorID string) error
}

type acceptanceServiceImpl struct {
	entities port.EntityRepository
	audits   port.AuditRepository
	users    port.UserRepository
	codes    cache.Cache
	sms      notification.SMSSender
	ttl      time.Duration
	logger   Logger
	now      func() time.Time
}

// NewAcceptanceService creates a new AcceptanceService. A zero ttl falls
// back to the default code lifetime.
func NewAcceptanceService(
	entities port.EntityRepository,
	audits port.AuditRepository,
	users port.UserRepository,
	codes cache.Cache,
	sms notification.SMSSender,
	ttl time.Duration,
	logger Logger,
) AcceptanceService {
	if ttl <= 0 {
		ttl = defaultAcceptanceTTL
	}
	return &acceptanceServiceImpl{
		entities: entities,
		audits:   audits,
		users:    users,
		codes:    codes,
		sms:      sms,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// IssueCode generates a one-time code for an active contract and sends it
// to the originator over SMS. Unlike transition notifications this send
// must succeed: without the code the handshake cannot continue.
func (s *acceptanceServiceImpl) IssueCode(ctx context.Context, contractID string) error {
	contract, err := s.activeContract(ctx, contractID)
	if err != nil {
		return err
	}

	originator, err := s.users.GetByID(ctx, contract.Originator)
	if err != nil {
		return err
	}
	if originator == nil || originator.PhoneNumber == "" {
		return fmt.Errorf("%w: originator of contract %s is unreachable", engine.ErrValidation, contractID)
	}

	code, err := generateCode(acceptanceCodeDigits)
	if err != nil {
		return fmt.Errorf("generate acceptance code: %w", err)
	}
	if err := s.codes.Set(ctx, acceptanceKeyPrefix+contractID, code, s.ttl); err != nil {
		return fmt.Errorf("store acceptance code: %w", err)
	}

	body := fmt.Sprintf("Your contract acceptance code for %q is %s. It expires in %d minutes.",
		contract.Title, code, int(s.ttl.Minutes()))
	if err := s.sms.SendSMS(ctx, originator.PhoneNumber, body); err != nil {
		s.logger.Error("Failed to send acceptance code", "error", err, "contract_id", contractID)
		return fmt.Errorf("send acceptance code: %w", err)
	}

	s.logger.Info("Acceptance code issued", "contract_id", contractID)
	return nil
}

// VerifyCode checks the code, consumes it and records the acceptance in
// the contract's audit trail. Codes are single-use.
func (s *acceptanceServiceImpl) VerifyCode(ctx context.Context, contractID, code, actorID string) error {
	if _, err := s.activeContract(ctx, contractID); err != nil {
		return err
	}

	stored, err := s.codes.Get(ctx, acceptanceKeyPrefix+contractID)
	if errors.Is(err, cache.ErrNotFound) {
		return ErrInvalidAcceptanceCode
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrInvalidAcceptanceCode
	}
	if err := s.codes.Delete(ctx, acceptanceKeyPrefix+contractID); err != nil {
		return err
	}

	err = s.audits.Append(ctx, entity.AuditEntry{
		EntityID:    contractID,
		Action:      entity.ActionContractAccepted,
		PerformedBy: actorID,
		PerformedAt: s.now(),
		Details:     "acceptance code verified",
	})
	if err != nil {
		return err
	}

	s.logger.Info("Contract accepted", "contract_id", contractID, "actor", actorID)
	return nil
}

func (s *acceptanceServiceImpl) activeContract(ctx context.Context, contractID string) (*entity.WorkflowEntity, error) {
	contract, err := s.entities.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: contract %s", engine.ErrNotFound, contractID)
	}
	if contract.Type != entity.TypeContract {
		return nil, fmt.Errorf("%w: entity %s is not a contract", engine.ErrValidation, contractID)
	}
	if contract.Status != entity.StatusActive {
		return nil, fmt.Errorf("%w: acceptance requires an active contract", engine.ErrInvalidTransition)
	}
	return contract, nil
}

func generateCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
