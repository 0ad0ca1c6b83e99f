package service

import (
	"context"
	"fmt"

	"github.com/mwangaza-erp/approvalflow/internal/application/engine"
	"github.com/mwangaza-erp/approvalflow/internal/application/port"
	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DirectoryService resolves actors and approver sets from the identity
// directory. It implements port.ApproverDirectory.
type DirectoryService interface {
	port.ApproverDirectory
}

type directoryServiceImpl struct {
	users port.UserRepository

	// roleMappings maps a flow role to the permission role an actor must
	// hold. Roles absent from the map gate on themselves.
	roleMappings map[string]string

	logger Logger
}

// NewDirectoryService creates a new DirectoryService. roleMappings may be
// nil when flow roles double as permission roles.
func NewDirectoryService(users port.UserRepository, roleMappings map[string]string, logger Logger) DirectoryService {
	return &directoryServiceImpl{
		users:        users,
		roleMappings: roleMappings,
		logger:       logger,
	}
}

// PermissionRole maps a flow role onto the required permission role.
func (s *directoryServiceImpl) PermissionRole(role string) string {
	if mapped, ok := s.roleMappings[role]; ok {
		return mapped
	}
	return role
}

// GetUser returns the user or (nil, nil) when unknown.
func (s *directoryServiceImpl) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user", "error", err, "user_id", id)
		return nil, err
	}
	return user, nil
}

// GetApprovers returns the active users authorized to act at the flow
// role, scoped to department when non-empty. An empty set is an error so
// that no transition can commit an entity into an unreachable level.
func (s *directoryServiceImpl) GetApprovers(ctx context.Context, role, department string) ([]*entity.User, error) {
	permRole := s.PermissionRole(role)
	users, err := s.users.FindActiveByRole(ctx, permRole, department)
	if err != nil {
		s.logger.Error("Failed to resolve approvers", "error", err, "role", role, "department", department)
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: role %s department %q", engine.ErrNoApprovers, role, department)
	}
	return users, nil
}
