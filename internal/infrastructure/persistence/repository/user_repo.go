package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
	"github.com/mwangaza-erp/approvalflow/pkg/database"
)

// UserRepository implements port.UserRepository on sqlite. Roles are
// stored as a JSON array in a text column; role filtering happens in Go
// because sqlite's json1 extension is not guaranteed on every build.
type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID returns the user, or (nil, nil) when unknown.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone_number, department, status, roles
		FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// FindActiveByRole returns active users holding the role, scoped to
// department when department is non-empty.
func (r *UserRepository) FindActiveByRole(ctx context.Context, role, department string) ([]*entity.User, error) {
	query := `SELECT id, name, email, phone_number, department, status, roles FROM users WHERE status = ?`
	args := []interface{}{entity.UserStatusActive}
	if department != "" {
		query += " AND department = ?"
		args = append(args, department)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to find users by role", zap.String("role", role), zap.Error(err))
		return nil, fmt.Errorf("failed to find users by role: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if u.HasRole(role) {
			users = append(users, u)
		}
	}
	return users, rows.Err()
}

// Upsert replaces the user row, keeping the directory in sync with the
// identity provider.
func (r *UserRepository) Upsert(ctx context.Context, u *entity.User) error {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone_number, department, status, roles)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone_number = excluded.phone_number,
			department = excluded.department,
			status = excluded.status,
			roles = excluded.roles`,
		u.ID, u.Name, u.Email, u.PhoneNumber, u.Department, u.Status, string(roles),
	)
	if err != nil {
		r.logger.Error("Failed to upsert user", zap.String("user_id", u.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		u     entity.User
		roles string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.Department, &u.Status, &roles); err != nil {
		return nil, err
	}
	if roles != "" {
		if err := json.Unmarshal([]byte(roles), &u.Roles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roles: %w", err)
		}
	}
	return &u, nil
}
