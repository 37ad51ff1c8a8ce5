package roles

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Invalidator drops a principal's cached permission set. Satisfied by the
// enforcement gate.
type Invalidator interface {
	Invalidate(ctx context.Context, principalID int64) error
}

// Enqueuer schedules a conservative role-wide cache invalidation for
// background processing.
type Enqueuer interface {
	EnqueueRoleInvalidation(ctx context.Context, roleID int64) error
}

// Service orchestrates role and permission administration. Every mutation
// that can change a principal's effective permissions invalidates the
// affected cache entries; relying on TTL expiry alone is not acceptable for
// revocations.
type Service struct {
	repo        Repository
	invalidator Invalidator
	enqueuer    Enqueuer
	logger      *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, invalidator Invalidator, enqueuer Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, enqueuer: enqueuer, logger: logger}
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// UpdateRole updates an existing role. Renames do not affect grants, so no
// invalidation is needed.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	return s.repo.UpdateRole(ctx, id, name, strings.TrimSpace(description))
}

// DeleteRole removes a role and invalidates every member's cached
// permission set.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	members, err := s.repo.RoleMembers(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.invalidateMembers(ctx, members)
	return nil
}

// ListPermissions returns all declared permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// EnsurePermission upserts a permission declaration.
func (s *Service) EnsurePermission(ctx context.Context, resource, action, description string) (Permission, error) {
	resource = strings.TrimSpace(resource)
	action = strings.TrimSpace(strings.ToUpper(action))
	if resource == "" || action == "" {
		return Permission{}, errors.New("roles: permission resource and action required")
	}
	return s.repo.EnsurePermission(ctx, resource, action, strings.TrimSpace(description))
}

// ListRolePermissions returns the permissions attached to a role.
func (s *Service) ListRolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	return s.repo.ListRolePermissions(ctx, roleID)
}

// SetRolePermissions replaces the role's permission set and invalidates
// every principal holding the role.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if err := s.repo.ReplaceRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}
	s.fanOutInvalidation(ctx, roleID)
	return nil
}

// AssignRole assigns a role to the given principal and invalidates their
// cached permission set.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// RemoveRole removes a role from a principal and invalidates their cached
// permission set.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.RemoveRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// fanOutInvalidation prefers the background task; when enqueueing is
// unavailable or fails, it falls back to synchronous invalidation so a
// revocation never waits for TTL expiry.
func (s *Service) fanOutInvalidation(ctx context.Context, roleID int64) {
	if s.enqueuer != nil {
		err := s.enqueuer.EnqueueRoleInvalidation(ctx, roleID)
		if err == nil {
			return
		}
		s.logger.Warn("enqueue role invalidation failed, invalidating inline",
			slog.Int64("role", roleID), slog.Any("error", err))
	}
	members, err := s.repo.RoleMembers(ctx, roleID)
	if err != nil {
		s.logger.Error("list role members for invalidation",
			slog.Int64("role", roleID), slog.Any("error", err))
		return
	}
	s.invalidateMembers(ctx, members)
}

func (s *Service) invalidateMembers(ctx context.Context, members []int64) {
	for _, userID := range members {
		s.invalidate(ctx, userID)
	}
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("invalidate permission cache",
			slog.Int64("principal", userID), slog.Any("error", err))
	}
}
