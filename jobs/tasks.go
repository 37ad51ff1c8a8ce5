package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInvalidateRole is the task type for role-wide permission cache
	// invalidation.
	TaskInvalidateRole = "authz:invalidate_role"
)

// InvalidateRolePayload identifies the role whose members need their cached
// permission sets dropped.
type InvalidateRolePayload struct {
	RoleID int64 `json:"roleId"`
}

// NewInvalidateRoleTask constructs an Asynq task.
func NewInvalidateRoleTask(payload InvalidateRolePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvalidateRole, data), nil
}

// RoleMemberLister lists the principal ids holding a role.
type RoleMemberLister interface {
	PrincipalsWithRole(ctx context.Context, roleID int64) ([]int64, error)
}

// CacheInvalidator drops a principal's cached permission set.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, principalID int64) error
}

// NewInvalidateRoleHandler processes TaskInvalidateRole tasks: it resolves
// every member of the role and invalidates their cache entries one by one.
// A failed invalidation fails the task so Asynq retries; the writes are
// idempotent deletes.
func NewInvalidateRoleHandler(store RoleMemberLister, cache CacheInvalidator, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload InvalidateRolePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		members, err := store.PrincipalsWithRole(ctx, payload.RoleID)
		if err != nil {
			return err
		}
		for _, principalID := range members {
			if err := cache.Invalidate(ctx, principalID); err != nil {
				return err
			}
		}
		if logger != nil {
			logger.Info("role permission caches invalidated",
				slog.Int64("role", payload.RoleID),
				slog.Int("principals", len(members)))
		}
		return nil
	}
}
