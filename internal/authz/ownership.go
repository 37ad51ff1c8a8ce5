package authz

import (
	"context"
	"log/slog"
)

// OwnershipChecker grants access to a single resource instance based on
// ownership rather than role grants. Each resource family supplies its own
// rule; this package only defines the seam.
type OwnershipChecker interface {
	Check(ctx context.Context, principalID int64, resource, instanceID string) (bool, error)
}

// OwnershipCheckerFunc adapts a function to the OwnershipChecker interface.
type OwnershipCheckerFunc func(ctx context.Context, principalID int64, resource, instanceID string) (bool, error)

// Check implements OwnershipChecker.
func (f OwnershipCheckerFunc) Check(ctx context.Context, principalID int64, resource, instanceID string) (bool, error) {
	return f(ctx, principalID, resource, instanceID)
}

// OwnershipRegistry maps resource families to their ownership checkers.
// Registration happens during startup wiring, before any checks run.
type OwnershipRegistry struct {
	checkers map[string]OwnershipChecker
	logger   *slog.Logger
}

// NewOwnershipRegistry constructs an empty registry.
func NewOwnershipRegistry(logger *slog.Logger) *OwnershipRegistry {
	return &OwnershipRegistry{checkers: make(map[string]OwnershipChecker), logger: logger}
}

// Register installs a checker for a resource family, replacing any previous
// one.
func (r *OwnershipRegistry) Register(resource string, checker OwnershipChecker) {
	if r == nil || resource == "" || checker == nil {
		return
	}
	r.checkers[resource] = checker
}

// Check resolves ownership for a resource instance. A resource without a
// registered checker denies; a checker error is logged and denies. Neither
// case surfaces an error to the request path.
func (r *OwnershipRegistry) Check(ctx context.Context, principalID int64, resource, instanceID string) bool {
	if r == nil {
		return false
	}
	checker, ok := r.checkers[resource]
	if !ok {
		if r.logger != nil {
			r.logger.Debug("ownership check not implemented",
				slog.String("resource", resource))
		}
		return false
	}
	owned, err := checker.Check(ctx, principalID, resource, instanceID)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("ownership check failed",
				slog.String("resource", resource),
				slog.String("instance", instanceID),
				slog.Any("error", err))
		}
		return false
	}
	return owned
}
