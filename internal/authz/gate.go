package authz

import (
	"context"
	"log/slog"
	"time"

	"github.com/acadia-sis/acadia-sis/internal/shared"
)

// PermissionSource resolves a principal's flat permission set from the
// system of record.
type PermissionSource interface {
	Resolve(ctx context.Context, principalID int64) ([]Permission, error)
}

// PermissionCache serves resolved permission sets without a store round
// trip.
type PermissionCache interface {
	Get(ctx context.Context, principalID int64) ([]Permission, bool, error)
	Put(ctx context.Context, principalID int64, perms []Permission) error
	Invalidate(ctx context.Context, principalID int64) error
}

// DecisionRecorder receives one observation per authorization decision.
type DecisionRecorder interface {
	ObserveDecision(resource string, action string, allowed bool)
}

// Default I/O deadlines. An authorization decision must never hang; the
// cache hop fails open to the store, the store hop fails closed.
const (
	DefaultCacheTimeout = 2 * time.Second
	DefaultStoreTimeout = 5 * time.Second
)

// GateConfig collects dependencies for the enforcement gate.
type GateConfig struct {
	Store        PermissionSource
	Cache        PermissionCache
	Engine       *Engine
	Ownership    *OwnershipRegistry
	Logger       *slog.Logger
	Metrics      DecisionRecorder
	CacheTimeout time.Duration
	StoreTimeout time.Duration
}

// Gate is the boundary entry point: the only component other subsystems call
// directly. It resolves the flat permission set cache-then-store, runs the
// decision engine, and converts the result into Proceed/Deny. Internal
// failures never escape as errors; they are logged and translated into a
// generic deny.
type Gate struct {
	store        PermissionSource
	cache        PermissionCache
	engine       *Engine
	ownership    *OwnershipRegistry
	logger       *slog.Logger
	metrics      DecisionRecorder
	cacheTimeout time.Duration
	storeTimeout time.Duration
}

// NewGate constructs a Gate.
func NewGate(cfg GateConfig) *Gate {
	cacheTimeout := cfg.CacheTimeout
	if cacheTimeout <= 0 {
		cacheTimeout = DefaultCacheTimeout
	}
	storeTimeout := cfg.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		store:        cfg.Store,
		cache:        cfg.Cache,
		engine:       cfg.Engine,
		ownership:    cfg.Ownership,
		logger:       logger,
		metrics:      cfg.Metrics,
		cacheTimeout: cacheTimeout,
		storeTimeout: storeTimeout,
	}
}

// Authorize decides whether the principal may perform action on resource.
// Every denial carries the same external shape regardless of cause.
func (g *Gate) Authorize(ctx context.Context, principal *shared.Principal, resource string, action Action, opts Options) Outcome {
	if principal == nil || principal.ID == 0 {
		g.logger.Warn("authorize without principal",
			slog.String("resource", resource),
			slog.String("action", string(action)))
		return g.finish(Deny(resource, action, 0), resource, action)
	}

	perms, err := g.resolve(ctx, principal.ID)
	if err != nil {
		g.logger.Error("resolve permissions",
			slog.Int64("principal", principal.ID),
			slog.Any("error", err))
		return g.finish(Deny(resource, action, principal.ID), resource, action)
	}

	decision := g.engine.Decide(*principal, resource, action, perms, opts)
	if decision.Allowed {
		return g.finish(Proceed(), resource, action)
	}

	if opts.OwnershipCheckEnabled && opts.InstanceID != "" {
		if g.ownership.Check(ctx, principal.ID, resource, opts.InstanceID) {
			return g.finish(Proceed(), resource, action)
		}
	}

	return g.finish(Deny(resource, action, principal.ID), resource, action)
}

// Invalidate drops the principal's cached permission set. Role and
// permission administration must call this on every mutation that affects
// the principal.
func (g *Gate) Invalidate(ctx context.Context, principalID int64) error {
	ctx, cancel := context.WithTimeout(ctx, g.cacheTimeout)
	defer cancel()
	return g.cache.Invalidate(ctx, principalID)
}

// resolve serves the flat permission set cache-first. A cache failure is a
// miss (fail open to the store); a store failure propagates so the caller
// fails closed. Concurrent misses for one principal may each hit the store
// and each fill the cache; the writes carry identical content, so the race
// is left unguarded.
func (g *Gate) resolve(ctx context.Context, principalID int64) (PermissionSet, error) {
	cacheCtx, cancel := context.WithTimeout(ctx, g.cacheTimeout)
	perms, hit, err := g.cache.Get(cacheCtx, principalID)
	cancel()
	if err != nil {
		g.logger.Warn("permission cache read failed",
			slog.Int64("principal", principalID),
			slog.Any("error", err))
	} else if hit {
		return NewPermissionSet(perms), nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	perms, err = g.store.Resolve(storeCtx, principalID)
	cancel()
	if err != nil {
		return nil, err
	}

	fillCtx, cancel := context.WithTimeout(ctx, g.cacheTimeout)
	if err := g.cache.Put(fillCtx, principalID, perms); err != nil {
		g.logger.Warn("permission cache fill failed",
			slog.Int64("principal", principalID),
			slog.Any("error", err))
	}
	cancel()

	return NewPermissionSet(perms), nil
}

func (g *Gate) finish(outcome Outcome, resource string, action Action) Outcome {
	if g.metrics != nil {
		g.metrics.ObserveDecision(resource, string(action), outcome.Allowed)
	}
	return outcome
}
