package authz

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads role assignments and role permissions from PostgreSQL.
// It is strictly read-only; writes happen in the roles administration
// package, which owns the matching cache invalidation.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Resolve returns the deduplicated flat permission set reachable from the
// principal's roles. A principal without roles yields an empty set, not an
// error.
func (s *Store) Resolve(ctx context.Context, principalID int64) ([]Permission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT p.resource, p.action
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.resource, p.action`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	perms := []Permission{}
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.Resource, &p.Action); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// PrincipalsWithRole lists the ids of every principal holding the role.
// Used for conservative cache invalidation when a role's permissions change.
func (s *Store) PrincipalsWithRole(ctx context.Context, roleID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id FROM user_roles WHERE role_id = $1 ORDER BY user_id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
