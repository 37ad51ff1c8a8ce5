package roles

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acadia-sis/acadia-sis/internal/shared"
)

type memoryRepo struct {
	roles       map[int64]Role
	permissions map[int64]Permission
	rolePerms   map[int64][]int64
	userRoles   map[int64][]int64 // roleID -> userIDs
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		roles:       make(map[int64]Role),
		permissions: make(map[int64]Permission),
		rolePerms:   make(map[int64][]int64),
		userRoles:   make(map[int64][]int64),
	}
}

func (r *memoryRepo) ListRoles(ctx context.Context) ([]Role, error) {
	var list []Role
	for _, role := range r.roles {
		list = append(list, role)
	}
	return list, nil
}

func (r *memoryRepo) GetRole(ctx context.Context, id int64) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (r *memoryRepo) CreateRole(ctx context.Context, name, description string) (Role, error) {
	for _, existing := range r.roles {
		if existing.Name == name {
			return Role{}, shared.ErrDuplicate
		}
	}
	r.nextID++
	role := Role{ID: r.nextID, Name: name, Description: description}
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRepo) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	role.Name = name
	role.Description = description
	r.roles[id] = role
	return role, nil
}

func (r *memoryRepo) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.roles, id)
	delete(r.userRoles, id)
	delete(r.rolePerms, id)
	return nil
}

func (r *memoryRepo) ListPermissions(ctx context.Context) ([]Permission, error) {
	var list []Permission
	for _, perm := range r.permissions {
		list = append(list, perm)
	}
	return list, nil
}

func (r *memoryRepo) EnsurePermission(ctx context.Context, resource, action, description string) (Permission, error) {
	for _, perm := range r.permissions {
		if perm.Resource == resource && perm.Action == action {
			perm.Description = description
			r.permissions[perm.ID] = perm
			return perm, nil
		}
	}
	r.nextID++
	perm := Permission{ID: r.nextID, Resource: resource, Action: action, Description: description}
	r.permissions[perm.ID] = perm
	return perm, nil
}

func (r *memoryRepo) ListRolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var list []Permission
	for _, id := range r.rolePerms[roleID] {
		if perm, ok := r.permissions[id]; ok {
			list = append(list, perm)
		}
	}
	return list, nil
}

func (r *memoryRepo) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	r.rolePerms[roleID] = append([]int64(nil), permissionIDs...)
	return nil
}

func (r *memoryRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	for _, existing := range r.userRoles[roleID] {
		if existing == userID {
			return nil
		}
	}
	r.userRoles[roleID] = append(r.userRoles[roleID], userID)
	return nil
}

func (r *memoryRepo) RemoveRole(ctx context.Context, userID, roleID int64) error {
	members := r.userRoles[roleID]
	for i, existing := range members {
		if existing == userID {
			r.userRoles[roleID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryRepo) RoleMembers(ctx context.Context, roleID int64) ([]int64, error) {
	return append([]int64(nil), r.userRoles[roleID]...), nil
}

type recordingInvalidator struct {
	invalidated []int64
}

func (f *recordingInvalidator) Invalidate(ctx context.Context, principalID int64) error {
	f.invalidated = append(f.invalidated, principalID)
	return nil
}

type recordingEnqueuer struct {
	roleIDs []int64
	err     error
}

func (f *recordingEnqueuer) EnqueueRoleInvalidation(ctx context.Context, roleID int64) error {
	if f.err != nil {
		return f.err
	}
	f.roleIDs = append(f.roleIDs, roleID)
	return nil
}

func newTestService(repo Repository, inv *recordingInvalidator, enq Enqueuer) *Service {
	return NewService(repo, inv, enq, slog.New(slog.DiscardHandler))
}

func TestCreateRoleRequiresName(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &recordingInvalidator{}, &recordingEnqueuer{})

	_, err := svc.CreateRole(context.Background(), "   ", "")
	require.Error(t, err)
}

func TestCreateRoleDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &recordingInvalidator{}, &recordingEnqueuer{})
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, "registrar", "")
	require.NoError(t, err)
	_, err = svc.CreateRole(ctx, "registrar", "")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestAssignAndRemoveRoleInvalidate(t *testing.T) {
	repo := newMemoryRepo()
	inv := &recordingInvalidator{}
	svc := newTestService(repo, inv, &recordingEnqueuer{})
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "registrar", "")
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(ctx, 5, role.ID))
	require.Equal(t, []int64{5}, inv.invalidated)

	require.NoError(t, svc.RemoveRole(ctx, 5, role.ID))
	require.Equal(t, []int64{5, 5}, inv.invalidated)
}

func TestSetRolePermissionsEnqueuesFanOut(t *testing.T) {
	repo := newMemoryRepo()
	enq := &recordingEnqueuer{}
	inv := &recordingInvalidator{}
	svc := newTestService(repo, inv, enq)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "registrar", "")
	require.NoError(t, err)
	perm, err := svc.EnsurePermission(ctx, "grade", "read", "")
	require.NoError(t, err)

	require.NoError(t, svc.SetRolePermissions(ctx, role.ID, []int64{perm.ID}))
	require.Equal(t, []int64{role.ID}, enq.roleIDs)
	require.Empty(t, inv.invalidated)
}

func TestSetRolePermissionsFallsBackToInlineInvalidation(t *testing.T) {
	repo := newMemoryRepo()
	inv := &recordingInvalidator{}
	svc := newTestService(repo, inv, &recordingEnqueuer{err: errors.New("redis down")})
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "registrar", "")
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(ctx, 5, role.ID))
	require.NoError(t, svc.AssignRole(ctx, 6, role.ID))
	inv.invalidated = nil

	require.NoError(t, svc.SetRolePermissions(ctx, role.ID, nil))
	require.ElementsMatch(t, []int64{5, 6}, inv.invalidated)
}

func TestDeleteRoleInvalidatesMembers(t *testing.T) {
	repo := newMemoryRepo()
	inv := &recordingInvalidator{}
	svc := newTestService(repo, inv, &recordingEnqueuer{})
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "registrar", "")
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(ctx, 5, role.ID))
	require.NoError(t, svc.AssignRole(ctx, 6, role.ID))
	inv.invalidated = nil

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	require.ElementsMatch(t, []int64{5, 6}, inv.invalidated)

	require.ErrorIs(t, svc.DeleteRole(ctx, role.ID), shared.ErrNotFound)
}

func TestEnsurePermissionNormalizesAction(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &recordingInvalidator{}, &recordingEnqueuer{})

	perm, err := svc.EnsurePermission(context.Background(), " grade ", "read", "")
	require.NoError(t, err)
	require.Equal(t, "grade", perm.Resource)
	require.Equal(t, "READ", perm.Action)

	_, err = svc.EnsurePermission(context.Background(), "", "", "")
	require.Error(t, err)
}
