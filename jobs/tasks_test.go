package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	members map[int64][]int64
	err     error
}

func (f *fakeLister) PrincipalsWithRole(ctx context.Context, roleID int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[roleID], nil
}

type fakeInvalidator struct {
	invalidated []int64
	err         error
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, principalID int64) error {
	if f.err != nil {
		return f.err
	}
	f.invalidated = append(f.invalidated, principalID)
	return nil
}

func TestInvalidateRoleHandlerFansOut(t *testing.T) {
	lister := &fakeLister{members: map[int64][]int64{7: {1, 2, 3}}}
	cache := &fakeInvalidator{}
	handler := NewInvalidateRoleHandler(lister, cache, nil)

	task, err := NewInvalidateRoleTask(InvalidateRolePayload{RoleID: 7})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, []int64{1, 2, 3}, cache.invalidated)
}

func TestInvalidateRoleHandlerSkipsMalformedPayload(t *testing.T) {
	handler := NewInvalidateRoleHandler(&fakeLister{}, &fakeInvalidator{}, nil)

	err := handler(context.Background(), asynq.NewTask(TaskInvalidateRole, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestInvalidateRoleHandlerPropagatesStoreFailure(t *testing.T) {
	boom := errors.New("store down")
	handler := NewInvalidateRoleHandler(&fakeLister{err: boom}, &fakeInvalidator{}, nil)

	task, err := NewInvalidateRoleTask(InvalidateRolePayload{RoleID: 1})
	require.NoError(t, err)
	require.ErrorIs(t, handler(context.Background(), task), boom)
}
