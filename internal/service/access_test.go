package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accessWithUsers(users map[uint]*models.User) *AccessControl {
	repo := &stubUserRepo{
		getByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			if user, ok := users[id]; ok {
				return user, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
	}
	return NewAccessControl(repo)
}

func TestHasRole(t *testing.T) {
	access := accessWithUsers(map[uint]*models.User{
		1: userWithRoles(1, "alice", models.RoleDefault, models.RolePoster),
	})
	ctx := context.Background()

	has, err := access.HasRole(ctx, 1, models.RolePoster)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = access.HasRole(ctx, 1, models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRequireRole(t *testing.T) {
	access := accessWithUsers(map[uint]*models.User{
		1: userWithRoles(1, "alice", models.RoleDefault),
	})
	ctx := context.Background()

	require.NoError(t, access.RequireRole(ctx, 1, models.RoleDefault))
	assertCode(t, access.RequireRole(ctx, 1, models.RolePoster), models.CodeForbidden)
}

func TestRequireOwnership(t *testing.T) {
	access := accessWithUsers(map[uint]*models.User{
		1: userWithRoles(1, "owner", models.RoleDefault),
		2: userWithRoles(2, "stranger", models.RoleDefault),
		3: userWithRoles(3, "moderator", models.RoleDefault, models.RoleAdmin),
	})
	ctx := context.Background()

	// The owner passes without any role lookup.
	require.NoError(t, access.RequireOwnership(ctx, 1, 1))

	// Admins pass on any resource.
	require.NoError(t, access.RequireOwnership(ctx, 1, 3))

	// Everyone else is rejected.
	assertCode(t, access.RequireOwnership(ctx, 1, 2), models.CodeForbidden)
}
