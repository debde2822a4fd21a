// Package service contains the business logic sitting between handlers
// and repositories.
package service

import (
	"context"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// AccessControl answers role and ownership questions. Role membership
// is cached briefly, so a freshly granted role may take up to the role
// TTL to become visible except where the grant path invalidates the
// cached entry itself.
type AccessControl struct {
	users repository.UserRepository
}

// NewAccessControl creates a new access control service
func NewAccessControl(users repository.UserRepository) *AccessControl {
	return &AccessControl{users: users}
}

// HasRole reports whether the user currently holds the named role,
// consulting the per-user role cache first.
func (a *AccessControl) HasRole(ctx context.Context, userID uint, role string) (bool, error) {
	var has bool
	err := cache.Aside(ctx, cache.RoleKey(userID, role), &has, cache.RoleTTL, func() error {
		user, err := a.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		has = user.HasRole(role)
		return nil
	})
	if err != nil {
		return false, err
	}
	return has, nil
}

// RequireRole returns a forbidden error when the user lacks the role.
func (a *AccessControl) RequireRole(ctx context.Context, userID uint, role string) error {
	has, err := a.HasRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !has {
		return models.NewForbiddenError("Missing required role: " + role)
	}
	return nil
}

// RequireOwnership allows the owner or an admin through and rejects
// everyone else.
func (a *AccessControl) RequireOwnership(ctx context.Context, ownerID, actorID uint) error {
	if ownerID == actorID {
		return nil
	}
	isAdmin, err := a.HasRole(ctx, actorID, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return models.NewForbiddenError("You do not own this resource")
	}
	return nil
}

// GrantRole attaches the role and drops the user's cached role checks
// so the grant is visible immediately.
func (a *AccessControl) GrantRole(ctx context.Context, userID uint, role string) error {
	if err := a.users.GrantRole(ctx, userID, role); err != nil {
		return err
	}
	cache.InvalidateUserRoles(ctx, userID)
	return nil
}

// RevokeRole detaches the role and drops the user's cached role checks.
func (a *AccessControl) RevokeRole(ctx context.Context, userID uint, role string) error {
	if err := a.users.RevokeRole(ctx, userID, role); err != nil {
		return err
	}
	cache.InvalidateUserRoles(ctx, userID)
	return nil
}

// TouchLastSeen records user activity. Failures are not fatal to the
// request that triggered them.
func (a *AccessControl) TouchLastSeen(ctx context.Context, userID uint) error {
	return a.users.TouchLastSeen(ctx, userID, time.Now().UTC())
}
