package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	user := User{Roles: []Role{{Name: RoleDefault}, {Name: RolePoster}}}
	assert.True(t, user.HasRole(RoleDefault))
	assert.True(t, user.HasRole(RolePoster))
	assert.False(t, user.HasRole(RoleAdmin))

	empty := User{}
	assert.False(t, empty.HasRole(RoleDefault))
}

func TestRoleNamesSorted(t *testing.T) {
	user := User{Roles: []Role{{Name: "poster"}, {Name: "admin"}, {Name: "default"}}}
	assert.Equal(t, []string{"admin", "default", "poster"}, user.RoleNames())
}

func TestAvatarURL(t *testing.T) {
	a := User{Username: "Alice"}
	b := User{Username: "alice"}

	// Case-insensitive: same identicon for both spellings.
	assert.Equal(t, a.AvatarURL(80), b.AvatarURL(80))
	assert.True(t, strings.Contains(a.AvatarURL(80), "s=80"))
	assert.NotEqual(t, a.AvatarURL(80), (&User{Username: "bob"}).AvatarURL(80))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidationError("bad"), 400},
		{"conflict", NewConflictError("dup"), 400},
		{"unauthenticated", NewUnauthenticatedError("who"), 401},
		{"forbidden", NewForbiddenError("no"), 403},
		{"not found", NewNotFoundError("Post", 1), 404},
		{"internal", NewInternalError(assert.AnError), 500},
		{"plain error", assert.AnError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}
