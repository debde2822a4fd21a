package server

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdmin(t *testing.T) string {
	t.Helper()
	username := registerUser(t)
	grantRole(t, username, models.RoleAdmin)
	return tokenFor(t, username)
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	resp := doJSON(t, http.MethodGet, "/admin/users", nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	username := registerUser(t)
	token := tokenFor(t, username)
	resp = doJSON(t, http.MethodGet, "/admin/users", nil, token)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminUserManagement(t *testing.T) {
	adminToken := newAdmin(t)
	subject := registerUser(t)

	resp := doJSON(t, http.MethodGet, "/admin/users?limit=100", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Users []struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	}
	decodeBody(t, resp, &list)

	var subjectID uint
	for _, u := range list.Users {
		if u.Username == subject {
			subjectID = u.ID
		}
	}
	require.NotZero(t, subjectID)

	// Grant the poster role through the admin surface.
	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("/admin/users/%d/roles/%s", subjectID, models.RolePoster), nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var granted struct {
		Roles []string `json:"roles"`
	}
	decodeBody(t, resp, &granted)
	assert.Contains(t, granted.Roles, models.RolePoster)

	// The grant takes effect: the subject can publish now.
	subjectToken := tokenFor(t, subject)
	resp = doJSON(t, http.MethodPost, "/api/post",
		map[string]any{"title": "granted post", "text": "body"}, subjectToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// And revocation takes it away again.
	resp = doJSON(t, http.MethodDelete,
		fmt.Sprintf("/admin/users/%d/roles/%s", subjectID, models.RolePoster), nil, adminToken)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, "/api/post",
		map[string]any{"title": "revoked post", "text": "body"}, subjectToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Granting an unknown role is a 404.
	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("/admin/users/%d/roles/wizard", subjectID), nil, adminToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoleCatalog(t *testing.T) {
	adminToken := newAdmin(t)

	resp := doJSON(t, http.MethodPost, "/admin/roles",
		map[string]string{"name": "editor", "description": "may edit anything"}, adminToken)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate role names conflict.
	resp = doJSON(t, http.MethodPost, "/admin/roles",
		map[string]string{"name": "editor"}, adminToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, "/admin/roles", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Roles []models.Role `json:"roles"`
	}
	decodeBody(t, resp, &list)

	names := make([]string, 0, len(list.Roles))
	for _, r := range list.Roles {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "editor")
	assert.Contains(t, names, models.RoleDefault)
}

func TestAdminModeration(t *testing.T) {
	adminToken := newAdmin(t)
	_, posterToken := newPoster(t)

	postID := createPostViaAPI(t, posterToken, "moderated away")

	// An admin can delete any post without owning it.
	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("/admin/posts/%d", postID), nil, adminToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("/api/post/%d", postID), nil, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
