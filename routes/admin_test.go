package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "viewer", "viewer@example.com", "secret123", false)

	w := env.doJSON(t, http.MethodGet, "/api/admin/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookies := env.login(t, "viewer@example.com", "secret123")
	w = env.doJSON(t, http.MethodGet, "/api/admin/users", nil, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "需要管理員權限", parseBody(t, w)["error"])
}

func TestGetUsersNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin", "admin@example.com", "secret123", true)
	env.createUser(t, "viewer", "viewer@example.com", "secret123", false)
	env.createUser(t, "newest", "newest@example.com", "secret123", false)
	cookies := env.login(t, "admin@example.com", "secret123")

	w := env.doJSON(t, http.MethodGet, "/api/admin/users", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	users := parseBody(t, w)["users"].([]interface{})
	require.Len(t, users, 3)
	for i, username := range []string{"newest", "viewer", "admin"} {
		assert.Equal(t, username, users[i].(map[string]interface{})["username"])
	}
	// password hashes never leave the server
	for _, u := range users {
		assert.NotContains(t, u.(map[string]interface{}), "passwordHash")
	}
}

func TestToggleAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin", "admin@example.com", "secret123", true)
	viewer := env.createUser(t, "viewer", "viewer@example.com", "secret123", false)
	cookies := env.login(t, "admin@example.com", "secret123")
	path := fmt.Sprintf("/api/admin/users/%d/toggle-admin", viewer.Id)

	w := env.doJSON(t, http.MethodPost, path, nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := parseBody(t, w)
	assert.Equal(t, "viewer 已升級為管理員", body["message"])
	assert.Equal(t, true, body["user"].(map[string]interface{})["isAdmin"])

	w = env.doJSON(t, http.MethodPost, path, nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body = parseBody(t, w)
	assert.Equal(t, "viewer 的管理員權限已移除", body["message"])
	assert.Equal(t, false, body["user"].(map[string]interface{})["isAdmin"])
}

func TestToggleAdminRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", "admin@example.com", "secret123", true)
	cookies := env.login(t, "admin@example.com", "secret123")

	w := env.doJSON(t, http.MethodPost,
		fmt.Sprintf("/api/admin/users/%d/toggle-admin", admin.Id), nil, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "不能移除自己的管理員權限", parseBody(t, w)["error"])
}

func TestToggleAdminUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "admin", "admin@example.com", "secret123", true)
	cookies := env.login(t, "admin@example.com", "secret123")

	w := env.doJSON(t, http.MethodPost, "/api/admin/users/999/toggle-admin", nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "使用者不存在", parseBody(t, w)["error"])
}
