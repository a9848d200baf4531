package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"smart-task-manager/internal/testutil"
)

type userList struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

func TestGetAllUsers_SafeFields(t *testing.T) {
	ts := newTestServer(t)
	testutil.SeedUser(t, ts.db, "bob")

	w := ts.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[userList](t, w)
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "alice", resp.Users[0].Username)
	require.Equal(t, "bob", resp.Users[1].Username)
	require.NotContains(t, w.Body.String(), "not-a-real-hash")
}

func TestUserCRUD(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/users", map[string]any{
		"username": "dave", "email": "dave@corp.test", "fullName": "Dave", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/users/dave", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Dave", decode[UserResponse](t, w).FullName)

	w = ts.do(t, http.MethodPut, "/api/users/dave", map[string]any{
		"username": "david", "email": "david@corp.test", "fullName": "David",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "david", decode[UserResponse](t, w).Username)

	w = ts.do(t, http.MethodGet, "/api/users/dave", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// alice already owns this email.
	w = ts.do(t, http.MethodPut, "/api/users/david", map[string]any{
		"username": "david", "email": "alice@example.com", "fullName": "David",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/users/david", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/users/david", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, decode[UserResponse](t, w).Active)

	w = ts.do(t, http.MethodDelete, "/api/users/nobody", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
