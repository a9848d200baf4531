package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"smart-task-manager/internal/models"
	"smart-task-manager/internal/testutil"
)

func TestCreateProject(t *testing.T) {
	ts := newTestServer(t)
	testutil.SeedUser(t, ts.db, "bob")

	w := ts.do(t, http.MethodPost, "/api/projects", map[string]any{"name": "Website"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mine := decode[models.Project](t, w)
	require.Equal(t, ts.owner.ID, mine.OwnerID)

	w = ts.do(t, http.MethodPost, "/api/projects", map[string]any{"name": "Mobile", "ownerUsername": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEqual(t, ts.owner.ID, decode[models.Project](t, w).OwnerID)

	w = ts.do(t, http.MethodPost, "/api/projects", map[string]any{"name": "Ghost", "ownerUsername": "nobody"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/projects", map[string]any{"name": " "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 2, decode[map[string]any](t, w)["count"])

	w = ts.do(t, http.MethodGet, "/api/projects?ownerId="+ts.owner.ID, nil)
	require.EqualValues(t, 1, decode[map[string]any](t, w)["count"])

	w = ts.do(t, http.MethodGet, "/api/projects/"+mine.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Website", decode[models.Project](t, w).Name)

	w = ts.do(t, http.MethodGet, "/api/projects/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProjectUsers(t *testing.T) {
	ts := newTestServer(t)
	project := testutil.SeedProject(t, ts.db, "Website", ts.owner.ID)
	bob := testutil.SeedUser(t, ts.db, "bob")
	testutil.SeedUser(t, ts.db, "zed")
	task := testutil.SeedTask(t, ts.db, project.ID, "t", models.StatusTodo)
	require.NoError(t, ts.db.Model(&models.Task{}).Where("id = ?", task.ID).Update("assignee_id", bob.ID).Error)

	w := ts.do(t, http.MethodGet, "/api/projects/"+project.ID+"/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	members := decode[[]UserResponse](t, w)
	require.Len(t, members, 2)
	require.Equal(t, "alice", members[0].Username)
	require.Equal(t, "bob", members[1].Username)

	w = ts.do(t, http.MethodGet, "/api/projects/missing/users", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
