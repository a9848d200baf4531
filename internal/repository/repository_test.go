package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"smart-task-manager/internal/models"
	"smart-task-manager/internal/repository"
	"smart-task-manager/internal/testutil"
)

func TestTasks_FindByID_NotFound(t *testing.T) {
	store := repository.New(testutil.MustDB(t))

	_, err := store.Tasks.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTasks_ListFilters(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")
	p1 := testutil.SeedProject(t, db, "Website", alice.ID)
	p2 := testutil.SeedProject(t, db, "Mobile", alice.ID)

	a := testutil.SeedTask(t, db, p1.ID, "Fix Login page", models.StatusTodo)
	testutil.SeedTask(t, db, p1.ID, "Write docs", models.StatusDone)
	testutil.SeedTask(t, db, p2.ID, "Release build", models.StatusTodo)

	a.AssigneeID = &alice.ID
	require.NoError(t, store.Tasks.Save(ctx, &a))

	byProject, total, err := store.Tasks.List(ctx, repository.TaskFilter{ProjectID: p1.ID})
	require.NoError(t, err)
	require.Len(t, byProject, 2)
	require.EqualValues(t, 2, total)

	byStatus, _, err := store.Tasks.List(ctx, repository.TaskFilter{Status: models.StatusTodo})
	require.NoError(t, err)
	require.Len(t, byStatus, 2)

	both, _, err := store.Tasks.List(ctx, repository.TaskFilter{ProjectID: p1.ID, Status: models.StatusTodo})
	require.NoError(t, err)
	require.Len(t, both, 1)
	require.Equal(t, a.ID, both[0].ID)

	byAssignee, _, err := store.Tasks.List(ctx, repository.TaskFilter{AssigneeID: alice.ID})
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)

	search, _, err := store.Tasks.List(ctx, repository.TaskFilter{Title: "login"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	require.Equal(t, "Fix Login page", search[0].Title)

	page, total, err := store.Tasks.List(ctx, repository.TaskFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.EqualValues(t, 3, total)
}

func TestTasks_Overdue(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner")
	p := testutil.SeedProject(t, db, "P", owner.ID)

	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	late := testutil.SeedTask(t, db, p.ID, "late", models.StatusInProgress)
	late.DueDate = &yesterday
	require.NoError(t, store.Tasks.Save(ctx, &late))

	done := testutil.SeedTask(t, db, p.ID, "done", models.StatusDone)
	done.DueDate = &yesterday
	require.NoError(t, store.Tasks.Save(ctx, &done))

	dueToday := testutil.SeedTask(t, db, p.ID, "today", models.StatusTodo)
	dueToday.DueDate = &today
	require.NoError(t, store.Tasks.Save(ctx, &dueToday))

	testutil.SeedTask(t, db, p.ID, "no due date", models.StatusTodo)

	overdue, err := store.Tasks.Overdue(ctx, today)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, late.ID, overdue[0].ID)
}

func TestTasks_CountByStatus(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db, "u")
	p := testutil.SeedProject(t, db, "P", u.ID)
	for _, s := range []models.TaskStatus{models.StatusTodo, models.StatusTodo, models.StatusDone} {
		task := testutil.SeedTask(t, db, p.ID, "t", s)
		task.AssigneeID = &u.ID
		require.NoError(t, store.Tasks.Save(ctx, &task))
	}
	testutil.SeedTask(t, db, p.ID, "unassigned", models.StatusBlocked)

	counts, err := store.Tasks.CountByStatus(ctx, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, counts[models.StatusTodo])
	require.EqualValues(t, 1, counts[models.StatusDone])
	require.EqualValues(t, 0, counts[models.StatusBlocked])
	require.Len(t, counts, len(models.AllStatuses))
}

func TestTasks_Delete(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db, "u")
	p := testutil.SeedProject(t, db, "P", u.ID)
	task := testutil.SeedTask(t, db, p.ID, "t", models.StatusTodo)

	require.NoError(t, store.Tasks.Delete(ctx, task.ID))
	require.ErrorIs(t, store.Tasks.Delete(ctx, task.ID), repository.ErrNotFound)
}

func TestTasks_SaveKeepsCreatedAt(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db, "u")
	p := testutil.SeedProject(t, db, "P", u.ID)
	task := testutil.SeedTask(t, db, p.ID, "t", models.StatusTodo)
	original, err := store.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)

	original.CreatedAt = original.CreatedAt.Add(-48 * time.Hour)
	original.Title = "renamed"
	require.NoError(t, store.Tasks.Save(ctx, original))

	reloaded, err := store.Tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", reloaded.Title)
	require.True(t, reloaded.CreatedAt.Equal(task.CreatedAt), "created_at must not change on update")
}

func TestUsers_UniqueAndLookups(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")

	exists, err := store.Users.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = store.Users.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	found, err := store.Users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, found.ID)

	_, err = store.Users.FindByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	dup := models.User{
		ID: uuid.NewString(), Username: "alice", Email: "other@example.com",
		FullName: "Alice Again", Password: "x", Active: true,
	}
	err = store.Users.Create(ctx, &dup)
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestProjects_ListAndMembers(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner")
	bob := testutil.SeedUser(t, db, "bob")
	testutil.SeedUser(t, db, "carol")

	p := testutil.SeedProject(t, db, "P", owner.ID)
	testutil.SeedProject(t, db, "Q", bob.ID)

	task := testutil.SeedTask(t, db, p.ID, "t", models.StatusTodo)
	task.AssigneeID = &bob.ID
	require.NoError(t, store.Tasks.Save(ctx, &task))

	all, err := store.Projects.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := store.Projects.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	members, err := store.Projects.Members(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "bob", members[0].Username)
	require.Equal(t, "owner", members[1].Username)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.MustDB(t)
	store := repository.New(db)
	ctx := context.Background()

	u := testutil.SeedUser(t, db, "u")
	p := testutil.SeedProject(t, db, "P", u.ID)
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx *repository.Store) error {
		task := models.Task{ID: uuid.NewString(), ProjectID: p.ID, Title: "t", Status: models.StatusTodo}
		require.NoError(t, tx.Tasks.Create(ctx, &task))
		return boom
	})
	require.ErrorIs(t, err, boom)

	tasks, total, err := store.Tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Empty(t, tasks)
	require.Zero(t, total)
}
