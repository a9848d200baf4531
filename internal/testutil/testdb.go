package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-task-manager/internal/database"
	"smart-task-manager/internal/models"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
// The pool is pinned to one connection: every new connection to ":memory:"
// would otherwise see its own empty database.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MustDB is NewInMemoryDB for tests.
func MustDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedUser inserts an active user named username.
func SeedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		FullName: username,
		Password: "not-a-real-hash",
		Active:   true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// SeedProject inserts a project owned by ownerID.
func SeedProject(t *testing.T, db *gorm.DB, name, ownerID string) models.Project {
	t.Helper()
	p := models.Project{ID: uuid.NewString(), Name: name, OwnerID: ownerID}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// SeedTask inserts a task in projectID with the given status.
func SeedTask(t *testing.T, db *gorm.DB, projectID, title string, status models.TaskStatus) models.Task {
	t.Helper()
	task := models.Task{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Status:    status,
		Priority:  models.PriorityMedium,
	}
	require.NoError(t, db.Create(&task).Error)
	return task
}

// FixedClock returns a clock frozen at t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
