package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-task-manager/internal/logging"
	"smart-task-manager/internal/models"
)

// Models lists every table managed by AutoMigrate.
var Models = []any{
	&models.User{},
	&models.Project{},
	&models.Task{},
}

// InitDB opens the SQLite database at path (created if it doesn't exist) and
// runs migrations. glebarez/sqlite is a pure Go driver, so no CGO is needed.
func InitDB(path string, level logger.LogLevel) (*gorm.DB, error) {
	log := logging.Component("database")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids "database is locked".
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Msg("database connected and migrated")
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// LogLevel maps a zerolog level name onto gorm's logger levels.
func LogLevel(level string) logger.LogLevel {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return logger.Warn
	}
	switch {
	case l <= zerolog.DebugLevel:
		return logger.Info
	case l <= zerolog.WarnLevel:
		return logger.Warn
	case l <= zerolog.ErrorLevel:
		return logger.Error
	default:
		return logger.Silent
	}
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
