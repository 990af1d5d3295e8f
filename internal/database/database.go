package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/flashcards/internal/database/runs"
	"github.com/mrlokans/flashcards/internal/database/settings"
	"github.com/mrlokans/flashcards/internal/entities"
)

// Database is the daemon state: settings and job run history.
type Database struct {
	DB *gorm.DB

	settings *settings.Repository
	runs     *runs.Repository
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Setting{},
		&entities.JobRun{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{
		DB:       db,
		settings: settings.NewRepository(db),
		runs:     runs.NewRepository(db),
	}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) GetSetting(key string) (*entities.Setting, error) {
	return d.settings.GetSetting(key)
}

func (d *Database) SetSetting(key, value string) error {
	return d.settings.SetSetting(key, value)
}

func (d *Database) DeleteSetting(key string) error {
	return d.settings.DeleteSetting(key)
}

func (d *Database) CreateRun(run *entities.JobRun) error {
	return d.runs.Create(run)
}

func (d *Database) FinishRun(id string, status entities.JobRunStatus, message string, finishedAt time.Time) error {
	return d.runs.Finish(id, status, message, finishedAt)
}

func (d *Database) GetRun(id string) (*entities.JobRun, error) {
	return d.runs.Get(id)
}

func (d *Database) ListRuns(job string, limit int) ([]entities.JobRun, error) {
	return d.runs.List(job, limit)
}

func (d *Database) LastRun(job string) (*entities.JobRun, error) {
	return d.runs.Last(job)
}

func (d *Database) DeleteRunsBefore(t time.Time) (int64, error) {
	return d.runs.DeleteBefore(t)
}
