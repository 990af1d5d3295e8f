// Package runs records job executions.
package runs

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/flashcards/internal/entities"
)

// DefaultLimit caps List when no limit is given.
const DefaultLimit = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a run.
func (r *Repository) Create(run *entities.JobRun) error {
	return r.db.Create(run).Error
}

// Finish stores the outcome of a run.
func (r *Repository) Finish(id string, status entities.JobRunStatus, message string, finishedAt time.Time) error {
	result := r.db.Model(&entities.JobRun{}).Where("id = ?", id).Updates(map[string]any{
		"status":      status,
		"message":     message,
		"finished_at": finishedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Get(id string) (*entities.JobRun, error) {
	var run entities.JobRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the most recent runs first, of job only when job is not empty.
func (r *Repository) List(job string, limit int) ([]entities.JobRun, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := r.db.Order("started_at DESC").Limit(limit)
	if job != "" {
		query = query.Where("job = ?", job)
	}

	var result []entities.JobRun
	err := query.Find(&result).Error
	return result, err
}

// Last returns the latest run of job.
func (r *Repository) Last(job string) (*entities.JobRun, error) {
	var run entities.JobRun
	err := r.db.Where("job = ?", job).Order("started_at DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// DeleteBefore removes finished runs started before t and returns how many
// were removed. Running jobs are kept.
func (r *Repository) DeleteBefore(t time.Time) (int64, error) {
	result := r.db.
		Where("started_at < ? AND status <> ?", t, entities.JobRunStatusRunning).
		Delete(&entities.JobRun{})
	return result.RowsAffected, result.Error
}
