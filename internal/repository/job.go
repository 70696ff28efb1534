package repository

import (
	"context"
	"errors"

	"whvmatch/internal/cache"
	"whvmatch/internal/models"

	"gorm.io/gorm"
)

// JobFilter narrows the open jobs a maker browses. Empty fields match everything.
type JobFilter struct {
	Industry string
	State    string
}

// JobRepository stores employer job posts.
type JobRepository interface {
	Create(ctx context.Context, job *models.JobPost) error
	Update(ctx context.Context, job *models.JobPost) error
	GetByID(ctx context.Context, id uint) (*models.JobPost, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.JobPost, error)
	ListByEmployer(ctx context.Context, employerID uint, limit, offset int) ([]models.JobPost, error)
	ListOpen(ctx context.Context, filter JobFilter, limit, offset int) ([]models.JobPost, error)
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository returns a GORM-backed JobRepository.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.JobPost) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobRepository) Update(ctx context.Context, job *models.JobPost) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateJob(ctx, job.ID)
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uint) (*models.JobPost, error) {
	var job models.JobPost
	err := cache.Aside(ctx, cache.JobKey(id), &job, cache.JobTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&job, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Job post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.JobPost, error) {
	out := make(map[uint]models.JobPost, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var jobs []models.JobPost
	if err := readDB(r.db).WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, j := range jobs {
		out[j.ID] = j
	}
	return out, nil
}

func (r *jobRepository) ListByEmployer(ctx context.Context, employerID uint, limit, offset int) ([]models.JobPost, error) {
	var out []models.JobPost
	if err := readDB(r.db).WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *jobRepository) ListOpen(ctx context.Context, filter JobFilter, limit, offset int) ([]models.JobPost, error) {
	q := readDB(r.db).WithContext(ctx).Where("status = ?", models.JobStatusOpen)
	if filter.Industry != "" {
		q = q.Where("industry = ?", filter.Industry)
	}
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}

	var out []models.JobPost
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}
