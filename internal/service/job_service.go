package service

import (
	"context"
	"strings"
	"time"

	"whvmatch/internal/models"
	"whvmatch/internal/repository"
	"whvmatch/internal/validation"
)

// JobService manages employer job posts.
type JobService struct {
	jobRepo repository.JobRepository
}

type JobInput struct {
	Title       string     `json:"title"`
	Industry    string     `json:"industry"`
	State       string     `json:"state"`
	Suburb      string     `json:"suburb"`
	PayMin      float64    `json:"pay_min"`
	PayMax      float64    `json:"pay_max"`
	StartDate   *time.Time `json:"start_date"`
	Description string     `json:"description"`
}

func NewJobService(jobRepo repository.JobRepository) *JobService {
	return &JobService{jobRepo: jobRepo}
}

func (in JobInput) validate() error {
	if err := validation.ValidateName("title", in.Title, 200); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateState(in.State); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePayRange(in.PayMin, in.PayMax); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

func (in JobInput) apply(job *models.JobPost) {
	job.Title = strings.TrimSpace(in.Title)
	job.Industry = in.Industry
	job.State = strings.ToUpper(in.State)
	job.Suburb = in.Suburb
	job.PayMin = in.PayMin
	job.PayMax = in.PayMax
	job.StartDate = in.StartDate
	job.Description = in.Description
}

func (s *JobService) Create(ctx context.Context, actor models.Actor, in JobInput) (*models.JobPost, error) {
	if actor.Role != models.RoleEmployer {
		return nil, models.NewForbiddenError("Only employers can post jobs")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	job := &models.JobPost{EmployerID: actor.ID, Status: models.JobStatusOpen}
	in.apply(job)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Update(ctx context.Context, actor models.Actor, id uint, in JobInput) (*models.JobPost, error) {
	job, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.apply(job)
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Close stops a job from appearing in browse results. Likes on it are kept.
func (s *JobService) Close(ctx context.Context, actor models.Actor, id uint) (*models.JobPost, error) {
	job, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusClosed {
		return job, nil
	}
	job.Status = models.JobStatusClosed
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id uint) (*models.JobPost, error) {
	return s.jobRepo.GetByID(ctx, id)
}

func (s *JobService) ListMine(ctx context.Context, actor models.Actor, limit, offset int) ([]models.JobPost, error) {
	if actor.Role != models.RoleEmployer {
		return nil, models.NewForbiddenError("Only employers have job posts")
	}
	return s.jobRepo.ListByEmployer(ctx, actor.ID, limit, offset)
}

func (s *JobService) owned(ctx context.Context, actor models.Actor, id uint) (*models.JobPost, error) {
	if actor.Role != models.RoleEmployer {
		return nil, models.NewForbiddenError("Only employers can edit jobs")
	}
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != actor.ID {
		return nil, models.NewForbiddenError("You can only edit your own job posts")
	}
	return job, nil
}
