package repository

import (
	"context"
	"errors"

	"whvmatch/internal/cache"
	"whvmatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MakerFilter narrows the makers an employer browses. Empty fields match everything.
type MakerFilter struct {
	Industry  string
	State     string
	VisaType  models.VisaType
	VisaStage models.VisaStage
}

// ProfileRepository stores the role-specific profile of each user.
type ProfileRepository interface {
	GetEmployer(ctx context.Context, userID uint) (*models.EmployerProfile, error)
	GetMaker(ctx context.Context, userID uint) (*models.MakerProfile, error)
	SaveEmployer(ctx context.Context, p *models.EmployerProfile) error
	SaveMaker(ctx context.Context, p *models.MakerProfile) error
	ListMakers(ctx context.Context, filter MakerFilter, limit, offset int) ([]models.MakerProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a GORM-backed ProfileRepository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetEmployer returns nil, nil when the employer has not created a profile yet.
func (r *profileRepository) GetEmployer(ctx context.Context, userID uint) (*models.EmployerProfile, error) {
	var p models.EmployerProfile
	if err := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

// GetMaker returns nil, nil when the maker has not created a profile yet.
func (r *profileRepository) GetMaker(ctx context.Context, userID uint) (*models.MakerProfile, error) {
	var p models.MakerProfile
	if err := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *profileRepository) SaveEmployer(ctx context.Context, p *models.EmployerProfile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name", "industry", "state", "suburb", "postcode",
			"about", "website", "contact_name", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, p.UserID)
	return nil
}

func (r *profileRepository) SaveMaker(ctx context.Context, p *models.MakerProfile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"given_name", "family_name", "nationality", "visa_type", "visa_stage",
			"visa_expiry", "preferred_industry", "preferred_state", "bio",
			"available_from", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, p.UserID)
	return nil
}

func (r *profileRepository) ListMakers(ctx context.Context, filter MakerFilter, limit, offset int) ([]models.MakerProfile, error) {
	q := readDB(r.db).WithContext(ctx).Model(&models.MakerProfile{})
	if filter.Industry != "" {
		q = q.Where("preferred_industry = ?", filter.Industry)
	}
	if filter.State != "" {
		q = q.Where("preferred_state = ?", filter.State)
	}
	if filter.VisaType != "" {
		q = q.Where("visa_type = ?", filter.VisaType)
	}
	if filter.VisaStage != "" {
		q = q.Where("visa_stage = ?", filter.VisaStage)
	}

	var out []models.MakerProfile
	if err := q.Order("updated_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}
