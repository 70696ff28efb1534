package service

import (
	"context"
	"strings"
	"time"

	"whvmatch/internal/cache"
	"whvmatch/internal/models"
	"whvmatch/internal/repository"
	"whvmatch/internal/validation"
)

const (
	maxNameLen = 120
	maxBioLen  = 2000
)

// ProfileService manages employer and maker profiles.
type ProfileService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

// Me is the caller's own account with whichever profile matches its role.
type Me struct {
	User     *models.User            `json:"user"`
	Employer *models.EmployerProfile `json:"employer,omitempty"`
	Maker    *models.MakerProfile    `json:"maker,omitempty"`
}

type UpdateEmployerInput struct {
	BusinessName string `json:"business_name"`
	Industry     string `json:"industry"`
	State        string `json:"state"`
	Suburb       string `json:"suburb"`
	Postcode     string `json:"postcode"`
	About        string `json:"about"`
	Website      string `json:"website"`
	ContactName  string `json:"contact_name"`
}

type UpdateMakerInput struct {
	GivenName         string           `json:"given_name"`
	FamilyName        string           `json:"family_name"`
	Nationality       string           `json:"nationality"`
	VisaType          models.VisaType  `json:"visa_type"`
	VisaStage         models.VisaStage `json:"visa_stage"`
	VisaExpiry        *time.Time       `json:"visa_expiry"`
	PreferredIndustry string           `json:"preferred_industry"`
	PreferredState    string           `json:"preferred_state"`
	Bio               string           `json:"bio"`
	AvailableFrom     *time.Time       `json:"available_from"`
}

func NewProfileService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo, profileRepo: profileRepo}
}

func (s *ProfileService) GetMe(ctx context.Context, actor models.Actor) (*Me, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	me := &Me{User: user}
	switch actor.Role {
	case models.RoleEmployer:
		me.Employer, err = s.profileRepo.GetEmployer(ctx, actor.ID)
	case models.RoleWHV:
		me.Maker, err = s.profileRepo.GetMaker(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}
	return me, nil
}

// UpdateEmployer creates or replaces the employer profile of actor and keeps the
// account display name in sync with the business name.
func (s *ProfileService) UpdateEmployer(ctx context.Context, actor models.Actor, in UpdateEmployerInput) (*models.EmployerProfile, error) {
	if actor.Role != models.RoleEmployer {
		return nil, models.NewForbiddenError("Only employers have an employer profile")
	}
	if err := validation.ValidateName("business_name", in.BusinessName, 200); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateState(in.State); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.About) > maxBioLen {
		return nil, models.NewValidationError("About too long (max 2000 characters)")
	}

	p := &models.EmployerProfile{
		UserID:       actor.ID,
		BusinessName: strings.TrimSpace(in.BusinessName),
		Industry:     in.Industry,
		State:        strings.ToUpper(in.State),
		Suburb:       in.Suburb,
		Postcode:     in.Postcode,
		About:        in.About,
		Website:      in.Website,
		ContactName:  in.ContactName,
	}
	if err := s.profileRepo.SaveEmployer(ctx, p); err != nil {
		return nil, err
	}
	if err := s.syncDisplayName(ctx, actor.ID, p.BusinessName); err != nil {
		return nil, err
	}
	return s.profileRepo.GetEmployer(ctx, actor.ID)
}

// UpdateMaker creates or replaces the maker profile of actor.
func (s *ProfileService) UpdateMaker(ctx context.Context, actor models.Actor, in UpdateMakerInput) (*models.MakerProfile, error) {
	if actor.Role != models.RoleWHV {
		return nil, models.NewForbiddenError("Only job seekers have a maker profile")
	}
	if err := validation.ValidateName("given_name", in.GivenName, maxNameLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateVisa(in.VisaType, in.VisaStage); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateState(in.PreferredState); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if len(in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 2000 characters)")
	}

	p := &models.MakerProfile{
		UserID:            actor.ID,
		GivenName:         strings.TrimSpace(in.GivenName),
		FamilyName:        strings.TrimSpace(in.FamilyName),
		Nationality:       in.Nationality,
		VisaType:          in.VisaType,
		VisaStage:         in.VisaStage,
		VisaExpiry:        in.VisaExpiry,
		PreferredIndustry: in.PreferredIndustry,
		PreferredState:    strings.ToUpper(in.PreferredState),
		Bio:               in.Bio,
		AvailableFrom:     in.AvailableFrom,
	}
	if err := s.profileRepo.SaveMaker(ctx, p); err != nil {
		return nil, err
	}
	if err := s.syncDisplayName(ctx, actor.ID, p.FullName()); err != nil {
		return nil, err
	}
	return s.profileRepo.GetMaker(ctx, actor.ID)
}

func (s *ProfileService) syncDisplayName(ctx context.Context, userID uint, name string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.DisplayName == name {
		return nil
	}
	user.DisplayName = name
	return s.userRepo.Update(ctx, user)
}

// GetPublic returns another user's public profile. Results are cached until the
// owner updates their profile.
func (s *ProfileService) GetPublic(ctx context.Context, userID uint) (*models.PublicProfile, error) {
	var p models.PublicProfile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &p, cache.ProfileTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		p = models.PublicProfile{UserID: user.ID, Role: user.Role, Name: user.DisplayName}
		switch user.Role {
		case models.RoleEmployer:
			p.Employer, err = s.profileRepo.GetEmployer(ctx, userID)
		case models.RoleWHV:
			p.Maker, err = s.profileRepo.GetMaker(ctx, userID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
