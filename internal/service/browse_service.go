package service

import (
	"context"

	"whvmatch/internal/models"
	"whvmatch/internal/repository"
)

// MakerCard is one row of an employer's maker browse.
type MakerCard struct {
	Profile models.MakerProfile `json:"profile"`
	Liked   bool                `json:"liked"`
}

// MakerBrowse filters makers. JobPostID selects the job context of the Liked flag.
type MakerBrowse struct {
	repository.MakerFilter
	JobPostID uint
}

// BrowseService lists the other side of the marketplace with plain attribute
// filters. It does not rank results.
type BrowseService struct {
	profileRepo repository.ProfileRepository
	jobRepo     repository.JobRepository
	likeRepo    repository.LikeRepository
}

func NewBrowseService(profileRepo repository.ProfileRepository, jobRepo repository.JobRepository, likeRepo repository.LikeRepository) *BrowseService {
	return &BrowseService{profileRepo: profileRepo, jobRepo: jobRepo, likeRepo: likeRepo}
}

func (s *BrowseService) Makers(ctx context.Context, actor models.Actor, q MakerBrowse, limit, offset int) ([]MakerCard, error) {
	if actor.Role != models.RoleEmployer {
		return nil, models.NewForbiddenError("Only employers can browse makers")
	}
	makers, err := s.profileRepo.ListMakers(ctx, q.MakerFilter, limit, offset)
	if err != nil {
		return nil, err
	}
	liked, err := s.likedSet(ctx, actor)
	if err != nil {
		return nil, err
	}

	cards := make([]MakerCard, 0, len(makers))
	for _, m := range makers {
		_, ok := liked[likeTargetKey{userID: m.UserID, jobPostID: q.JobPostID}]
		cards = append(cards, MakerCard{Profile: m, Liked: ok})
	}
	return cards, nil
}

func (s *BrowseService) Jobs(ctx context.Context, actor models.Actor, filter repository.JobFilter, limit, offset int) ([]models.JobPost, error) {
	if actor.Role != models.RoleWHV {
		return nil, models.NewForbiddenError("Only job seekers can browse jobs")
	}
	jobs, err := s.jobRepo.ListOpen(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	liked, err := s.likedSet(ctx, actor)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		_, jobs[i].Liked = liked[likeTargetKey{userID: jobs[i].EmployerID, jobPostID: jobs[i].ID}]
	}
	return jobs, nil
}

type likeTargetKey struct {
	userID    uint
	jobPostID uint
}

func (s *BrowseService) likedSet(ctx context.Context, actor models.Actor) (map[likeTargetKey]struct{}, error) {
	keys, err := s.likeRepo.ListLikedTargets(ctx, actor)
	if err != nil {
		return nil, err
	}
	set := make(map[likeTargetKey]struct{}, len(keys))
	for _, k := range keys {
		set[likeTargetKey{userID: k.LikedUserID, jobPostID: k.JobPostID}] = struct{}{}
	}
	return set, nil
}
