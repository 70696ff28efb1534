package service

import (
	"context"
	"fmt"
	"log/slog"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/notifications"
	"whvmatch/internal/observability"
	"whvmatch/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// LikeTarget names the counterpart of a like and its optional job context.
// A maker may leave TargetID empty when liking a job; the job's employer is used.
type LikeTarget struct {
	TargetID  uint `json:"target_id"`
	JobPostID uint `json:"job_post_id"`
}

// LikeNotifier creates the notifications for an acknowledged like.
type LikeNotifier interface {
	CreateLikeNotification(ctx context.Context, in LikeNotificationInput) ([]models.Notification, error)
}

// LikeService orchestrates like writes, reciprocity checks, notification dispatch
// and change feed publication.
type LikeService struct {
	likes      repository.LikeRepository
	users      repository.UserRepository
	jobs       repository.JobRepository
	feed       *notifications.LikeFeed
	dispatcher *notifications.Dispatcher
	notifier   LikeNotifier
}

// NewLikeService wires a LikeService. feed and dispatcher may be nil in which case
// no events are published and notifications are created synchronously.
func NewLikeService(
	likes repository.LikeRepository,
	users repository.UserRepository,
	jobs repository.JobRepository,
	feed *notifications.LikeFeed,
	dispatcher *notifications.Dispatcher,
	notifier LikeNotifier,
) *LikeService {
	return &LikeService{
		likes:      likes,
		users:      users,
		jobs:       jobs,
		feed:       feed,
		dispatcher: dispatcher,
		notifier:   notifier,
	}
}

// ResolveKey validates target against actor and returns the key of actor's like.
func (s *LikeService) ResolveKey(ctx context.Context, actor models.Actor, target LikeTarget) (models.LikeKey, error) {
	if !actor.Role.Valid() {
		return models.LikeKey{}, models.NewNotAuthenticatedError(errRoleMismatch)
	}

	targetID := target.TargetID
	if target.JobPostID != 0 {
		job, err := s.jobs.GetByID(ctx, target.JobPostID)
		if err != nil {
			return models.LikeKey{}, err
		}
		switch actor.Role {
		case models.RoleEmployer:
			if job.EmployerID != actor.ID {
				return models.LikeKey{}, models.NewForbiddenError("You can only like makers for your own job posts")
			}
		case models.RoleWHV:
			if targetID == 0 {
				targetID = job.EmployerID
			}
			if targetID != job.EmployerID {
				return models.LikeKey{}, models.NewValidationError("target_id does not own this job post")
			}
		}
	}

	if targetID == 0 {
		return models.LikeKey{}, models.NewValidationError("target_id is required")
	}
	if targetID == actor.ID {
		return models.LikeKey{}, models.NewValidationError("Cannot like yourself")
	}

	counterpart, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return models.LikeKey{}, err
	}
	if counterpart.Role != actor.Role.Opposite() {
		return models.LikeKey{}, models.NewValidationError(fmt.Sprintf("A %s can only like a %s", actor.Role, actor.Role.Opposite()))
	}

	return models.LikeKey{
		LikerID:     actor.ID,
		LikerRole:   actor.Role,
		LikedUserID: targetID,
		JobPostID:   target.JobPostID,
	}, nil
}

// Like records actor's like on target. Re-liking succeeds with Changed=false.
// The result only reports what the store acknowledged.
func (s *LikeService) Like(ctx context.Context, actor models.Actor, target LikeTarget) (*models.LikeResult, error) {
	span, ctx := observability.NewSpan(ctx, "LikeService.Like",
		attribute.Int64("actor.id", int64(actor.ID)),
		attribute.String("actor.role", string(actor.Role)),
	)
	defer span.End()

	key, err := s.ResolveKey(ctx, actor, target)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	like := &models.Like{
		LikerID:     key.LikerID,
		LikerRole:   key.LikerRole,
		LikedUserID: key.LikedUserID,
		JobPostID:   key.JobPostID,
	}
	created, err := s.likes.Upsert(ctx, like)
	observability.RecordLike("like", err, created)
	if err != nil {
		span.SetError(err)
		return nil, models.NewLikeWriteFailedError(err)
	}

	mutual, err := s.DetectMutual(ctx, actor, key.LikedUserID, key.JobPostID)
	if err != nil {
		// The like is committed; the caller can re-read the state later.
		middleware.Logger.WarnContext(ctx, "reciprocity check failed after like",
			slog.Uint64("target_id", uint64(key.LikedUserID)),
			slog.String("error", err.Error()),
		)
		mutual = false
	}
	span.AddAttributes(attribute.Bool("like.created", created), attribute.Bool("like.mutual", mutual))

	if created {
		if mutual {
			observability.MutualMatchesTotal.Inc()
		}
		s.publish(ctx, models.LikeEvent{Type: models.LikeEventInsert, New: like})
		s.dispatchNotification(ctx, LikeNotificationInput{
			LikerID:   key.LikerID,
			LikerRole: key.LikerRole,
			LikedID:   key.LikedUserID,
			JobPostID: key.JobPostID,
			Mutual:    mutual,
		})
	}

	return &models.LikeResult{
		Changed: created,
		State:   models.DeriveLikeState(true, mutual),
		Mutual:  mutual,
		Key:     key,
	}, nil
}

// Unlike removes actor's like on target. Removing a like that does not exist is a no-op.
func (s *LikeService) Unlike(ctx context.Context, actor models.Actor, target LikeTarget) (*models.LikeResult, error) {
	span, ctx := observability.NewSpan(ctx, "LikeService.Unlike",
		attribute.Int64("actor.id", int64(actor.ID)),
		attribute.String("actor.role", string(actor.Role)),
	)
	defer span.End()

	key, err := s.ResolveKey(ctx, actor, target)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	deleted, err := s.likes.Delete(ctx, key)
	observability.RecordLike("unlike", err, deleted)
	if err != nil {
		span.SetError(err)
		return nil, models.NewLikeWriteFailedError(err)
	}

	if deleted {
		s.publish(ctx, models.LikeEvent{
			Type: models.LikeEventDelete,
			Old: &models.Like{
				LikerID:     key.LikerID,
				LikerRole:   key.LikerRole,
				LikedUserID: key.LikedUserID,
				JobPostID:   key.JobPostID,
			},
		})
	}

	return &models.LikeResult{Changed: deleted, State: models.LikeStateUnliked, Key: key}, nil
}

// IsLiked reports whether actor currently likes target.
func (s *LikeService) IsLiked(ctx context.Context, actor models.Actor, target LikeTarget) (bool, error) {
	key, err := s.ResolveKey(ctx, actor, target)
	if err != nil {
		return false, err
	}
	return s.likes.Exists(ctx, key)
}

// DetectMutual re-reads the store for targetID's like back on actor in the same job context.
func (s *LikeService) DetectMutual(ctx context.Context, actor models.Actor, targetID, jobPostID uint) (bool, error) {
	reverse := models.LikeKey{
		LikerID:     actor.ID,
		LikerRole:   actor.Role,
		LikedUserID: targetID,
		JobPostID:   jobPostID,
	}.Reverse()
	return s.likes.Exists(ctx, reverse)
}

// State derives actor's relationship with target from both directional lookups.
func (s *LikeService) State(ctx context.Context, actor models.Actor, target LikeTarget) (models.LikeState, error) {
	key, err := s.ResolveKey(ctx, actor, target)
	if err != nil {
		return models.LikeStateUnliked, err
	}
	return deriveState(ctx, s.likes, key)
}

// ListMatches returns the counterparts that actor mutually likes, newest match first.
func (s *LikeService) ListMatches(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Match, error) {
	rows, err := s.likes.ListMutual(ctx, actor, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.Match{}, nil
	}

	userIDs := make([]uint, 0, len(rows))
	jobIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.CounterpartID)
		if r.JobPostID != 0 {
			jobIDs = append(jobIDs, r.JobPostID)
		}
	}

	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	jobs := map[uint]models.JobPost{}
	if len(jobIDs) > 0 {
		if jobs, err = s.jobs.GetByIDs(ctx, jobIDs); err != nil {
			return nil, err
		}
	}

	matches := make([]models.Match, 0, len(rows))
	for _, r := range rows {
		m := models.Match{
			CounterpartID:   r.CounterpartID,
			CounterpartRole: actor.Role.Opposite(),
			JobPostID:       r.JobPostID,
			MatchedAt:       r.MatchedAt(),
		}
		if u, ok := users[r.CounterpartID]; ok {
			m.CounterpartName = u.DisplayName
		}
		if j, ok := jobs[r.JobPostID]; ok {
			m.JobTitle = j.Title
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// CounterpartName returns the display name shown in like confirmations.
func (s *LikeService) CounterpartName(ctx context.Context, userID uint) string {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.DisplayName
}

func (s *LikeService) publish(ctx context.Context, evt models.LikeEvent) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, evt)
}

// dispatchNotification never reports failure to the like caller.
func (s *LikeService) dispatchNotification(ctx context.Context, in LikeNotificationInput) {
	if s.notifier == nil {
		return
	}
	ctx = middleware.WithLikeContext(ctx, in.LikerID, in.LikedID, in.JobPostID)
	task := func(ctx context.Context) error {
		if _, err := s.notifier.CreateLikeNotification(ctx, in); err != nil {
			return models.NewNotificationDispatchError(err)
		}
		return nil
	}
	if s.dispatcher != nil {
		s.dispatcher.Go(ctx, "like_notification", task)
		return
	}
	if err := task(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "like notification failed",
			slog.String("code", models.CodeNotificationDispatchFailed),
			slog.String("error", err.Error()),
		)
	}
}

func deriveState(ctx context.Context, likes repository.LikeRepository, key models.LikeKey) (models.LikeState, error) {
	liked, err := likes.Exists(ctx, key)
	if err != nil {
		return models.LikeStateUnliked, err
	}
	likedBack, err := likes.Exists(ctx, key.Reverse())
	if err != nil {
		return models.LikeStateUnliked, err
	}
	return models.DeriveLikeState(liked, likedBack), nil
}
