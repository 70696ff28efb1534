package repository

import (
	"context"
	"errors"
	"time"

	"whvmatch/internal/models"
	"whvmatch/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository is the accessor for the likes table.
type LikeRepository interface {
	Upsert(ctx context.Context, like *models.Like) (bool, error)
	Delete(ctx context.Context, key models.LikeKey) (bool, error)
	Exists(ctx context.Context, key models.LikeKey) (bool, error)
	Get(ctx context.Context, key models.LikeKey) (*models.Like, error)
	ListMutual(ctx context.Context, actor models.Actor, limit, offset int) ([]MutualLike, error)
	ListLikedTargets(ctx context.Context, actor models.Actor) ([]models.LikeKey, error)
}

// MutualLike is one row of the matches query: the counterpart and both like times.
type MutualLike struct {
	CounterpartID uint
	JobPostID     uint
	LikedAt       time.Time
	LikedBackAt   time.Time
}

// MatchedAt is when the second of the two likes was created.
func (m MutualLike) MatchedAt() time.Time {
	if m.LikedBackAt.After(m.LikedAt) {
		return m.LikedBackAt
	}
	return m.LikedAt
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a GORM-backed LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func whereKey(db *gorm.DB, key models.LikeKey) *gorm.DB {
	return db.Where("liker_id = ? AND liker_role = ? AND liked_user_id = ? AND job_post_id = ?",
		key.LikerID, key.LikerRole, key.LikedUserID, key.JobPostID)
}

// Upsert inserts like unless the tuple already exists. created is false for an
// existing row; that is not an error.
func (r *likeRepository) Upsert(ctx context.Context, like *models.Like) (bool, error) {
	defer observability.TrackQuery("upsert", "likes")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "LikeRepository.Upsert", "likes")
	defer span.End()

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, key models.LikeKey) (bool, error) {
	defer observability.TrackQuery("delete", "likes")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "LikeRepository.Delete", "likes")
	defer span.End()

	res := whereKey(r.db.WithContext(ctx), key).Delete(&models.Like{})
	if res.Error != nil {
		span.RecordError(res.Error)
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists always reads the primary so a write is visible to the reciprocity check
// that follows it.
func (r *likeRepository) Exists(ctx context.Context, key models.LikeKey) (bool, error) {
	defer observability.TrackQuery("exists", "likes")()

	var count int64
	if err := whereKey(r.db.WithContext(ctx).Model(&models.Like{}), key).Limit(1).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) Get(ctx context.Context, key models.LikeKey) (*models.Like, error) {
	var like models.Like
	if err := whereKey(r.db.WithContext(ctx), key).First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &like, nil
}

func (r *likeRepository) ListMutual(ctx context.Context, actor models.Actor, limit, offset int) ([]MutualLike, error) {
	defer observability.TrackQuery("list_mutual", "likes")()

	var rows []MutualLike
	err := readDB(r.db).WithContext(ctx).
		Table("likes AS l").
		Select("l.liked_user_id AS counterpart_id, l.job_post_id AS job_post_id, l.created_at AS liked_at, b.created_at AS liked_back_at").
		Joins("JOIN likes AS b ON b.liker_id = l.liked_user_id AND b.liked_user_id = l.liker_id AND b.job_post_id = l.job_post_id AND b.liker_role = ?", actor.Role.Opposite()).
		Where("l.liker_id = ? AND l.liker_role = ?", actor.ID, actor.Role).
		Order("l.id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *likeRepository) ListLikedTargets(ctx context.Context, actor models.Actor) ([]models.LikeKey, error) {
	var likes []models.Like
	if err := readDB(r.db).WithContext(ctx).
		Where("liker_id = ? AND liker_role = ?", actor.ID, actor.Role).
		Find(&likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	keys := make([]models.LikeKey, 0, len(likes))
	for i := range likes {
		keys = append(keys, likes[i].Key())
	}
	return keys, nil
}
