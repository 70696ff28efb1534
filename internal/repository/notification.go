package repository

import (
	"context"
	"errors"
	"time"

	"whvmatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository stores inbox entries.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uint, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uint, at time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a GORM-backed NotificationRepository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &n, nil
}

// ListForRecipient returns the inbox newest first.
func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	q := readDB(r.db).WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}

	var out []models.Notification
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkRead stamps read_at once. changed is false when the notification was
// already read or does not belong to recipientID.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, recipientID).
		Update("read_at", at)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Update("read_at", at)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// NotificationSettingRepository stores per-user notification preferences.
type NotificationSettingRepository interface {
	Get(ctx context.Context, userID uint, role models.Role) (*models.NotificationSetting, error)
	Upsert(ctx context.Context, setting *models.NotificationSetting) error
}

type notificationSettingRepository struct {
	db *gorm.DB
}

// NewNotificationSettingRepository returns a GORM-backed NotificationSettingRepository.
func NewNotificationSettingRepository(db *gorm.DB) NotificationSettingRepository {
	return &notificationSettingRepository{db: db}
}

// Get returns nil, nil when the user never saved a preference.
func (r *notificationSettingRepository) Get(ctx context.Context, userID uint, role models.Role) (*models.NotificationSetting, error) {
	var s models.NotificationSetting
	if err := r.db.WithContext(ctx).Where("user_id = ? AND role = ?", userID, role).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &s, nil
}

func (r *notificationSettingRepository) Upsert(ctx context.Context, setting *models.NotificationSetting) error {
	setting.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"notifications_enabled", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
