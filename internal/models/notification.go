package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType enumerates the like-related notification kinds.
type NotificationType string

const (
	// NotificationJobLike is sent to a maker when an employer likes them.
	NotificationJobLike NotificationType = "job_like"
	// NotificationMakerLike is sent to an employer when a maker likes them or their job.
	NotificationMakerLike NotificationType = "maker_like"
	// NotificationMutualMatch is sent to both sides once a like is reciprocated.
	NotificationMutualMatch NotificationType = "mutual_match"
)

// Notification is an inbox entry. ReadAt only moves from nil to a timestamp.
type Notification struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	RecipientID   uint             `gorm:"not null;index:idx_notification_inbox,priority:1" json:"recipient_id"`
	RecipientRole Role             `gorm:"type:varchar(16);not null" json:"recipient_role"`
	SenderID      uint             `gorm:"not null" json:"sender_id"`
	SenderRole    Role             `gorm:"type:varchar(16);not null" json:"sender_role"`
	Type          NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	JobPostID     *uint            `json:"job_post_id,omitempty"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Message       string           `gorm:"type:text" json:"message"`
	Data          datatypes.JSON   `json:"data,omitempty"`
	ReadAt        *time.Time       `gorm:"index" json:"read_at"`
	CreatedAt     time.Time        `gorm:"index:idx_notification_inbox,priority:2" json:"created_at"`
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NotificationSetting stores a user's notification preference per role.
// A missing row means notifications are enabled.
type NotificationSetting struct {
	ID                   uint      `gorm:"primaryKey" json:"-"`
	UserID               uint      `gorm:"not null;uniqueIndex:idx_notification_setting_owner,priority:1" json:"user_id"`
	Role                 Role      `gorm:"type:varchar(16);not null;uniqueIndex:idx_notification_setting_owner,priority:2" json:"role"`
	NotificationsEnabled bool      `gorm:"not null" json:"notifications_enabled"`
	UpdatedAt            time.Time `json:"updated_at"`
}
