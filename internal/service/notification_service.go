package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/notifications"
	"whvmatch/internal/observability"
	"whvmatch/internal/repository"

	"gorm.io/datatypes"
)

// LikeNotificationInput identifies the like a notification is created for.
// Mutual is the reciprocity observed right after the like was written; the
// notification type follows it even if the store changed since.
type LikeNotificationInput struct {
	LikerID   uint
	LikerRole models.Role
	LikedID   uint
	JobPostID uint
	Mutual    bool
}

type likeNotificationData struct {
	LikerID   uint `json:"liker_id"`
	LikedID   uint `json:"liked_id"`
	JobPostID uint `json:"job_post_id,omitempty"`
	Mutual    bool `json:"mutual"`
}

// NotificationService creates, lists and acknowledges inbox notifications.
type NotificationService struct {
	notifs    repository.NotificationRepository
	settings  repository.NotificationSettingRepository
	users     repository.UserRepository
	jobs      repository.JobRepository
	templates *notifications.Templates
	notifier  *notifications.Notifier
	hub       *notifications.Hub
	now       func() time.Time
}

// NotificationServiceConfig groups NotificationService dependencies.
type NotificationServiceConfig struct {
	Notifications repository.NotificationRepository
	Settings      repository.NotificationSettingRepository
	Users         repository.UserRepository
	Jobs          repository.JobRepository
	Templates     *notifications.Templates
	// Notifier delivers realtime events across instances. When it has no Redis
	// client, events go straight to Hub.
	Notifier *notifications.Notifier
	Hub      *notifications.Hub
}

// NewNotificationService returns a NotificationService.
func NewNotificationService(cfg NotificationServiceConfig) *NotificationService {
	return &NotificationService{
		notifs:    cfg.Notifications,
		settings:  cfg.Settings,
		users:     cfg.Users,
		jobs:      cfg.Jobs,
		templates: cfg.Templates,
		notifier:  cfg.Notifier,
		hub:       cfg.Hub,
		now:       time.Now,
	}
}

type recipient struct {
	id         uint
	role       models.Role
	senderID   uint
	senderRole models.Role
}

// CreateLikeNotification creates the notifications for one acknowledged like.
// A like that completed a match sends mutual_match to both sides; otherwise the liked user
// receives job_like (from an employer) or maker_like (from a maker). Recipients
// who disabled notifications are skipped.
func (s *NotificationService) CreateLikeNotification(ctx context.Context, in LikeNotificationInput) ([]models.Notification, error) {
	var typ models.NotificationType
	recipients := []recipient{{id: in.LikedID, role: in.LikerRole.Opposite(), senderID: in.LikerID, senderRole: in.LikerRole}}
	switch {
	case in.Mutual:
		typ = models.NotificationMutualMatch
		recipients = append(recipients, recipient{id: in.LikerID, role: in.LikerRole, senderID: in.LikedID, senderRole: in.LikerRole.Opposite()})
	case in.LikerRole == models.RoleEmployer:
		typ = models.NotificationJobLike
	default:
		typ = models.NotificationMakerLike
	}

	users, err := s.users.GetByIDs(ctx, []uint{in.LikerID, in.LikedID})
	if err != nil {
		return nil, fmt.Errorf("load like participants: %w", err)
	}

	var jobTitle string
	var jobID *uint
	if in.JobPostID != 0 {
		job, err := s.jobs.GetByID(ctx, in.JobPostID)
		if err != nil {
			return nil, fmt.Errorf("load job post: %w", err)
		}
		jobTitle = job.Title
		id := in.JobPostID
		jobID = &id
	}

	data, err := json.Marshal(likeNotificationData{
		LikerID:   in.LikerID,
		LikedID:   in.LikedID,
		JobPostID: in.JobPostID,
		Mutual:    in.Mutual,
	})
	if err != nil {
		return nil, fmt.Errorf("encode notification data: %w", err)
	}

	created := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		enabled, err := s.enabled(ctx, r.id, r.role)
		if err != nil {
			return created, err
		}
		if !enabled {
			observability.NotificationDispatch.WithLabelValues(string(typ), "suppressed").Inc()
			continue
		}

		title, message, err := s.templates.Render(typ, notifications.TemplateData{
			SenderName: users[r.senderID].DisplayName,
			JobTitle:   jobTitle,
		})
		if err != nil {
			return created, err
		}

		n := models.Notification{
			RecipientID:   r.id,
			RecipientRole: r.role,
			SenderID:      r.senderID,
			SenderRole:    r.senderRole,
			Type:          typ,
			JobPostID:     jobID,
			Title:         title,
			Message:       message,
			Data:          datatypes.JSON(data),
		}
		if err := s.notifs.Create(ctx, &n); err != nil {
			return created, fmt.Errorf("store %s notification: %w", typ, err)
		}
		created = append(created, n)
		observability.NotificationDispatch.WithLabelValues(string(typ), "created").Inc()

		s.push(ctx, &n)
	}
	return created, nil
}

func (s *NotificationService) enabled(ctx context.Context, userID uint, role models.Role) (bool, error) {
	setting, err := s.settings.Get(ctx, userID, role)
	if err != nil {
		return false, err
	}
	return setting == nil || setting.NotificationsEnabled, nil
}

// push delivers a notification_created event. Delivery failures are logged only.
func (s *NotificationService) push(ctx context.Context, n *models.Notification) {
	unread, err := s.notifs.UnreadCount(ctx, n.RecipientID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to count unread notifications", slog.String("error", err.Error()))
	}
	msg, err := notifications.EncodeEvent(notifications.EventNotificationCreated, notifications.NotificationPayload{
		Notification: n,
		UnreadCount:  unread,
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode notification event", slog.String("error", err.Error()))
		return
	}

	if s.notifier.Enabled() {
		if err := s.notifier.PublishUser(ctx, n.RecipientID, msg); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish notification",
				slog.Uint64("recipient_id", uint64(n.RecipientID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if s.hub != nil {
		s.hub.Broadcast(n.RecipientID, msg)
	}
}

// List returns actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.notifs.ListForRecipient(ctx, actor.ID, unreadOnly, limit, offset)
}

// UnreadCount returns the number of notifications actor has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	return s.notifs.UnreadCount(ctx, actor.ID)
}

// MarkRead sets read_at on one of actor's notifications. A notification that is
// already read keeps its original timestamp.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id uint) (*models.Notification, error) {
	n, err := s.notifs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != actor.ID {
		return nil, models.NewForbiddenError("You can only read your own notifications")
	}
	if n.IsRead() {
		return n, nil
	}

	if _, err := s.notifs.MarkRead(ctx, id, actor.ID, s.now()); err != nil {
		return nil, err
	}
	return s.notifs.GetByID(ctx, id)
}

// MarkAllRead marks every unread notification of actor as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int64, error) {
	return s.notifs.MarkAllRead(ctx, actor.ID, s.now())
}

// GetSettings returns actor's preference, defaulting to enabled.
func (s *NotificationService) GetSettings(ctx context.Context, actor models.Actor) (*models.NotificationSetting, error) {
	setting, err := s.settings.Get(ctx, actor.ID, actor.Role)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return &models.NotificationSetting{UserID: actor.ID, Role: actor.Role, NotificationsEnabled: true}, nil
	}
	return setting, nil
}

// UpdateSettings upserts actor's preference.
func (s *NotificationService) UpdateSettings(ctx context.Context, actor models.Actor, enabled bool) (*models.NotificationSetting, error) {
	setting := &models.NotificationSetting{
		UserID:               actor.ID,
		Role:                 actor.Role,
		NotificationsEnabled: enabled,
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
