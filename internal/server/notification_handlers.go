package server

import (
	"whvmatch/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// @Summary List notifications
// @Description Newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	items, err := s.notificationService.List(c.UserContext(), actor, c.QueryBool("unread", false), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetUnreadCount handles GET /api/notifications/unread-count
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{count=int}
// @Router /notifications/unread-count [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	count, err := s.notificationService.UnreadCount(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
// @Summary Mark a notification read
// @Description read_at is set once and never changes afterwards
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.notificationService.MarkRead(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(n)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{updated=int}
// @Router /notifications/read-all [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	updated, err := s.notificationService.MarkAllRead(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

// GetNotificationSettings handles GET /api/notification-settings
// @Summary Notification preference
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.NotificationSetting
// @Router /notification-settings [get]
func (s *Server) GetNotificationSettings(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	setting, err := s.notificationService.GetSettings(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(setting)
}

// UpdateNotificationSettings handles PUT /api/notification-settings
// @Summary Update notification preference
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{notifications_enabled=bool} true "Preference"
// @Success 200 {object} models.NotificationSetting
// @Failure 400 {object} models.ErrorResponse
// @Router /notification-settings [put]
func (s *Server) UpdateNotificationSettings(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req struct {
		NotificationsEnabled *bool `json:"notifications_enabled"`
	}
	if err := c.BodyParser(&req); err != nil || req.NotificationsEnabled == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("notifications_enabled is required"))
	}

	setting, err := s.notificationService.UpdateSettings(c.UserContext(), actor, *req.NotificationsEnabled)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(setting)
}
