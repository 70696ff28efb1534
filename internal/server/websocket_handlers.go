package server

import (
	"context"
	"log/slog"
	"time"

	"whvmatch/internal/featureflags"
	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/notifications"
	"whvmatch/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	localActor   = "actor"
	localLikeKey = "likeKey"

	wsWriteWait = 10 * time.Second
)

// LikeStatePayload is the body of a like_state event.
type LikeStatePayload struct {
	TargetID  uint             `json:"target_id"`
	JobPostID uint             `json:"job_post_id,omitempty"`
	Previous  models.LikeState `json:"previous"`
	State     models.LikeState `json:"state"`
	View      service.LikeView `json:"view"`
}

// WebsocketHandler returns a websocket handler that registers connections with the Hub.
// Authentication is handled by route middleware and userID is read from connection locals.
// @Summary Notification stream
// @Description Pushes notification_created events. Authenticate with ?ticket= from /ws/ticket.
// @Tags realtime
// @Param ticket query string true "WebSocket ticket"
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed",
				slog.Uint64("user_id", uint64(uid)),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		ctx := context.Background()
		if unread, err := s.notificationRepo.UnreadCount(ctx, uid); err == nil {
			if msg, err := notifications.EncodeEvent(notifications.EventConnected, fiber.Map{"unread_count": unread}); err == nil {
				client.TrySend([]byte(msg))
			}
		}

		client.Run()
	})
}

// WebSocketLikesHandler streams like_state events for one counterpart and job.
// The target is validated before the upgrade so errors return as JSON.
// @Summary Live like state
// @Description Sends the current state on connect and a like_state event on every change.
// @Tags realtime
// @Param ticket query string true "WebSocket ticket"
// @Param target_id query int false "Counterpart user ID"
// @Param job_post_id query int false "Job context"
// @Failure 403 {object} models.ErrorResponse
// @Router /ws/likes [get]
func (s *Server) WebSocketLikesHandler() fiber.Handler {
	upgrade := websocket.New(s.serveLikeStream)
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		actor, err := s.actor(c)
		if err != nil {
			return nil
		}
		if !s.featureFlags.Enabled(featureflags.LiveLikes, actor.ID) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Live like updates are disabled"))
		}

		target, err := parseLikeTarget(c)
		if err != nil {
			return respondError(c, err)
		}
		key, err := s.likeService.ResolveKey(c.UserContext(), actor, target)
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(localActor, actor)
		c.Locals(localLikeKey, key)
		return upgrade(c)
	}
}

func (s *Server) serveLikeStream(conn *websocket.Conn) {
	middleware.ActiveWebSockets.Inc()
	defer middleware.ActiveWebSockets.Dec()
	defer func() { _ = conn.Close() }()

	actor, _ := conn.Locals(localActor).(models.Actor)
	key, ok := conn.Locals(localLikeKey).(models.LikeKey)
	if !ok {
		return
	}

	// Cancelled when the client goes away; late store reads are then discarded.
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), middleware.UserIDKey, actor.ID))
	defer cancel()

	watcher := service.NewLikeWatcher(s.likeRepo, s.likeFeed, key)
	defer watcher.Close()

	state, err := watcher.Start(ctx)
	subscribed := err == nil
	if err != nil && models.ErrorCode(err) != models.CodeSubscriptionError {
		middleware.Logger.WarnContext(ctx, "like stream initial lookup failed", slog.String("error", err.Error()))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"like state unavailable"}`))
		return
	}

	name := s.likeService.CounterpartName(ctx, key.LikedUserID)
	send := func(prev, next models.LikeState) bool {
		view := service.Present(prev, next, name)
		if !s.featureFlags.Enabled(featureflags.MatchBanner, actor.ID) {
			view.Match = nil
		}
		msg, err := notifications.EncodeEvent(notifications.EventLikeState, LikeStatePayload{
			TargetID:  key.LikedUserID,
			JobPostID: key.JobPostID,
			Previous:  prev,
			State:     next,
			View:      view,
		})
		if err != nil {
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteMessage(websocket.TextMessage, []byte(msg)) == nil
	}

	if !send(state, state) {
		return
	}

	// The client only ever closes; reading detects it.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	// The reader must be gone before the upgrader releases conn.
	defer func() {
		_ = conn.Close()
		<-readerDone
	}()

	if !subscribed {
		// Without a subscription the last known state stands until the client leaves.
		<-ctx.Done()
		return
	}

	watcher.Run(ctx, func(prev, next models.LikeState) {
		if !send(prev, next) {
			cancel()
		}
	})
}
