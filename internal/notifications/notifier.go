// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPattern = "notifications:user:*"
	// LikeEventsChannel carries like change events between instances.
	LikeEventsChannel = "likes:events"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether the notifier has a Redis connection.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and calls onMessage
// for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel string, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	// Wait for the subscription to be confirmed so publishes right after start are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("psubscribe %s: %w", userChannelPattern, err)
	}
	go pump(ctx, sub, "PatternSubscriber", onMessage)
	return nil
}

// PublishLikeEvent relays a like change to every instance.
func (n *Notifier) PublishLikeEvent(ctx context.Context, payload []byte) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, LikeEventsChannel, payload).Err()
}

// StartLikeEventSubscriber subscribes to the like change channel.
func (n *Notifier) StartLikeEventSubscriber(ctx context.Context, onMessage func(channel string, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, LikeEventsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", LikeEventsChannel, err)
	}
	go pump(ctx, sub, "LikeEventSubscriber", onMessage)
	return nil
}

func pump(ctx context.Context, sub *redis.PubSub, name string, onMessage func(channel string, payload string)) {
	defer func() { _ = sub.Close() }()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						middleware.Logger.Error("panic in redis subscriber",
							slog.String("subscriber", name),
							slog.Any("panic", r),
							slog.String("stack", string(debug.Stack())),
						)
					}
				}()
				onMessage(msg.Channel, msg.Payload)
			}()
		}
	}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// Event is the envelope pushed to WebSocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Realtime event types.
const (
	EventConnected           = "connected"
	EventNotificationCreated = "notification_created"
	EventLikeState           = "like_state"
	EventMessagesDropped     = "messages_dropped"
)

// EncodeEvent marshals an Event into its wire form.
func EncodeEvent(eventType string, payload any) (string, error) {
	b, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return string(b), nil
}

// NotificationPayload is the body of a notification_created event.
type NotificationPayload struct {
	Notification *models.Notification `json:"notification"`
	UnreadCount  int64                `json:"unread_count"`
}
