package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/observability"

	"github.com/google/uuid"
)

const (
	likeFeedName   = "like feed"
	likeFeedBuffer = 16
)

// ErrFeedClosed is returned when subscribing to a feed that has been shut down.
var ErrFeedClosed = errors.New("like feed closed")

// LikeFilter selects the events a subscription receives. A nil filter receives everything.
type LikeFilter func(models.LikeEvent) bool

// Subscription is one open handle on the like feed.
type Subscription struct {
	C <-chan models.LikeEvent

	ch     chan models.LikeEvent
	filter LikeFilter
	feed   *LikeFeed
	once   sync.Once
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.feed.remove(s)
	})
}

// LikeFeed is the change feed of the like store. Events published on one instance
// reach subscribers on every instance when a Notifier with Redis is attached.
type LikeFeed struct {
	mu       sync.RWMutex
	subs     map[*Subscription]struct{}
	closed   bool
	notifier *Notifier
	origin   string
}

type likeEnvelope struct {
	Origin string           `json:"origin"`
	Event  models.LikeEvent `json:"event"`
}

// NewLikeFeed creates a feed. notifier may be nil for a single-instance feed.
func NewLikeFeed(notifier *Notifier) *LikeFeed {
	return &LikeFeed{
		subs:     make(map[*Subscription]struct{}),
		notifier: notifier,
		origin:   uuid.NewString(),
	}
}

// Subscribe opens a subscription that receives events accepted by filter.
func (f *LikeFeed) Subscribe(filter LikeFilter) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFeedClosed
	}

	ch := make(chan models.LikeEvent, likeFeedBuffer)
	sub := &Subscription{C: ch, ch: ch, filter: filter, feed: f}
	f.subs[sub] = struct{}{}
	observability.LikeFeedSubscribers.Inc()
	return sub, nil
}

func (f *LikeFeed) remove(sub *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; !ok {
		return
	}
	delete(f.subs, sub)
	close(sub.ch)
	observability.LikeFeedSubscribers.Dec()
}

// Publish delivers evt to local subscribers and relays it to other instances.
func (f *LikeFeed) Publish(ctx context.Context, evt models.LikeEvent) {
	f.fanout(evt)

	if !f.notifier.Enabled() {
		return
	}
	payload, err := json.Marshal(likeEnvelope{Origin: f.origin, Event: evt})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode like event", slog.String("error", err.Error()))
		return
	}
	if err := f.notifier.PublishLikeEvent(ctx, payload); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to relay like event", slog.String("error", err.Error()))
	}
}

// fanout never blocks: a subscriber with a full buffer misses the event and
// catches up by re-reading the store on the next one.
func (f *LikeFeed) fanout(evt models.LikeEvent) {
	observability.LikeFeedEvents.WithLabelValues(string(evt.Type)).Inc()

	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs {
		if sub.filter != nil && !sub.filter(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			observability.WebSocketBackpressureDrops.WithLabelValues(likeFeedName, "full").Inc()
		}
	}
}

// StartRelay feeds events published by other instances into this feed.
func (f *LikeFeed) StartRelay(ctx context.Context) error {
	return f.notifier.StartLikeEventSubscriber(ctx, func(_ string, payload string) {
		var env likeEnvelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			middleware.Logger.Warn("dropping malformed like event", slog.String("error", err.Error()))
			return
		}
		if env.Origin == f.origin {
			return
		}
		f.fanout(env.Event)
	})
}

// SubscriberCount returns the number of open subscriptions.
func (f *LikeFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Close ends every subscription and rejects new ones.
func (f *LikeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for sub := range f.subs {
		delete(f.subs, sub)
		close(sub.ch)
		observability.LikeFeedSubscribers.Dec()
	}
}
