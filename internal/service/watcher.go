package service

import (
	"context"
	"log/slog"
	"sync"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/notifications"
	"whvmatch/internal/repository"
)

// LikeWatcher follows the like state between one actor and one counterpart in a
// job context. State is always re-read from the store; events only trigger the read.
type LikeWatcher struct {
	likes repository.LikeRepository
	feed  *notifications.LikeFeed
	key   models.LikeKey

	mu    sync.Mutex
	state models.LikeState
	sub   *notifications.Subscription
}

// NewLikeWatcher returns a watcher for key. Call Start before Run and Close when done.
func NewLikeWatcher(likes repository.LikeRepository, feed *notifications.LikeFeed, key models.LikeKey) *LikeWatcher {
	return &LikeWatcher{
		likes: likes,
		feed:  feed,
		key:   key,
		state: models.LikeStateUnliked,
	}
}

// Start performs the initial point lookup and subscribes to the feed. A lookup
// failure is returned; a subscription failure is returned as SUBSCRIPTION_ERROR
// along with the initial state, which stays valid.
func (w *LikeWatcher) Start(ctx context.Context) (models.LikeState, error) {
	state, err := deriveState(ctx, w.likes, w.key)
	if err != nil {
		return models.LikeStateUnliked, err
	}

	w.mu.Lock()
	w.state = state
	w.mu.Unlock()

	a, b, job := w.key.LikerID, w.key.LikedUserID, w.key.JobPostID
	sub, err := w.feed.Subscribe(func(evt models.LikeEvent) bool {
		return evt.Involves(a, b, job)
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "like watcher subscription failed",
			slog.String("code", models.CodeSubscriptionError),
			slog.String("error", err.Error()),
		)
		return state, models.NewSubscriptionError(err)
	}

	w.mu.Lock()
	w.sub = sub
	w.mu.Unlock()
	return state, nil
}

// Run calls onChange for every state transition until ctx is done or the feed
// closes the subscription. Events that leave the state unchanged are ignored.
func (w *LikeWatcher) Run(ctx context.Context, onChange func(prev, next models.LikeState)) {
	w.mu.Lock()
	sub := w.sub
	w.mu.Unlock()
	if sub == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.C:
			if !ok {
				return
			}
			prev, next, changed := w.refresh(ctx)
			if changed && ctx.Err() == nil {
				onChange(prev, next)
			}
		}
	}
}

// refresh keeps the last known state when the store cannot be read.
func (w *LikeWatcher) refresh(ctx context.Context) (prev, next models.LikeState, changed bool) {
	state, err := deriveState(ctx, w.likes, w.key)

	w.mu.Lock()
	defer w.mu.Unlock()
	prev = w.state
	if err != nil {
		if ctx.Err() == nil {
			middleware.Logger.WarnContext(ctx, "like watcher refresh failed",
				slog.String("code", models.CodeSubscriptionError),
				slog.String("error", err.Error()),
			)
		}
		return prev, prev, false
	}
	w.state = state
	return prev, state, prev != state
}

// State returns the last known state.
func (w *LikeWatcher) State() models.LikeState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Close releases the feed subscription. It is safe to call more than once.
func (w *LikeWatcher) Close() {
	w.mu.Lock()
	sub := w.sub
	w.sub = nil
	w.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}
