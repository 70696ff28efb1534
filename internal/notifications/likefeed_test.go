package notifications

import (
	"context"
	"testing"
	"time"

	"whvmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertEvent(liker, liked, job uint) models.LikeEvent {
	return models.LikeEvent{
		Type: models.LikeEventInsert,
		New:  &models.Like{LikerID: liker, LikerRole: models.RoleEmployer, LikedUserID: liked, JobPostID: job},
	}
}

func TestLikeFeed_FilterAndClose(t *testing.T) {
	feed := NewLikeFeed(nil)

	sub, err := feed.Subscribe(func(e models.LikeEvent) bool { return e.Involves(1, 2, 9) })
	require.NoError(t, err)
	assert.Equal(t, 1, feed.SubscriberCount())

	feed.Publish(context.Background(), insertEvent(3, 4, 9))
	feed.Publish(context.Background(), insertEvent(2, 1, 9))

	select {
	case evt := <-sub.C:
		assert.Equal(t, uint(2), evt.Row().LikerID)
	case <-time.After(time.Second):
		t.Fatal("expected matching event")
	}
	assert.Empty(t, sub.C)

	sub.Close()
	sub.Close()
	assert.Zero(t, feed.SubscriberCount())

	_, open := <-sub.C
	assert.False(t, open)
}

func TestLikeFeed_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	feed := NewLikeFeed(nil)
	sub, err := feed.Subscribe(nil)
	require.NoError(t, err)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < likeFeedBuffer*3; i++ {
			feed.Publish(context.Background(), insertEvent(1, 2, 0))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, sub.C, likeFeedBuffer)
}

func TestLikeFeed_ClosedFeedRejectsSubscribers(t *testing.T) {
	feed := NewLikeFeed(nil)
	sub, err := feed.Subscribe(nil)
	require.NoError(t, err)

	feed.Close()
	_, open := <-sub.C
	assert.False(t, open)
	sub.Close()

	_, err = feed.Subscribe(nil)
	assert.ErrorIs(t, err, ErrFeedClosed)
}

func TestLikeFeed_RelaysAcrossInstances(t *testing.T) {
	rdb := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := NewLikeFeed(NewNotifier(rdb))
	receiver := NewLikeFeed(NewNotifier(rdb))
	require.NoError(t, publisher.StartRelay(ctx))
	require.NoError(t, receiver.StartRelay(ctx))

	local, err := publisher.Subscribe(nil)
	require.NoError(t, err)
	defer local.Close()
	remote, err := receiver.Subscribe(nil)
	require.NoError(t, err)
	defer remote.Close()

	publisher.Publish(context.Background(), insertEvent(5, 6, 0))

	select {
	case evt := <-remote.C:
		assert.Equal(t, models.LikeEventInsert, evt.Type)
		assert.Equal(t, uint(6), evt.Row().LikedUserID)
	case <-time.After(time.Second):
		t.Fatal("event was not relayed to the other instance")
	}

	select {
	case <-local.C:
	case <-time.After(time.Second):
		t.Fatal("local subscriber missed the event")
	}
	assert.Never(t, func() bool { return len(local.C) > 0 }, 100*time.Millisecond, testPollInterval,
		"an instance must not receive its own relayed event")
}
