package repository

import (
	"context"
	"testing"
	"time"

	"whvmatch/internal/models"
	"whvmatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, repo NotificationRepository, recipient, sender *models.User, typ models.NotificationType) *models.Notification {
	t.Helper()
	n := &models.Notification{
		RecipientID:   recipient.ID,
		RecipientRole: recipient.Role,
		SenderID:      sender.ID,
		SenderRole:    sender.Role,
		Type:          typ,
		Title:         string(typ),
	}
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestNotificationRepository_ReadAtOnlyMovesForward(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	employer := testutil.CreateUser(t, db, models.RoleEmployer, "Sunny Farms")
	maker := testutil.CreateUser(t, db, models.RoleWHV, "Mia")
	n := seedNotification(t, repo, maker, employer, models.NotificationJobLike)

	count, err := repo.UnreadCount(ctx, maker.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	first := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	changed, err := repo.MarkRead(ctx, n.ID, maker.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkRead(ctx, n.ID, maker.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, changed, "read_at must not be overwritten")

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
	assert.True(t, got.ReadAt.Equal(first))

	count, err = repo.UnreadCount(ctx, maker.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationRepository_MarkReadRequiresOwnership(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	employer := testutil.CreateUser(t, db, models.RoleEmployer, "Sunny Farms")
	maker := testutil.CreateUser(t, db, models.RoleWHV, "Mia")
	n := seedNotification(t, repo, maker, employer, models.NotificationJobLike)

	changed, err := repo.MarkRead(ctx, n.ID, employer.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestNotificationRepository_ListAndMarkAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	employer := testutil.CreateUser(t, db, models.RoleEmployer, "Sunny Farms")
	maker := testutil.CreateUser(t, db, models.RoleWHV, "Mia")
	older := seedNotification(t, repo, maker, employer, models.NotificationJobLike)
	newer := seedNotification(t, repo, maker, employer, models.NotificationMutualMatch)
	seedNotification(t, repo, employer, maker, models.NotificationMutualMatch)

	list, err := repo.ListForRecipient(ctx, maker.ID, false, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	updated, err := repo.MarkAllRead(ctx, maker.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err := repo.ListForRecipient(ctx, maker.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)

	employerUnread, err := repo.UnreadCount(ctx, employer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), employerUnread)
}

func TestNotificationSettingRepository_Upsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewNotificationSettingRepository(db)
	ctx := context.Background()

	maker := testutil.CreateUser(t, db, models.RoleWHV, "Mia")

	got, err := repo.Get(ctx, maker.ID, models.RoleWHV)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Upsert(ctx, &models.NotificationSetting{UserID: maker.ID, Role: models.RoleWHV, NotificationsEnabled: false}))
	got, err = repo.Get(ctx, maker.ID, models.RoleWHV)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.NotificationsEnabled)

	require.NoError(t, repo.Upsert(ctx, &models.NotificationSetting{UserID: maker.ID, Role: models.RoleWHV, NotificationsEnabled: true}))
	got, err = repo.Get(ctx, maker.ID, models.RoleWHV)
	require.NoError(t, err)
	assert.True(t, got.NotificationsEnabled)

	var rows int64
	require.NoError(t, db.Model(&models.NotificationSetting{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
