package database

import (
	"testing"

	modelspkg "whvmatch/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPersistentModels_IncludesLikeAndNotificationTables(t *testing.T) {
	var like, notification, setting bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *modelspkg.Like:
			like = true
		case *modelspkg.Notification:
			notification = true
		case *modelspkg.NotificationSetting:
			setting = true
		}
	}
	require.True(t, like, "PersistentModels should include Like")
	require.True(t, notification, "PersistentModels should include Notification")
	require.True(t, setting, "PersistentModels should include NotificationSetting")
}
