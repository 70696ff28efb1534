package service

import (
	"testing"

	"whvmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresent(t *testing.T) {
	t.Parallel()

	t.Run("unliked", func(t *testing.T) {
		v := Present(models.LikeStateLiked, models.LikeStateUnliked, "Mia")
		assert.Equal(t, LabelLike, v.Label)
		assert.Equal(t, HeartOutline, v.Heart)
		assert.Nil(t, v.Confirmation)
		assert.Nil(t, v.Match)
	})

	t.Run("first like shows confirmation", func(t *testing.T) {
		v := Present(models.LikeStateUnliked, models.LikeStateLiked, "Mia")
		assert.Equal(t, LabelUnlike, v.Label)
		assert.Equal(t, HeartFilled, v.Heart)
		require.NotNil(t, v.Confirmation)
		assert.Contains(t, v.Confirmation.Message, "Mia")
		assert.Nil(t, v.Match)
	})

	t.Run("counterpart unlikes after match", func(t *testing.T) {
		v := Present(models.LikeStateMutual, models.LikeStateLiked, "Mia")
		assert.Equal(t, LabelUnlike, v.Label)
		assert.Nil(t, v.Confirmation)
		assert.Nil(t, v.Match)
	})

	t.Run("mutual", func(t *testing.T) {
		v := Present(models.LikeStateLiked, models.LikeStateMutual, "")
		assert.Equal(t, LabelUnlike, v.Label)
		require.NotNil(t, v.Match)
		assert.Equal(t, "It's a Match", v.Match.Title)
		assert.Contains(t, v.Match.Message, "them")
	})
}
