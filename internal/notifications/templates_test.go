package notifications

import (
	"testing"

	"whvmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_RenderEveryType(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)

	for _, typ := range []models.NotificationType{
		models.NotificationJobLike,
		models.NotificationMakerLike,
		models.NotificationMutualMatch,
	} {
		title, message, err := tpl.Render(typ, TemplateData{SenderName: "Sunny Farms", JobTitle: "Fruit picker"})
		require.NoError(t, err, typ)
		assert.NotEmpty(t, title)
		assert.Contains(t, message, "Sunny Farms")
		assert.Contains(t, message, "Fruit picker")
	}

	title, message, err := tpl.Render(models.NotificationMutualMatch, TemplateData{SenderName: "Mia"})
	require.NoError(t, err)
	assert.Equal(t, "It's a Match!", title)
	assert.NotContains(t, message, " for ")
}

func TestTemplates_UnknownTypeAndBadYAML(t *testing.T) {
	tpl, err := LoadTemplates()
	require.NoError(t, err)
	_, _, err = tpl.Render("friend_request", TemplateData{})
	assert.Error(t, err)

	_, err = ParseTemplates([]byte("job_like: [unterminated"))
	assert.Error(t, err)

	_, err = ParseTemplates([]byte("job_like:\n  title: \"{{.Nope\"\n"))
	assert.Error(t, err)
}
