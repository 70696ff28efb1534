package repository

import (
	"context"
	"testing"

	"whvmatch/internal/models"
	"whvmatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_SaveMakerUpserts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	maker := testutil.CreateUser(t, db, models.RoleWHV, "Mia")

	missing, err := repo.GetMaker(ctx, maker.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.SaveMaker(ctx, &models.MakerProfile{
		UserID:    maker.ID,
		GivenName: "Mia",
		VisaType:  models.VisaType417,
		VisaStage: models.VisaStageFirst,
	}))
	require.NoError(t, repo.SaveMaker(ctx, &models.MakerProfile{
		UserID:     maker.ID,
		GivenName:  "Mia",
		FamilyName: "Rossi",
		VisaType:   models.VisaType417,
		VisaStage:  models.VisaStageSecond,
	}))

	got, err := repo.GetMaker(ctx, maker.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mia Rossi", got.FullName())
	assert.Equal(t, models.VisaStageSecond, got.VisaStage)

	var rows int64
	require.NoError(t, db.Model(&models.MakerProfile{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestProfileRepository_ListMakersFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	for _, p := range []struct {
		name     string
		industry string
		state    string
		visa     models.VisaType
	}{
		{"Mia", "agriculture", "QLD", models.VisaType417},
		{"Leo", "hospitality", "NSW", models.VisaType462},
		{"Ana", "agriculture", "NSW", models.VisaType462},
	} {
		u := testutil.CreateUser(t, db, models.RoleWHV, p.name)
		require.NoError(t, repo.SaveMaker(ctx, &models.MakerProfile{
			UserID:            u.ID,
			GivenName:         p.name,
			PreferredIndustry: p.industry,
			PreferredState:    p.state,
			VisaType:          p.visa,
		}))
	}

	all, err := repo.ListMakers(ctx, MakerFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	agri, err := repo.ListMakers(ctx, MakerFilter{Industry: "agriculture"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, agri, 2)

	narrowed, err := repo.ListMakers(ctx, MakerFilter{Industry: "agriculture", VisaType: models.VisaType462}, 10, 0)
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, "Ana", narrowed[0].GivenName)

	paged, err := repo.ListMakers(ctx, MakerFilter{}, 2, 2)
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestJobRepository_ListOpenSkipsClosed(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewJobRepository(db)
	ctx := context.Background()

	employer := testutil.CreateUser(t, db, models.RoleEmployer, "Sunny Farms")
	open := testutil.CreateJob(t, db, employer.ID, "Fruit picker")
	closed := testutil.CreateJob(t, db, employer.ID, "Packer")
	closed.Status = models.JobStatusClosed
	require.NoError(t, repo.Update(ctx, closed))

	jobs, err := repo.ListOpen(ctx, JobFilter{State: "QLD"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, open.ID, jobs[0].ID)

	mine, err := repo.ListByEmployer(ctx, employer.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	byID, err := repo.GetByIDs(ctx, []uint{open.ID, closed.ID})
	require.NoError(t, err)
	assert.Equal(t, "Packer", byID[closed.ID].Title)

	_, err = repo.GetByID(ctx, 12345)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
