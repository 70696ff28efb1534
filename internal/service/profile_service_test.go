package service

import (
	"context"
	"strings"
	"testing"

	"whvmatch/internal/models"
	"whvmatch/internal/repository"
	"whvmatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func newProfileService(t *testing.T) (*ProfileService, *likeFixture) {
	t.Helper()
	f := newLikeFixture(t)
	return NewProfileService(repository.NewUserRepository(f.db), repository.NewProfileRepository(f.db)), f
}

func TestProfileService_UpdateMaker(t *testing.T) {
	svc, f := newProfileService(t)
	ctx := context.Background()

	p, err := svc.UpdateMaker(ctx, f.makerActor(), UpdateMakerInput{
		GivenName:      " Mia ",
		FamilyName:     "Rossi",
		VisaType:       models.VisaType417,
		VisaStage:      models.VisaStageSecond,
		PreferredState: "qld",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mia", p.GivenName)
	assert.Equal(t, "QLD", p.PreferredState)

	me, err := svc.GetMe(ctx, f.makerActor())
	require.NoError(t, err)
	require.NotNil(t, me.Maker)
	assert.Nil(t, me.Employer)
	assert.Equal(t, "Mia Rossi", me.User.DisplayName)

	_, err = svc.UpdateMaker(ctx, f.makerActor(), UpdateMakerInput{GivenName: "Mia", Bio: "updated"})
	require.NoError(t, err)
	var rows int64
	require.NoError(t, f.db.Model(&models.MakerProfile{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestProfileService_Validation(t *testing.T) {
	svc, f := newProfileService(t)
	ctx := context.Background()

	_, err := svc.UpdateMaker(ctx, f.makerActor(), UpdateMakerInput{})
	assertValidationError(t, err)

	_, err = svc.UpdateMaker(ctx, f.makerActor(), UpdateMakerInput{GivenName: "Mia", VisaType: "500"})
	assertValidationError(t, err)

	_, err = svc.UpdateMaker(ctx, f.makerActor(), UpdateMakerInput{GivenName: "Mia", Bio: strings.Repeat("x", maxBioLen+1)})
	assertValidationError(t, err)

	_, err = svc.UpdateEmployer(ctx, f.employerActor(), UpdateEmployerInput{BusinessName: "Farm", State: "XX"})
	assertValidationError(t, err)

	_, err = svc.UpdateEmployer(ctx, f.makerActor(), UpdateEmployerInput{BusinessName: "Farm"})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
}

func TestProfileService_GetPublic(t *testing.T) {
	svc, f := newProfileService(t)
	ctx := context.Background()

	_, err := svc.UpdateEmployer(ctx, f.employerActor(), UpdateEmployerInput{BusinessName: "Sunny Farms Pty", State: "QLD"})
	require.NoError(t, err)

	p, err := svc.GetPublic(ctx, f.employer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployer, p.Role)
	assert.Equal(t, "Sunny Farms Pty", p.Name)
	require.NotNil(t, p.Employer)
	assert.Nil(t, p.Maker)

	_, err = svc.GetPublic(ctx, 9999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestJobService(t *testing.T) {
	f := newLikeFixture(t)
	svc := NewJobService(repository.NewJobRepository(f.db))
	ctx := context.Background()

	_, err := svc.Create(ctx, f.makerActor(), JobInput{Title: "Picker"})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	_, err = svc.Create(ctx, f.employerActor(), JobInput{Title: "Picker", PayMin: 30, PayMax: 20})
	assertValidationError(t, err)

	job, err := svc.Create(ctx, f.employerActor(), JobInput{Title: "Picker", State: "nsw", PayMin: 28, PayMax: 32})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Equal(t, "NSW", job.State)

	other := testutil.CreateUser(t, f.db, models.RoleEmployer, "Other")
	_, err = svc.Update(ctx, models.Actor{ID: other.ID, Role: models.RoleEmployer}, job.ID, JobInput{Title: "Stolen"})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	updated, err := svc.Update(ctx, f.employerActor(), job.ID, JobInput{Title: "Senior Picker"})
	require.NoError(t, err)
	assert.Equal(t, "Senior Picker", updated.Title)

	closed, err := svc.Close(ctx, f.employerActor(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusClosed, closed.Status)

	mine, err := svc.ListMine(ctx, f.employerActor(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestBrowseService_LikedFlags(t *testing.T) {
	f := newLikeFixture(t)
	ctx := context.Background()
	profiles := repository.NewProfileRepository(f.db)
	svc := NewBrowseService(profiles, repository.NewJobRepository(f.db), f.likes)

	require.NoError(t, profiles.SaveMaker(ctx, &models.MakerProfile{UserID: f.maker.ID, GivenName: "Mia", PreferredState: "QLD"}))
	other := testutil.CreateUser(t, f.db, models.RoleWHV, "Noah")
	require.NoError(t, profiles.SaveMaker(ctx, &models.MakerProfile{UserID: other.ID, GivenName: "Noah", PreferredState: "VIC"}))

	_, err := f.svc.Like(ctx, f.employerActor(), LikeTarget{TargetID: f.maker.ID, JobPostID: f.job.ID})
	require.NoError(t, err)

	cards, err := svc.Makers(ctx, f.employerActor(), MakerBrowse{JobPostID: f.job.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	liked := map[uint]bool{}
	for _, c := range cards {
		liked[c.Profile.UserID] = c.Liked
	}
	assert.True(t, liked[f.maker.ID])
	assert.False(t, liked[other.ID])

	cards, err = svc.Makers(ctx, f.employerActor(), MakerBrowse{MakerFilter: repository.MakerFilter{State: "VIC"}}, 10, 0)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, other.ID, cards[0].Profile.UserID)

	_, err = svc.Makers(ctx, f.makerActor(), MakerBrowse{}, 10, 0)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	_, err = f.svc.Like(ctx, f.makerActor(), LikeTarget{JobPostID: f.job.ID})
	require.NoError(t, err)
	jobs, err := svc.Jobs(ctx, f.makerActor(), repository.JobFilter{Industry: "agriculture"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].Liked)
}
