package service

import (
	"context"
	"testing"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/repository"
	"whvmatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	db := testutil.NewTestDB(t)
	maker := testutil.CreateUser(t, db, models.RoleWHV, "Mia")
	r := NewIdentityResolver(repository.NewUserRepository(db))

	withUser := func(id uint, role string) context.Context {
		ctx := context.WithValue(context.Background(), middleware.UserIDKey, id)
		if role != "" {
			ctx = context.WithValue(ctx, middleware.RoleKey, role)
		}
		return ctx
	}

	actor, err := r.Resolve(withUser(maker.ID, "whv"))
	require.NoError(t, err)
	assert.Equal(t, models.Actor{ID: maker.ID, Role: models.RoleWHV}, actor)

	actor, err = r.Resolve(withUser(maker.ID, ""))
	require.NoError(t, err)
	assert.Equal(t, models.RoleWHV, actor.Role)

	for name, ctx := range map[string]context.Context{
		"no user":       context.Background(),
		"unknown user":  withUser(4242, "whv"),
		"role mismatch": withUser(maker.ID, "employer"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(ctx)
			assert.Equal(t, models.CodeNotAuthenticated, models.ErrorCode(err))
		})
	}
}
