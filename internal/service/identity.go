// Package service contains the business logic behind the HTTP and WebSocket handlers.
package service

import (
	"context"
	"errors"

	"whvmatch/internal/middleware"
	"whvmatch/internal/models"
	"whvmatch/internal/repository"
)

var (
	errNoUserInContext = errors.New("no authenticated user in context")
	errRoleMismatch    = errors.New("token role does not match account role")
)

// IdentityResolver turns the authenticated request context into an explicit Actor.
type IdentityResolver struct {
	users repository.UserRepository
}

// NewIdentityResolver returns an IdentityResolver backed by the user store.
func NewIdentityResolver(users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the actor for ctx. Every failure is a NOT_AUTHENTICATED error
// except a store outage, which is reported as internal.
func (r *IdentityResolver) Resolve(ctx context.Context) (models.Actor, error) {
	userID, ok := ctx.Value(middleware.UserIDKey).(uint)
	if !ok || userID == 0 {
		return models.Actor{}, models.NewNotAuthenticatedError(errNoUserInContext)
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return models.Actor{}, models.NewNotAuthenticatedError(err)
		}
		return models.Actor{}, err
	}

	if claimed, ok := ctx.Value(middleware.RoleKey).(string); ok && claimed != "" && models.Role(claimed) != user.Role {
		return models.Actor{}, models.NewNotAuthenticatedError(errRoleMismatch)
	}
	if !user.Role.Valid() {
		return models.Actor{}, models.NewNotAuthenticatedError(errRoleMismatch)
	}

	return models.Actor{ID: user.ID, Role: user.Role}, nil
}
