package server

import (
	"whvmatch/internal/models"
	"whvmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profiles/me
// @Summary Own profile
// @Description Returns the caller's account, role-specific profile and evaluated feature flags
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{user=models.User,employer=models.EmployerProfile,maker=models.MakerProfile,features=map[string]bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /profiles/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	me, err := s.profileService.GetMe(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":     me.User,
		"employer": me.Employer,
		"maker":    me.Maker,
		"features": s.featureFlags.Snapshot(actor.ID),
	})
}

// UpdateMyProfile handles PUT /api/profiles/me. The body shape follows the caller's role.
// @Summary Update own profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateEmployerInput true "Employer fields, or service.UpdateMakerInput for makers"
// @Success 200 {object} object{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /profiles/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	ctx := c.UserContext()

	switch actor.Role {
	case models.RoleEmployer:
		var req service.UpdateEmployerInput
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		profile, err := s.profileService.UpdateEmployer(ctx, actor, req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profile)
	default:
		var req service.UpdateMakerInput
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		profile, err := s.profileService.UpdateMaker(ctx, actor, req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profile)
	}
}

// GetPublicProfile handles GET /api/profiles/:id
// @Summary Public profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{id} [get]
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetPublic(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
