package server

import (
	"whvmatch/internal/featureflags"
	"whvmatch/internal/models"
	"whvmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LikeResponse is returned by the like and unlike endpoints.
type LikeResponse struct {
	Created bool             `json:"created"`
	State   models.LikeState `json:"state"`
	Mutual  bool             `json:"mutual"`
	View    service.LikeView `json:"view"`
}

// LikeStatusResponse is returned by GET /api/likes/status.
type LikeStatusResponse struct {
	Liked bool             `json:"liked"`
	State models.LikeState `json:"state"`
	View  service.LikeView `json:"view"`
}

// parseLikeTarget reads {target_id, job_post_id} from the JSON body, falling back
// to the query string when the body is empty.
func parseLikeTarget(c *fiber.Ctx) (service.LikeTarget, error) {
	var target service.LikeTarget
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&target); err != nil {
			return target, models.NewValidationError("Invalid request body")
		}
		return target, nil
	}

	var err error
	if target.TargetID, err = queryID(c, "target_id"); err != nil {
		return target, err
	}
	if target.JobPostID, err = queryID(c, "job_post_id"); err != nil {
		return target, err
	}
	return target, nil
}

// present builds the view for a transition, dropping the match banner when the
// flag is off for the caller.
func (s *Server) present(c *fiber.Ctx, actor models.Actor, targetID uint, prev, next models.LikeState) service.LikeView {
	view := service.Present(prev, next, s.likeService.CounterpartName(c.UserContext(), targetID))
	if !s.featureFlags.Enabled(featureflags.MatchBanner, actor.ID) {
		view.Match = nil
	}
	return view
}

// Like handles POST /api/likes
// @Summary Like a maker or employer
// @Description Idempotent. created is false when the like already existed. Notifications are sent in the background.
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.LikeTarget true "Like target"
// @Success 200 {object} LikeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /likes [post]
func (s *Server) Like(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	target, err := parseLikeTarget(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.likeService.Like(c.UserContext(), actor, target)
	if err != nil {
		return respondError(c, err)
	}

	prev := res.State
	if res.Changed {
		prev = models.LikeStateUnliked
	}
	return c.JSON(LikeResponse{
		Created: res.Changed,
		State:   res.State,
		Mutual:  res.Mutual,
		View:    s.present(c, actor, res.Key.LikedUserID, prev, res.State),
	})
}

// Unlike handles DELETE /api/likes
// @Summary Remove a like
// @Description Removing a like that does not exist succeeds with created=false.
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.LikeTarget true "Like target"
// @Success 200 {object} LikeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /likes [delete]
func (s *Server) Unlike(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	target, err := parseLikeTarget(c)
	if err != nil {
		return respondError(c, err)
	}

	res, err := s.likeService.Unlike(c.UserContext(), actor, target)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(LikeResponse{
		Created: res.Changed,
		State:   res.State,
		Mutual:  false,
		View:    service.Present(res.State, res.State, ""),
	})
}

// GetLikeStatus handles GET /api/likes/status
// @Summary Like state with a counterpart
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param target_id query int false "Counterpart user ID (optional for makers when job_post_id is set)"
// @Param job_post_id query int false "Job context"
// @Success 200 {object} LikeStatusResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /likes/status [get]
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	target, err := parseLikeTarget(c)
	if err != nil {
		return respondError(c, err)
	}

	key, err := s.likeService.ResolveKey(c.UserContext(), actor, target)
	if err != nil {
		return respondError(c, err)
	}
	state, err := s.likeService.State(c.UserContext(), actor, target)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(LikeStatusResponse{
		Liked: state != models.LikeStateUnliked,
		State: state,
		View:  s.present(c, actor, key.LikedUserID, state, state),
	})
}

// GetMatches handles GET /api/matches
// @Summary Mutual matches
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Match
// @Router /matches [get]
func (s *Server) GetMatches(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	matches, err := s.likeService.ListMatches(c.UserContext(), actor, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(matches)
}
