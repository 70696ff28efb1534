package server

import (
	"strings"

	"whvmatch/internal/models"
	"whvmatch/internal/repository"
	"whvmatch/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateJob handles POST /api/jobs
// @Summary Post a job
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.JobInput true "Job post"
// @Success 201 {object} models.JobPost
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /jobs [post]
func (s *Server) CreateJob(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req service.JobInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	job, err := s.jobService.Create(c.UserContext(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

// UpdateJob handles PUT /api/jobs/:id
// @Summary Update a job post
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job post ID"
// @Param request body service.JobInput true "Job post"
// @Success 200 {object} models.JobPost
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [put]
func (s *Server) UpdateJob(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.JobInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	job, err := s.jobService.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(job)
}

// CloseJob handles POST /api/jobs/:id/close
// @Summary Close a job post
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job post ID"
// @Success 200 {object} models.JobPost
// @Failure 403 {object} models.ErrorResponse
// @Router /jobs/{id}/close [post]
func (s *Server) CloseJob(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	job, err := s.jobService.Close(c.UserContext(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(job)
}

// GetJob handles GET /api/jobs/:id
// @Summary Get a job post
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job post ID"
// @Success 200 {object} models.JobPost
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{id} [get]
func (s *Server) GetJob(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	job, err := s.jobService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(job)
}

// GetMyJobs handles GET /api/jobs/mine
// @Summary List own job posts
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.JobPost
// @Router /jobs/mine [get]
func (s *Server) GetMyJobs(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	jobs, err := s.jobService.ListMine(c.UserContext(), actor, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(jobs)
}

// BrowseMakers handles GET /api/browse/makers
// @Summary Browse makers
// @Description Attribute filters only. Each card carries the caller's liked flag for job_post_id.
// @Tags browse
// @Produce json
// @Security BearerAuth
// @Param industry query string false "Preferred industry"
// @Param state query string false "Preferred state"
// @Param visa_type query string false "417 or 462"
// @Param visa_stage query string false "first, second or third"
// @Param job_post_id query int false "Job context of the liked flag"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} service.MakerCard
// @Router /browse/makers [get]
func (s *Server) BrowseMakers(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	jobPostID, err := queryID(c, "job_post_id")
	if err != nil {
		return respondError(c, err)
	}
	page := parsePagination(c, 20)

	cards, err := s.browseService.Makers(c.UserContext(), actor, service.MakerBrowse{
		MakerFilter: repository.MakerFilter{
			Industry:  c.Query("industry"),
			State:     strings.ToUpper(c.Query("state")),
			VisaType:  models.VisaType(c.Query("visa_type")),
			VisaStage: models.VisaStage(c.Query("visa_stage")),
		},
		JobPostID: jobPostID,
	}, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cards)
}

// BrowseJobs handles GET /api/browse/jobs
// @Summary Browse open jobs
// @Tags browse
// @Produce json
// @Security BearerAuth
// @Param industry query string false "Industry"
// @Param state query string false "State"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.JobPost
// @Router /browse/jobs [get]
func (s *Server) BrowseJobs(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	jobs, err := s.browseService.Jobs(c.UserContext(), actor, repository.JobFilter{
		Industry: c.Query("industry"),
		State:    strings.ToUpper(c.Query("state")),
	}, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(jobs)
}
