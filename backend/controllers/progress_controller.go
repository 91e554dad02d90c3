package controllers

import (
	"learnhub/backend/config"
	"learnhub/backend/middleware"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Progress *services.ProgressService
	Cfg      *config.Config
	Log      *utils.Logger
}

func NewProgressController(progress *services.ProgressService, cfg *config.Config, log *utils.Logger) *ProgressController {
	return &ProgressController{Progress: progress, Cfg: cfg, Log: log}
}

type videoProgressRequest struct {
	Timestamp *float64 `json:"timestamp" validate:"required"`
	Duration  *float64 `json:"duration" validate:"required"`
}

// RecordVideoProgress godoc
// @Summary Report playback position
// @Description Stores the last position of a lesson video. Anonymous reports are accepted and not stored.
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body videoProgressRequest true "Playback position in seconds"
// @Success 200 {object} services.RecordResult
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /lessons/{id}/video/progress [post]
func (pc *ProgressController) RecordVideoProgress(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	var input videoProgressRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	report := services.ProgressReport{Timestamp: *input.Timestamp, Duration: *input.Duration}
	result, err := pc.Progress.RecordProgress(c.UserContext(), middleware.CurrentIdentity(c), lessonID, report)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(result)
}

// GetLessonProgress godoc
// @Summary Resume position of a lesson
// @Tags progress
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/progress [get]
func (pc *ProgressController) GetLessonProgress(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	row, err := pc.Progress.LessonProgress(c.UserContext(), middleware.CurrentIdentity(c).UserID, lessonID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, row)
}

// CompleteLesson godoc
// @Summary Mark a lesson as completed
// @Tags progress
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/complete [post]
func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	row, err := pc.Progress.MarkLessonComplete(c.UserContext(), middleware.CurrentIdentity(c).UserID, lessonID)
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, row)
}

// GetCourseProgress godoc
// @Summary Completion of an enrolled course
// @Description Percentage of published lessons the caller has completed
// @Tags progress
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} models.CourseProgress
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{slug}/progress [get]
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	progress, err := pc.Progress.CourseProgress(c.UserContext(), middleware.CurrentIdentity(c).UserID, c.Params("slug"))
	if err != nil {
		return respondError(c, pc.Log, err)
	}
	return c.JSON(progress)
}
