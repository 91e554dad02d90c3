package controllers

import (
	"strings"

	"learnhub/backend/config"
	"learnhub/backend/middleware"
	"learnhub/backend/models"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type QAController struct {
	QA          *services.QAService
	Leaderboard *services.LeaderboardService
	Cfg         *config.Config
	Log         *utils.Logger
}

func NewQAController(qa *services.QAService, leaderboard *services.LeaderboardService, cfg *config.Config, log *utils.Logger) *QAController {
	return &QAController{QA: qa, Leaderboard: leaderboard, Cfg: cfg, Log: log}
}

// ListQuestions godoc
// @Summary Questions asked on a lesson
// @Tags qa
// @Produce json
// @Param id path int true "Lesson ID"
// @Param status query string false "OPEN or RESOLVED"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Router /lessons/{id}/questions [get]
func (qc *QAController) ListQuestions(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	status := models.QuestionStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	if status != "" && status != models.QuestionOpen && status != models.QuestionResolved {
		return utils.BadRequest(c, "status must be OPEN or RESOLVED")
	}

	page := utils.ResolvePage(c)
	questions, total, err := qc.QA.ListQuestions(c.UserContext(), lessonID, status, page)
	if err != nil {
		return respondError(c, qc.Log, err)
	}
	return utils.Paginate(c, questions, total, page)
}

// AskQuestion godoc
// @Summary Ask a question on a lesson
// @Tags qa
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param input body services.QuestionInput true "Question"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/questions [post]
func (qc *QAController) AskQuestion(c *fiber.Ctx) error {
	lessonID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var input services.QuestionInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	question, err := qc.QA.AskQuestion(c.UserContext(), middleware.CurrentIdentity(c).UserID, lessonID, input)
	if err != nil {
		return respondError(c, qc.Log, err)
	}
	return utils.Created(c, question)
}

// GetQuestion godoc
// @Summary Question with its answers
// @Tags qa
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /lessons/questions/{id} [get]
func (qc *QAController) GetQuestion(c *fiber.Ctx) error {
	questionID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	thread, err := qc.QA.GetQuestion(c.UserContext(), questionID, middleware.CurrentIdentity(c).UserID)
	if err != nil {
		return respondError(c, qc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, thread)
}

// PostAnswer godoc
// @Summary Answer a question
// @Tags qa
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param input body services.AnswerInput true "Answer"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/questions/{id}/answers [post]
func (qc *QAController) PostAnswer(c *fiber.Ctx) error {
	questionID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var input services.AnswerInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	answer, err := qc.QA.PostAnswer(c.UserContext(), middleware.CurrentIdentity(c).UserID, questionID, input)
	if err != nil {
		return respondError(c, qc.Log, err)
	}
	return utils.Created(c, answer)
}

// LikeQuestion godoc
// @Summary Toggle a like on a question
// @Tags qa
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} services.LikeResult
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/questions/{id}/like [post]
func (qc *QAController) LikeQuestion(c *fiber.Ctx) error {
	return qc.toggleLike(c, services.LikeQuestion)
}

// LikeAnswer godoc
// @Summary Toggle a like on an answer
// @Tags qa
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} services.LikeResult
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/answers/{id}/like [post]
func (qc *QAController) LikeAnswer(c *fiber.Ctx) error {
	return qc.toggleLike(c, services.LikeAnswer)
}

func (qc *QAController) toggleLike(c *fiber.Ctx, kind services.LikeTarget) error {
	targetID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	result, err := qc.QA.ToggleLike(c.UserContext(), middleware.CurrentIdentity(c).UserID, targetID, kind)
	if err != nil {
		return respondError(c, qc.Log, err)
	}
	return c.JSON(result)
}

// AcceptAnswer godoc
// @Summary Accept an answer
// @Description Only the asker may accept. Any previously accepted answer is unaccepted.
// @Tags qa
// @Produce json
// @Param id path int true "Answer ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/answers/{id}/accept [post]
func (qc *QAController) AcceptAnswer(c *fiber.Ctx) error {
	answerID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	answer, err := qc.QA.AcceptAnswer(c.UserContext(), middleware.CurrentIdentity(c).UserID, answerID)
	if err != nil {
		return respondError(c, qc.Log, err)
	}
	return c.JSON(fiber.Map{"success": true, "answer": answer})
}

// MostHelpful godoc
// @Summary Most helpful users
// @Description Users ranked by accepted answers over a trailing window
// @Tags qa
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Param limit query int false "Maximum entries" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /qa/most-helpful [get]
func (qc *QAController) MostHelpful(c *fiber.Ctx) error {
	days := c.QueryInt("days", services.DefaultHelpfulWindowDays)
	limit := c.QueryInt("limit", services.DefaultHelpfulLimit)

	users, err := qc.Leaderboard.MostHelpful(c.UserContext(), days, limit)
	if err != nil {
		return respondError(c, qc.Log, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
