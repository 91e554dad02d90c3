package controllers

import (
	"learnhub/backend/config"
	"learnhub/backend/middleware"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Courses *services.CourseService
	Cfg     *config.Config
	Log     *utils.Logger
}

func NewCoursesController(courses *services.CourseService, cfg *config.Config, log *utils.Logger) *CoursesController {
	return &CoursesController{Courses: courses, Cfg: cfg, Log: log}
}

// ListCourses godoc
// @Summary Published courses
// @Tags courses
// @Produce json
// @Param search query string false "Search term"
// @Param level query string false "beginner, intermediate or advanced"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Router /courses [get]
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	page := utils.ResolvePage(c)
	courses, total, err := cc.Courses.ListCourses(c.UserContext(), services.CourseFilter{
		Search: c.Query("search"),
		Level:  c.Query("level"),
		Page:   page,
	})
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Paginate(c, courses, total, page)
}

// GetCourse godoc
// @Summary Course details with chapters and lessons
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{slug} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	detail, err := cc.Courses.GetCourse(c.UserContext(), c.Params("slug"), middleware.CurrentIdentity(c))
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, detail)
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Idempotent. Pro courses need a PRO membership.
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} utils.SuccessResponse
// @Success 201 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{slug}/enroll [post]
func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	created, err := cc.Courses.Enroll(c.UserContext(), middleware.CurrentIdentity(c).UserID, c.Params("slug"))
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return utils.Success(c, status, fiber.Map{"enrolled": true})
}

// MyCourses godoc
// @Summary Courses the caller is enrolled in
// @Tags courses
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /me/courses [get]
func (cc *CoursesController) MyCourses(c *fiber.Ctx) error {
	courses, err := cc.Courses.EnrolledCourses(c.UserContext(), middleware.CurrentIdentity(c).UserID)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, courses)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags teach
// @Accept json
// @Produce json
// @Param input body services.CourseInput true "Course"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teach/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input services.CourseInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	course, err := cc.Courses.CreateCourse(c.UserContext(), middleware.CurrentIdentity(c), input)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Created(c, course)
}

// AddChapter godoc
// @Summary Add a chapter to a course
// @Tags teach
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param input body services.ChapterInput true "Chapter"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /teach/courses/{slug}/chapters [post]
func (cc *CoursesController) AddChapter(c *fiber.Ctx) error {
	var input services.ChapterInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	chapter, err := cc.Courses.AddChapter(c.UserContext(), middleware.CurrentIdentity(c), c.Params("slug"), input)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Created(c, chapter)
}

// AddLesson godoc
// @Summary Add a lesson to a chapter
// @Tags teach
// @Accept json
// @Produce json
// @Param id path int true "Chapter ID"
// @Param input body services.LessonInput true "Lesson"
// @Success 201 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /teach/chapters/{id}/lessons [post]
func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	chapterID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var input services.LessonInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	lesson, err := cc.Courses.AddLesson(c.UserContext(), middleware.CurrentIdentity(c), chapterID, input)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Created(c, lesson)
}

type publishRequest struct {
	Published *bool `json:"published" validate:"required"`
}

// SetPublished godoc
// @Summary Publish or unpublish a course
// @Tags teach
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param input body publishRequest true "Publish flag"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /teach/courses/{slug}/publish [patch]
func (cc *CoursesController) SetPublished(c *fiber.Ctx) error {
	var input publishRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	course, err := cc.Courses.SetPublished(c.UserContext(), middleware.CurrentIdentity(c), c.Params("slug"), *input.Published)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, course)
}
