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

type AdminController struct {
	Users     *services.UserService
	Dashboard *services.DashboardService
	Cfg       *config.Config
	Log       *utils.Logger
}

func NewAdminController(users *services.UserService, dashboard *services.DashboardService, cfg *config.Config, log *utils.Logger) *AdminController {
	return &AdminController{Users: users, Dashboard: dashboard, Cfg: cfg, Log: log}
}

// Stats godoc
// @Summary Platform counters
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/stats [get]
func (ac *AdminController) Stats(c *fiber.Ctx) error {
	stats, err := ac.Dashboard.Stats(c.UserContext())
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param search query string false "Username, email or name"
// @Param role query string false "USER, TEACHER or ADMIN"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(10)
// @Success 200 {object} utils.PaginatedResponse
// @Security ApiKeyAuth
// @Router /admin/users [get]
func (ac *AdminController) ListUsers(c *fiber.Ctx) error {
	role := models.Role(strings.ToUpper(c.Query("role")))
	if role != "" && !role.Valid() {
		return utils.BadRequest(c, "unknown role")
	}
	page := utils.ResolvePage(c)
	users, total, err := ac.Users.ListUsers(c.UserContext(), services.UserFilter{
		Search: c.Query("search"),
		Role:   role,
		Page:   page,
	})
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.Paginate(c, users, total, page)
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER TEACHER ADMIN"`
}

// SetRole godoc
// @Summary Grant a role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body roleRequest true "Role"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/role [patch]
func (ac *AdminController) SetRole(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var input roleRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	user, err := ac.Users.SetRole(c.UserContext(), middleware.CurrentIdentity(c), userID, models.Role(input.Role))
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetActive godoc
// @Summary Activate or deactivate a user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body activeRequest true "Active flag"
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /admin/users/{id}/active [patch]
func (ac *AdminController) SetActive(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	var input activeRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	user, err := ac.Users.SetActive(c.UserContext(), middleware.CurrentIdentity(c), userID, *input.Active)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}
