package controllers

import (
	"strings"

	"learnhub/backend/config"
	"learnhub/backend/middleware"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const maxAvatarBytes = 5 << 20

type UserController struct {
	Users *services.UserService
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewUserController(users *services.UserService, cfg *config.Config, log *utils.Logger) *UserController {
	return &UserController{Users: users, Cfg: cfg, Log: log}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user, err := uc.Users.GetUser(c.UserContext(), middleware.CurrentIdentity(c).UserID)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates name, bio, email or password. A new password needs the old one.
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.ProfileInput true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input services.ProfileInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	user, err := uc.Users.UpdateProfile(c.UserContext(), middleware.CurrentIdentity(c).UserID, input)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// UploadAvatar godoc
// @Summary Upload an avatar
// @Description Multipart field "avatar"; the image is cropped to 256x256
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Image"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile/avatar [post]
func (uc *UserController) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return utils.BadRequest(c, "avatar file is required")
	}
	if fh.Size > maxAvatarBytes {
		return utils.BadRequest(c, "avatar must be at most 5 MB")
	}
	if ct := fh.Header.Get(fiber.HeaderContentType); ct != "" && !strings.HasPrefix(ct, "image/") {
		return utils.BadRequest(c, "avatar must be an image")
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	defer f.Close()

	user, err := uc.Users.SetAvatar(c.UserContext(), middleware.CurrentIdentity(c).UserID, f)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// GetActivity godoc
// @Summary Logins per day
// @Tags users
// @Produce json
// @Param days query int false "Trailing days" default(30)
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /users/profile/activity [get]
func (uc *UserController) GetActivity(c *fiber.Ctx) error {
	activity, err := uc.Users.LoginActivity(c.UserContext(), middleware.CurrentIdentity(c).UserID, c.QueryInt("days", 30))
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, activity)
}

// GetPublicProfile godoc
// @Summary Public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{username} [get]
func (uc *UserController) GetPublicProfile(c *fiber.Ctx) error {
	profile, err := uc.Users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, profile)
}
