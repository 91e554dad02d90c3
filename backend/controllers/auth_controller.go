package controllers

import (
	"strings"
	"time"

	"learnhub/backend/config"
	"learnhub/backend/middleware"
	"learnhub/backend/models"
	"learnhub/backend/services"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Users *services.UserService
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAuthController(users *services.UserService, cfg *config.Config, log *utils.Logger) *AuthController {
	return &AuthController{Users: users, Cfg: cfg, Log: log}
}

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// [+] Register godoc
// @Summary Register a new user
// @Description Creates a USER account and starts a session
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "User registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	user, err := ac.Users.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, ac.Log, err)
	}

	token, err := ac.startSession(c, user)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.Created(c, fiber.Map{"token": token, "user": user})
}

// [+] Login godoc
// @Summary User login
// @Description Authenticate by username or email and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input loginRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	login := firstNonEmpty(input.Login, input.Username, input.Email)
	user, err := ac.Users.Login(c.UserContext(), services.LoginInput{Login: login, Password: input.Password}, c.IP())
	if err != nil {
		return respondError(c, ac.Log, err)
	}

	token, err := ac.startSession(c, user)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     ac.Cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   ac.Cfg.CookieHTTPS,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Logged out"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (ac *AuthController) Me(c *fiber.Ctx) error {
	user, err := ac.Users.GetUser(c.UserContext(), middleware.CurrentIdentity(c).UserID)
	if err != nil {
		return respondError(c, ac.Log, err)
	}
	return utils.Success(c, fiber.StatusOK, user)
}

func (ac *AuthController) startSession(c *fiber.Ctx, user models.User) (string, error) {
	token, err := utils.GenerateJWTToken(user.ID, string(user.Role), ac.Cfg)
	if err != nil {
		return "", err
	}
	ttl := ac.Cfg.JWTTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	c.Cookie(&fiber.Cookie{
		Name:     ac.Cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   ac.Cfg.CookieHTTPS,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
