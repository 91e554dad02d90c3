package middleware

import (
	"errors"

	"learnhub/backend/config"
	"learnhub/backend/models"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const identityKey = "identity"

// Authenticate resolves the caller from the access token and stores the
// identity in the request locals. Role and active flag are read from the
// users table on every request, so deactivation and role changes apply to
// tokens already issued. Missing or invalid tokens, and tokens of unknown or
// inactive users, leave the caller anonymous; RequireAuth and RequireRole
// decide whether that is acceptable.
func Authenticate(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := models.Identity{}
		if claims, err := utils.ExtractClaimsFromRequest(c, cfg); err == nil {
			var user models.User
			err := db.WithContext(c.UserContext()).
				Select("id", "role", "is_active").
				Where("id = ?", claims.UserID).
				First(&user).Error
			switch {
			case err == nil && user.IsActive:
				who = models.Identity{UserID: user.ID, Role: user.Role}
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		c.Locals(identityKey, who)
		return c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentIdentity(c).Anonymous() {
			return utils.Unauthorized(c, "Authentication required")
		}
		return c.Next()
	}
}

// OptionalAuth lets anonymous callers through. It only documents intent on
// routes where the identity is used when present.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}

// RequireRole rejects anonymous callers with 401 and callers without one of
// the roles with 403.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := CurrentIdentity(c)
		if who.Anonymous() {
			return utils.Unauthorized(c, "Authentication required")
		}
		for _, r := range roles {
			if who.Role == r {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Insufficient role")
	}
}

// CurrentIdentity returns the identity stored by Authenticate, or the
// anonymous identity.
func CurrentIdentity(c *fiber.Ctx) models.Identity {
	if who, ok := c.Locals(identityKey).(models.Identity); ok {
		return who
	}
	return models.Identity{}
}
