package middleware

import (
	"errors"
	"log"

	"ecoaware/backend/config"
	"ecoaware/backend/models"
	"ecoaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRole     = "role"
	LocalToken    = "token"
)

// authenticate resolves the request token into locals. It returns a
// *fiber.Error describing why the request is not authenticated.
func authenticate(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) error {
	tokenString := utils.ExtractToken(c, cfg)
	if tokenString == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	var revoked models.TokenBlacklist
	err := db.WithContext(c.UserContext()).Where("token = ?", tokenString).First(&revoked).Error
	if err == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Token has been revoked")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("[ERROR] blacklist lookup:", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error")
	}

	claims, err := utils.ParseToken(tokenString, cfg)
	if err != nil {
		return err
	}

	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalUsername, claims.Username)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalToken, tokenString)
	return nil
}

// RequireAuth rejects requests without a valid, non-revoked token.
func RequireAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authenticate(c, db, cfg); err != nil {
			return err
		}
		return c.Next()
	}
}

// OptionalAuth fills the user locals when a usable token is present and lets
// every request through.
func OptionalAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_ = authenticate(c, db, cfg)
		return c.Next()
	}
}

// AdminOnly must run after RequireAuth.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(LocalRole).(string); role != models.RoleAdmin {
			return utils.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id, or 0 for anonymous requests.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}
