package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"ecoaware/backend/config"
	"ecoaware/backend/middleware"
	"ecoaware/backend/models"
	"ecoaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	// Username accepts either the username or the email address.
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateMeInput struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Avatar    *string `json:"avatar" validate:"omitempty,max=512"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func userJSON(u models.User) fiber.Map {
	return fiber.Map{
		"id":               u.ID,
		"username":         u.Username,
		"email":            u.Email,
		"firstName":        u.FirstName,
		"lastName":         u.LastName,
		"fullName":         u.FullName(),
		"avatar":           u.Avatar,
		"role":             u.Role,
		"registrationDate": u.CreatedAt,
		"lastLogin":        u.LastLogin,
	}
}

func (ac *AuthController) issueSession(c *fiber.Ctx, user models.User) error {
	token, expiresAt, err := utils.GenerateJWTToken(user, ac.Cfg)
	if err != nil {
		log.Println("[ERROR] sign token:", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Could not generate token")
	}
	utils.SetAuthCookie(c, ac.Cfg, token, expiresAt)
	return nil
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and starts a cookie session
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterInput true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var count int64
	ac.DB.Model(&models.User{}).Where("username = ?", input.Username).Count(&count)
	if count > 0 {
		return utils.Conflict(c, "Username is already taken")
	}
	ac.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&count)
	if count > 0 {
		return utils.Conflict(c, "Email is already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "User already exists")
		}
		log.Println("[ERROR] create user:", err)
		return utils.InternalServerError(c, "Could not create user")
	}

	if err := ac.issueSession(c, user); err != nil {
		return err
	}
	return utils.Created(c, fiber.Map{
		"message": "Registration successful",
		"user":    userJSON(user),
	})
}

// Login godoc
// @Summary User login
// @Description Authenticates by username or email and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.Username = strings.TrimSpace(input.Username)
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var user models.User
	err := ac.DB.Where("username = ? OR email = ?", input.Username, strings.ToLower(input.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	ac.DB.Model(&user).Update("last_login", now)

	if err := ac.issueSession(c, user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    userJSON(user),
	})
}

// Logout clears the cookie and revokes the token until it would have expired.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if token := utils.ExtractToken(c, ac.Cfg); token != "" {
		if claims, err := utils.ParseToken(token, ac.Cfg); err == nil && claims.ExpiresAt != nil {
			entry := models.TokenBlacklist{Token: token, ExpiresAt: claims.ExpiresAt.Time}
			if err := ac.DB.Where(models.TokenBlacklist{Token: token}).FirstOrCreate(&entry).Error; err != nil {
				log.Println("[ERROR] blacklist token:", err)
			}
		}
	}
	utils.ClearAuthCookie(c, ac.Cfg)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

func (ac *AuthController) Status(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return c.JSON(fiber.Map{"isAuthenticated": false})
	}
	return c.JSON(fiber.Map{
		"isAuthenticated": true,
		"user": fiber.Map{
			"id":       userID,
			"username": c.Locals(middleware.LocalUsername),
			"role":     c.Locals(middleware.LocalRole),
		},
	})
}

func (ac *AuthController) currentUser(c *fiber.Ctx) (models.User, error) {
	var user models.User
	if err := ac.DB.First(&user, middleware.CurrentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return user, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return user, nil
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	user, err := ac.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": userJSON(user)})
}

func (ac *AuthController) UpdateMe(c *fiber.Ctx) error {
	var input UpdateMeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	user, err := ac.currentUser(c)
	if err != nil {
		return err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		var count int64
		ac.DB.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
		if count > 0 {
			return utils.Conflict(c, "Email is already registered")
		}
		user.Email = email
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Avatar != nil {
		user.Avatar = strings.TrimSpace(*input.Avatar)
	}

	if err := ac.DB.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Email is already registered")
		}
		return utils.InternalServerError(c, "Could not update user")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated",
		"user":    userJSON(user),
	})
}

func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	var input ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	user, err := ac.currentUser(c)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return utils.Unauthorized(c, "Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}
	if err := ac.DB.Model(&user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return utils.InternalServerError(c, "Could not update password")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password changed"})
}
