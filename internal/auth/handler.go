package auth

import (
	"errors"
	"strings"

	"canteen-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UserResponse struct {
	ID              uint            `json:"id"`
	Username        string          `json:"username"`
	Role            models.UserRole `json:"role"`
	Balance         float64         `json:"balance"`
	Allergies       string          `json:"allergies"`
	SubscriptionEnd *string         `json:"subscription_end"`
}

func NewUserResponse(u *models.User) UserResponse {
	res := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Balance:   u.Balance,
		Allergies: u.Allergies,
	}
	if u.SubscriptionEnd != nil {
		s := u.SubscriptionEnd.Format("2006-01-02 15:04:05")
		res.SubscriptionEnd = &s
	}
	return res
}

// POST /api/auth/register
// Self-service registration. Staff roles can be picked only when allowStaff
// is set; otherwise every new account is a student.
func RegisterHandler(db *gorm.DB, allowStaff bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password are required")
		}
		if body.Role == "" {
			body.Role = models.RoleStudent
		}
		if !body.Role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "role must be student, cook or admin")
		}
		if body.Role != models.RoleStudent && !allowStaff {
			return fiber.NewError(fiber.StatusForbidden, "staff accounts are created by an administrator")
		}

		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", body.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "username already taken")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not hash password")
		}

		user := models.User{
			Username:     body.Username,
			PasswordHash: string(hash),
			Role:         body.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "username already taken")
		}

		log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
		return c.Status(fiber.StatusCreated).JSON(NewUserResponse(&user))
	}
}

// POST /api/auth/login
func LoginHandler(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)

		var user models.User
		if err := db.Where("username = ?", body.Username).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong username or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong username or password")
		}

		token, err := GenerateToken(secret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  NewUserResponse(&user),
		})
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
			}
			return err
		}
		return c.JSON(NewUserResponse(&user))
	}
}

// POST /api/auth/password
func ChangePasswordHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return err
		}

		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.NewPassword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "new password is required")
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.OldPassword)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "old password is wrong")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not hash password")
		}
		if err := db.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
