// Package middleware provides HTTP middleware components for the application.
// Authentication resolves the caller from a bearer token and refuses users
// the account collaborator reports as suspended or deleted.
package middleware

import (
	"errors"
	"strings"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware handles JWT token validation and user authentication.
type AuthMiddleware struct {
	users  repositories.UserRepository
	secret string
	log    *zap.Logger
}

func NewAuthMiddleware(users repositories.UserRepository, secret string, log *zap.Logger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthMiddleware{
		users:  users,
		secret: secret,
		log:    log.Named("auth"),
	}
}

// Handler validates the bearer token and stores the claims in the request
// context under "claims" and the user id under "userID".
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "), m.secret)
	if err != nil {
		m.log.Debug("token rejected", zap.Error(err))
		return utils.Unauthorized(c, "invalid token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return utils.Unauthorized(c, "invalid token")
		}
		m.log.Error("user lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return utils.InternalError(c, "internal server error")
	}
	if !user.CanTransact() {
		m.log.Info("inactive user refused",
			zap.String("user_id", user.ID),
			zap.String("status", string(user.Status)),
			zap.Bool("deleted", user.IsDeleted))
		return utils.Forbidden(c, "account is not active")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !claims.HasPermission(permission) {
			return utils.Forbidden(c, "Insufficient permissions")
		}
		return c.Next()
	}
}
