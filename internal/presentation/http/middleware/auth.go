package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/presentation/http/dto/response"
	"github.com/sangkips/checkout-api/pkg/utils"
)

// Context keys set by AuthMiddleware
const (
	OperatorIDKey    = "operator_id"
	OperatorNameKey  = "operator_name"
	OperatorRolesKey = "operator_roles"
	TerminalKey      = "terminal"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(OperatorIDKey, claims.OperatorID)
		c.Set(OperatorNameKey, claims.Name)
		c.Set(OperatorRolesKey, claims.Roles)
		c.Set(TerminalKey, claims.Terminal)

		c.Next()
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRolesList, ok := c.Get(OperatorRolesKey)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}
		held, _ := userRolesList.([]string)

		for _, userRole := range held {
			for _, requiredRole := range roles {
				if userRole == requiredRole {
					c.Next()
					return
				}
			}
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}

// GetOperatorID retrieves the authenticated operator from gin context
func GetOperatorID(c *gin.Context) uuid.UUID {
	v, exists := c.Get(OperatorIDKey)
	if !exists {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
