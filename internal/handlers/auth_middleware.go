package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/models"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/services"
	"github.com/KrishPrajapati1346/Treasure-Hunt-Backend/internal/utils"
)

// AuthMiddleware validates bearer tokens and populates the request
// context with the caller's identity.
type AuthMiddleware struct {
	secret []byte
	logger utils.Logger
}

func NewAuthMiddleware(jwtSecret string, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(jwtSecret),
		logger: logger,
	}
}

// Authenticate rejects requests without a valid Authorization header.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing authorization header",
			})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization header format",
			})
			return
		}

		claims, err := services.ParseToken(tokenString, m.secret)
		if err != nil {
			m.logger.Warn("token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole allows only the given roles past. Must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		for _, allowed := range roles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient role permissions",
		})
	}
}
