package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/osian-labs/quiz-platform/internal/models"
)

// AuthMiddleware authenticates requests via a bearer JWT issued at login.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(jwtSecret)}
}

// Authenticate validates the Authorization header and stores user_id and
// user_role on the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization token required",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization token required",
			})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "Token expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}
		if !token.Valid {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}

		rawID, ok := claims["id"].(float64)
		if !ok || rawID <= 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}
		rawRole, _ := claims["role"].(string)
		role, ok := models.ParseRole(rawRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}

		c.Set("user_id", uint(rawID))
		c.Set("user_role", role)
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is not in the allowed
// set.
func (m *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		role, ok := value.(models.UserRole)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Insufficient permissions",
			})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
	}
}

// currentUserRole reads the role set by Authenticate, defaulting to the least
// privileged role when absent.
func currentUserRole(c *gin.Context) models.UserRole {
	if value, exists := c.Get("user_role"); exists {
		if role, ok := value.(models.UserRole); ok {
			return role
		}
	}
	return models.RoleUser
}
