package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/service"
	"github.com/seatsurge/ticketd/pkg/response"
)

// Auth validates the bearer token and stores the caller's identity on the
// request context.
func Auth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set. Must
// run after Auth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[domain.Role(c.GetString("role"))] {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
