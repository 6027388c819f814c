package middleware

import (
	"fmt"
	"net/http"

	"evisa/internal/domain"
	"evisa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the caller has one of roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	allowed := make(map[domain.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		r, _ := role.(string)
		if !allowed[domain.UserRole(r)] {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", fmt.Sprintf("User role %s is not authorized to access this route", r))
			c.Abort()
			return
		}

		c.Next()
	}
}

// StaffOnly admits admins and managers.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := MustCaller(c)
		if !ok {
			return
		}
		if !caller.Role.IsStaff() {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
