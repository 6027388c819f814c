package middleware

import (
	"net/http"
	"strings"

	"evisa/internal/domain"
	"evisa/internal/pkg/jwt"
	"evisa/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates the bearer token and stores user_id and role in the gin
// context. Browsers cannot set headers on websocket upgrades, so a token query
// parameter is accepted when the header is absent.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string

		authHeader := c.GetHeader("Authorization")
		switch {
		case authHeader != "":
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>")
				c.Abort()
				return
			}
			token = strings.TrimSpace(parts[1])
		case c.Query("token") != "":
			token = c.Query("token")
		default:
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Not authorized, no token")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err == nil && !domain.UserRole(claims.Role).IsValid() {
			err = jwt.ErrInvalidToken
		}
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Not authorized, token failed")
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// GetCaller returns the identity JWTAuth attached to the request.
func GetCaller(c *gin.Context) (domain.Caller, bool) {
	userID := c.GetInt64(ctxUserID)
	if userID == 0 {
		return domain.Caller{}, false
	}
	return domain.Caller{UserID: userID, Role: domain.UserRole(c.GetString(ctxRole))}, true
}

// MustCaller is GetCaller for handlers mounted behind JWTAuth. It writes 401
// and returns false when no identity is present.
func MustCaller(c *gin.Context) (domain.Caller, bool) {
	caller, ok := GetCaller(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		c.Abort()
	}
	return caller, ok
}
