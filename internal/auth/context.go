package auth

import "github.com/gin-gonic/gin"

// Context keys under which AuthRequired stores the authenticated identity.
const (
	ctxUserIDKey    = "auth.userID"
	ctxUserEmailKey = "auth.userEmail"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ctxUserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	if v, ok := c.Get(ctxUserEmailKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
