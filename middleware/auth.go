package middleware

import (
	"net/http"
	"strings"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware requires a bearer token signed with secret and stores its
// subject under "subject". Handlers compare it with the client or provider id
// in the request. An empty secret turns authentication off.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header", "")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, err := utils.ExtractIDFromToken(secret, tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Invalid token", err.Error())
			c.Abort()
			return
		}

		c.Set("subject", subject)
		c.Next()
	}
}
