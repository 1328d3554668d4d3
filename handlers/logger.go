package handlers

import (
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped Zap logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// authorizedAs reports whether the authenticated subject, if any, may act as id.
// Without an authenticated subject every id is accepted.
func authorizedAs(c *gin.Context, id string) bool {
	subject := c.GetString("subject")
	return subject == "" || subject == id
}
