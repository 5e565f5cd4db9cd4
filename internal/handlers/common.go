package handlers

import (
	"aguipuntos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// actingUserFromContext reads the authenticated user set by AuthMiddleware.
// Both fields stay nil on unauthenticated routes.
func actingUserFromContext(c *gin.Context) services.ActingUser {
	actor := services.ActingUser{}
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int64); ok {
			actor.ID = &id
		}
	}
	if v, ok := c.Get("username"); ok {
		if name, ok := v.(string); ok && name != "" {
			actor.Username = &name
		}
	}
	return actor
}
