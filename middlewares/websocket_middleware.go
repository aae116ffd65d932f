package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/utils"
)

// WebSocketAuthMiddleware authenticates dashboard event subscribers. Browsers
// cannot set headers on websocket upgrades, so the token rides the query.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseStaffToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("userID", claims.UserID)
		c.Next()
	}
}
