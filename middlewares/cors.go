package middlewares

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func allowedOrigins() map[string]bool {
	origins := make(map[string]bool)
	for _, entry := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			origins[entry] = true
		}
	}
	return origins
}

func CORSMiddlewares() gin.HandlerFunc {
	origins := allowedOrigins()
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origins[origin] || len(origins) == 0 {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Line-Signature, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
