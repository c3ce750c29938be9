package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/service/audit"
)

// AuditClient puts the caller's address and user agent on the request
// context, where audit entries written by the services pick them up.
func AuditClient() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClient(c.Request.Context(), audit.Client{
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
