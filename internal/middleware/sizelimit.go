package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

const (
	DefaultBodyLimit = 1 << 20
	// ConsentBodyLimit leaves room for two signature images.
	ConsentBodyLimit = 8 << 20
)

// BodyLimit caps request bodies. Declared lengths over the cap are refused
// up front; chunked bodies fail when the handler reads past it.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			httputil.RespondWithError(c, apperrors.BadRequest("request body too large", nil))
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

// BodyLimitExcept applies BodyLimit(max) to every route except the listed
// full paths, which set their own limit.
func BodyLimitExcept(max int64, routes ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		skip[r] = struct{}{}
	}
	limit := BodyLimit(max)
	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}
		limit(c)
	}
}
