package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(token string) (*session.Session, error)
}

var errMissingToken = errors.New("missing bearer token")

// Authenticate requires a valid bearer token and stores the session on both
// the gin context and the request context.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(errMissingToken))
			c.Abort()
			return
		}

		sess, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(session.ContextKey, sess)
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

// RequireRole rejects sessions whose role is not listed.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.FromContext(c.Request.Context())
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			c.Abort()
			return
		}
		if !sess.HasRole(roles...) {
			httputil.RespondWithError(c, apperrors.Forbidden("permission denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}
