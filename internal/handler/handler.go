// Package handler holds the request helpers shared by the resource handlers
// in its subpackages.
package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/internal/session"
	apperrors "github.com/jwalitptl/dental-api/pkg/errors"
	"github.com/jwalitptl/dental-api/pkg/httputil"
)

// ParseID reads a uuid path parameter. On failure the 400 is already written.
func ParseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(fmt.Sprintf("invalid %s", name), err))
		return uuid.Nil, false
	}
	return id, true
}

// QueryID reads an optional uuid query parameter into dst. Query binding
// leaves uuid fields alone, so handlers fill them through here.
func QueryID(c *gin.Context, name string, dst *uuid.UUID) bool {
	raw := c.Query(name)
	if raw == "" {
		return true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation(apperrors.FieldError{Field: name, Message: "must be a valid id"}))
		return false
	}
	*dst = id
	return true
}

// CurrentSession returns the session placed by the auth middleware.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	sess, err := session.FromContext(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(err))
		return nil, false
	}
	return sess, true
}

func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.RespondWithError(c, bindError(err))
		return false
	}
	return true
}

func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		httputil.RespondWithError(c, bindError(err))
		return false
	}
	return true
}

func BindURI(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindUri(obj); err != nil {
		httputil.RespondWithError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.BadRequest("invalid request", err)
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: middleware.FieldMessage(fe),
		})
	}
	return apperrors.Validation(fields...)
}
