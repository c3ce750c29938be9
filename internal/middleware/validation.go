package middleware

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/dental-api/internal/odontogram"
)

var registerOnce sync.Once

// RegisterValidators reports field names by their json/form tag and adds the
// clinic specific tags: hhmm for "15:04" clock times and fdi_tooth for tooth
// numbers present on the chart.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return fld.Name
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		if err = v.RegisterValidation("hhmm", validateClock); err != nil {
			return
		}
		err = v.RegisterValidation("fdi_tooth", validateTooth)
	})
	return err
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func validateTooth(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return odontogram.ValidTooth(int(fl.Field().Int()))
	}
	return false
}

var tagMessages = map[string]string{
	"required":   "is required",
	"email":      "must be a valid email address",
	"uuid":       "must be a valid id",
	"hhmm":       "must be a time in HH:MM format",
	"fdi_tooth":  "must be a tooth number on the chart",
	"datetime":   "must be a date in YYYY-MM-DD format",
	"oneof":      "must be one of: %s",
	"min":        "must be at least %s",
	"max":        "must be at most %s",
	"gt":         "must be greater than %s",
	"startswith": "must start with %s",
	"nefield":    "must differ from %s",
}

// FieldMessage renders a validation failure for API clients.
func FieldMessage(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}
