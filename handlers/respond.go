package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"staygrow/errs"
	"staygrow/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var registerOnce sync.Once

// registerJSONFieldNames makes validator report fields by their json name.
func registerJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// writeError reports err as {error, fields?} with the status errs assigns it.
// 5xx bodies never carry the underlying error text.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrDisabled) {
		err = errs.ErrUnavailable
	}

	status := errs.StatusCode(err)
	body := gin.H{"error": errs.PublicMessage(err)}

	var ve *errs.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		body["fields"] = ve.Fields
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("request failed")
	}

	c.JSON(status, body)
}

// bindError converts a ShouldBind* failure into a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldPath(fe))
		}
		return errs.NewValidationError("invalid request", fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return errs.NewValidationError("invalid request body", typeErr.Field)
	}
	return errs.NewValidationError("invalid request body")
}

// fieldPath strips the struct name from a namespace: "CreateProjectRequest.sdgTags[0]" -> "sdgTags[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func parseID(c *gin.Context, param, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		writeError(c, errs.NewValidationError("invalid "+entity+" ID", param))
		return uuid.Nil, false
	}
	return id, true
}
