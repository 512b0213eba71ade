package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"eventhub/models"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Details []fieldError `json:"details,omitempty"`
	Detail  string       `json:"detail,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState), errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders the last error pushed with c.Error once the chain
// has run. Bind errors become validation responses with per-field details.
// exposeDetail attaches the raw error text to 500 responses.
func ErrorHandler(log logrus.FieldLogger, exposeDetail bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		status, body := render(last)

		entry := log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})
		if status >= http.StatusInternalServerError {
			entry.WithError(last.Err).Error("request failed")
			if exposeDetail {
				body.Detail = last.Err.Error()
			}
		} else {
			entry.WithField("reason", body.Message).Debug("request rejected")
		}

		c.AbortWithStatusJSON(status, body)
	}
}

func render(e *gin.Error) (int, errorBody) {
	if e.IsType(gin.ErrorTypeBind) {
		body := errorBody{Error: models.ErrValidation.Error(), Message: "Validation error"}
		var verrs validator.ValidationErrors
		if errors.As(e.Err, &verrs) {
			for _, fe := range verrs {
				body.Details = append(body.Details, fieldError{Field: fe.Field(), Message: describe(fe)})
			}
		} else {
			body.Message = "Invalid request body"
		}
		return http.StatusBadRequest, body
	}

	status := StatusFor(e.Err)
	if status == http.StatusInternalServerError {
		return status, errorBody{Error: "internal_error", Message: "Internal server error"}
	}
	var appErr *models.Error
	if errors.As(e.Err, &appErr) {
		return status, errorBody{Error: appErr.Kind.Error(), Message: appErr.Message}
	}
	return status, errorBody{Error: "error", Message: e.Err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}
