package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError pins an error to a status, for failures a handler classifies itself.
type HTTPError struct {
	Status int
	Code   string
	Err    error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, code string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Err: err}
}

// ErrorHandler renders the last error a handler attached with c.Error and
// turns panics into 500s.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic serving request", "path", c.FullPath(), "panic", rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, code := Classify(err)
		msg := err.Error()
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
			if status == http.StatusInternalServerError {
				msg = "internal server error"
			}
		}
		c.JSON(status, ErrorResponse{Error: msg, Code: code})
	}
}

// Classify maps an error to its HTTP status and error code.
func Classify(err error) (int, string) {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status, httpErr.Code
	case errors.Is(err, nutrition.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrExportUnavailable):
		return http.StatusServiceUnavailable, "export_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}
