package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// apiError is the single error currency inside handlers. Every failure a
// handler can produce is one of these; the error handler turns it into
// the JSON body the client sees.
type apiError struct {
	Code    int
	Message string
	Fields  map[string]string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *apiError) Unwrap() error { return e.cause }

func errBadRequest(message string) *apiError {
	return &apiError{Code: http.StatusBadRequest, Message: message}
}

// errValidation reports field-level problems with a 400.
func errValidation(fields map[string]string) *apiError {
	return &apiError{Code: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

func errUnauthorized(message string) *apiError {
	return &apiError{Code: http.StatusUnauthorized, Message: message}
}

func errForbidden(message string) *apiError {
	return &apiError{Code: http.StatusForbidden, Message: message}
}

func errNotFound(resource string) *apiError {
	return &apiError{Code: http.StatusNotFound, Message: resource + " not found"}
}

func errConflict(message string) *apiError {
	return &apiError{Code: http.StatusConflict, Message: message}
}

func errInternal(cause error) *apiError {
	return &apiError{Code: http.StatusInternalServerError, Message: "internal server error", cause: cause}
}

// translateDB maps persistence failures onto the error taxonomy. A
// missing row is a 404, a violated uniqueness constraint a 409,
// everything else a 500.
func translateDB(err error, resource string) *apiError {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errNotFound(resource)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return errConflict(resource + " already exists")
	default:
		return errInternal(err)
	}
}

// errorHandler renders apiErrors as JSON. Outside dev mode the bodies of
// 500s and the per-field validation detail are suppressed.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ae *apiError
	if !errors.As(err, &ae) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, _ := he.Message.(string)
			if msg == "" {
				msg = http.StatusText(he.Code)
			}
			ae = &apiError{Code: he.Code, Message: msg}
		} else {
			ae = errInternal(err)
		}
	}

	if ae.Code >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	body := echo.Map{"error": ae.Message}
	if s.cfg.DevMode {
		if ae.cause != nil {
			body["error"] = ae.cause.Error()
		}
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
		}
	}
	_ = c.JSON(ae.Code, body)
}
