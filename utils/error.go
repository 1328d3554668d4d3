package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures so the transport can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInputValidation
	KindStateConflict
	KindNotFound
	KindAuthorizationMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputValidation:
		return "InputValidation"
	case KindStateConflict:
		return "StateConflict"
	case KindNotFound:
		return "NotFound"
	case KindAuthorizationMismatch:
		return "AuthorizationMismatch"
	default:
		return "Internal"
	}
}

// AppError is a recoverable domain failure. Two AppErrors match under
// errors.Is when their codes are equal.
type AppError struct {
	Code    string
	Kind    ErrorKind
	Message string
}

func NewAppError(code string, kind ErrorKind, message string) *AppError {
	return &AppError{Code: code, Kind: kind, Message: message}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindInputValidation:
		return http.StatusBadRequest
	case KindStateConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorizationMismatch:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "internal_error",
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// RespondError writes err as JSON using the status of its kind.
// Internal failures are logged at error level and never leak their text.
func RespondError(c *gin.Context, err error) {
	logger := GetLogger()

	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal Server Error",
		})
		return
	}

	status := StatusFor(appErr.Kind)
	resp := ErrorResponse{Error: appErr.Code, Message: appErr.Message}
	if msg := err.Error(); msg != appErr.Error() {
		resp.Details = msg
	}

	if status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, zap.String("code", appErr.Code), zap.Error(err))
	} else {
		logger.Warn(appErr.Message, zap.String("code", appErr.Code), zap.String("details", resp.Details))
	}
	c.JSON(status, resp)
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, code, message, details string) {
	GetLogger().Warn(message, zap.String("code", code), zap.String("details", details))
	c.JSON(status, ErrorResponse{Error: code, Message: message, Details: details})
}
