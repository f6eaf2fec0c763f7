package errors

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Throttling errors
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	Details interface{}       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests. Please try again later."
	}
	RespondWithError(c, http.StatusTooManyRequests, NewAPIError(ErrCodeTooManyRequests, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ValidationFailed sends a 422 response carrying per-field errors
func ValidationFailed(c *gin.Context, fieldErrors map[string]string) {
	err := NewAPIError(ErrCodeValidationFailed, "The given data was invalid")
	err.Errors = fieldErrors
	RespondWithError(c, http.StatusUnprocessableEntity, err)
}

// FieldError sends a 422 response for a single failing field
func FieldError(c *gin.Context, field, message string) {
	ValidationFailed(c, map[string]string{field: message})
}

// BindingErrors converts a binding failure into a per-field error map.
// Non-validator errors (malformed JSON and the like) map to a single body error.
func BindingErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fieldErrors["body"] = "Invalid request body"
		return fieldErrors
	}

	for _, fe := range validationErrs {
		field := snakeCase(fe.Field())
		fieldErrors[field] = validationMessage(field, fe)
	}

	return fieldErrors
}

func validationMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "The " + field + " field is required"
	case "email":
		return "The " + field + " must be a valid email address"
	case "min":
		return "The " + field + " must be at least " + fe.Param() + " characters"
	case "max":
		return "The " + field + " may not be greater than " + fe.Param()
	case "eqfield":
		return "The " + field + " confirmation does not match"
	case "oneof":
		return "The selected " + field + " is invalid"
	case "gte":
		return "The " + field + " must be at least " + fe.Param()
	case "lte":
		return "The " + field + " may not be greater than " + fe.Param()
	default:
		return "The " + field + " field is invalid"
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
