package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypePayloadTooBig  ErrorType = "payload_too_large"
	ErrorTypeMalformed      ErrorType = "malformed_body"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeExternal       ErrorType = "external"
)

// User-facing messages shared by several routes.
const (
	MsgInternal      = "Произошла техническая ошибка. Попробуйте отправить заявку позже."
	MsgPayloadTooBig = "Отправленные данные слишком большие. Сократите сообщение."
	MsgMalformedBody = "Ошибка в формате данных. Обновите страницу и попробуйте снова."
	MsgNotFound      = "Страница не найдена."
	MsgNoToken       = "Токен доступа отсутствует"
	MsgInvalidToken  = "Недействительный токен"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Internal   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewPayloadTooLargeError is returned when a request body exceeds the configured limit
func NewPayloadTooLargeError(internal error) *AppError {
	return &AppError{
		Type:       ErrorTypePayloadTooBig,
		Message:    MsgPayloadTooBig,
		StatusCode: http.StatusRequestEntityTooLarge,
		Internal:   internal,
	}
}

// NewMalformedBodyError is returned when a request body is not valid JSON
func NewMalformedBodyError(internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformed,
		Message:    MsgMalformedBody,
		StatusCode: http.StatusBadRequest,
		Internal:   internal,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// AsAppError unwraps err into an *AppError. Anything that is not already an
// AppError becomes an internal error carrying fallback as its message.
func AsAppError(err error, fallback string) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(fallback, err)
}

// ErrorResponse is the JSON body written for every failed request
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
