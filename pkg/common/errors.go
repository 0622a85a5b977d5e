package common

import (
	"fmt"
	"net/http"
)

// AppError is an error with an associated HTTP status code
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code int, message string, cause ...error) *AppError {
	appErr := &AppError{Code: code, Message: message}
	if len(cause) > 0 {
		appErr.Err = cause[0]
	}
	return appErr
}

// NewBadRequestError creates a 400 error
func NewBadRequestError(message string, cause ...error) *AppError {
	return newAppError(http.StatusBadRequest, message, cause...)
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string, cause ...error) *AppError {
	return newAppError(http.StatusNotFound, message, cause...)
}

// NewForbiddenError creates a 403 error
func NewForbiddenError(message string, cause ...error) *AppError {
	return newAppError(http.StatusForbidden, message, cause...)
}

// NewUnauthorizedError creates a 401 error
func NewUnauthorizedError(message string, cause ...error) *AppError {
	return newAppError(http.StatusUnauthorized, message, cause...)
}

// NewConflictError creates a 409 error
func NewConflictError(message string, cause ...error) *AppError {
	return newAppError(http.StatusConflict, message, cause...)
}

// NewUnprocessableError creates a 422 error
func NewUnprocessableError(message string, cause ...error) *AppError {
	return newAppError(http.StatusUnprocessableEntity, message, cause...)
}

// NewBadGatewayError creates a 502 error for upstream service failures
func NewBadGatewayError(message string, cause ...error) *AppError {
	return newAppError(http.StatusBadGateway, message, cause...)
}

// NewInternalServerError creates a 500 error
func NewInternalServerError(message string, cause ...error) *AppError {
	return newAppError(http.StatusInternalServerError, message, cause...)
}
