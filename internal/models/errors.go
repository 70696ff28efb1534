package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeNotAuthenticated           = "NOT_AUTHENTICATED"
	CodeUnauthorized               = "UNAUTHORIZED"
	CodeForbidden                  = "FORBIDDEN"
	CodeValidation                 = "VALIDATION_ERROR"
	CodeNotFound                   = "NOT_FOUND"
	CodeConflict                   = "CONFLICT"
	CodeLikeWriteFailed            = "LIKE_WRITE_FAILED"
	CodeNotificationDispatchFailed = "NOTIFICATION_DISPATCH_FAILED"
	CodeSubscriptionError          = "SUBSCRIPTION_ERROR"
	CodeInternal                   = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewNotAuthenticatedError is returned when no actor can be resolved for a request.
func NewNotAuthenticatedError(err error) *AppError {
	return &AppError{
		Code:    CodeNotAuthenticated,
		Message: "Sign in to continue",
		Err:     err,
	}
}

// NewLikeWriteFailedError wraps a like store failure. The like state is unchanged.
func NewLikeWriteFailedError(err error) *AppError {
	return &AppError{
		Code:    CodeLikeWriteFailed,
		Message: "Could not update like",
		Err:     err,
	}
}

func NewNotificationDispatchError(err error) *AppError {
	return &AppError{
		Code:    CodeNotificationDispatchFailed,
		Message: "Notification dispatch failed",
		Err:     err,
	}
}

func NewSubscriptionError(err error) *AppError {
	return &AppError{
		Code:    CodeSubscriptionError,
		Message: "Live update subscription failed",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code carried by err, or "" when err is not an AppError.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// StatusForError maps an error to the HTTP status used when responding with it.
func StatusForError(err error) int {
	switch ErrorCode(err) {
	case CodeNotAuthenticated, CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	case CodeLikeWriteFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		// Wrapped store errors stay server-side.
		if appErr.Err != nil && appErr.Code != CodeInternal && appErr.Code != CodeLikeWriteFailed {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
