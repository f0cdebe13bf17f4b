package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error codes shared by the service and HTTP layers.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeDuplicate    = "DUPLICATE"
	CodeSelfFollow   = "SELF_FOLLOW"
	CodeInternal     = "INTERNAL_ERROR"
)

// RetryLaterMessage is shown for transient storage failures.
const RetryLaterMessage = "Please try again later."

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code,omitempty"`
	Errors []string `json:"errors,omitempty"`
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

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewNotFoundMessage builds a NOT_FOUND error with a caller supplied message.
func NewNotFoundMessage(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
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

// NewForbiddenError reports an action attempted by someone who does not own the resource.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewDuplicateError(message string) *AppError {
	return &AppError{
		Code:    CodeDuplicate,
		Message: message,
	}
}

func NewSelfFollowError(message string) *AppError {
	return &AppError{
		Code:    CodeSelfFollow,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: RetryLaterMessage,
		Err:     err,
	}
}

// Errors is an ordered set of rule violations reported together.
type Errors []*AppError

// Add appends err when it is not nil.
func (es *Errors) Add(err *AppError) {
	if err != nil {
		*es = append(*es, err)
	}
}

func (es Errors) Error() string {
	return strings.Join(es.Messages(), "; ")
}

// Messages returns the user facing messages in insertion order.
func (es Errors) Messages() []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Message)
	}
	return out
}

// Has reports whether any collected error carries code.
func (es Errors) Has(code string) bool {
	for _, e := range es {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Err returns nil for an empty set so callers can `return errs.Err()`.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// Code is the code of the first collected error.
func (es Errors) Code() string {
	if len(es) == 0 {
		return ""
	}
	return es[0].Code
}

// HasCode reports whether err is, or contains, an AppError with the given code.
func HasCode(err error, code string) bool {
	var es Errors
	if errors.As(err, &es) {
		return es.Has(code)
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StatusFor maps an error to the HTTP status the API answers with.
func StatusFor(err error) int {
	code := ""
	var es Errors
	var appErr *AppError
	switch {
	case errors.As(err, &es):
		code = es.Code()
	case errors.As(err, &appErr):
		code = appErr.Code
	}

	switch code {
	case CodeValidation, CodeSelfFollow:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeDuplicate:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var es Errors
	var appErr *AppError
	switch {
	case errors.As(err, &es) && len(es) > 0:
		response = ErrorResponse{
			Error:  es[0].Message,
			Code:   es.Code(),
			Errors: es.Messages(),
		}
	case errors.As(err, &appErr):
		response = ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Errors: []string{appErr.Message},
		}
	default:
		// Raw errors never leave the process.
		response = ErrorResponse{
			Error: RetryLaterMessage,
			Code:  CodeInternal,
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError picks the status from the error itself.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err), err)
}
