package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Validation: bad input, nothing mutated
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidName   ErrorCode = "INVALID_NAME"
	ErrCodeInvalidTarget ErrorCode = "INVALID_TARGET"

	// Policy: operation not permitted in the current state, nothing mutated
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeNotJoinable      ErrorCode = "NOT_JOINABLE"
	ErrCodeSessionFull      ErrorCode = "SESSION_FULL"
	ErrCodeAlreadyJoined    ErrorCode = "ALREADY_JOINED"
	ErrCodeAlreadyStarted   ErrorCode = "ALREADY_STARTED"
	ErrCodeNotEnoughPlayers ErrorCode = "NOT_ENOUGH_PLAYERS"
	ErrCodeNotYourTurn      ErrorCode = "NOT_YOUR_TURN"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the error code of an AppError in the chain, or
// ErrCodeInternal for anything else.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Common error constructors

func InvalidName(message string) *AppError {
	return New(ErrCodeInvalidName, message)
}

func InvalidTarget(message string) *AppError {
	return New(ErrCodeInvalidTarget, message)
}

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func NotJoinable(message string) *AppError {
	return New(ErrCodeNotJoinable, message)
}

func SessionFull() *AppError {
	return New(ErrCodeSessionFull, "Session is full")
}

func AlreadyJoined() *AppError {
	return New(ErrCodeAlreadyJoined, "Already joined this session")
}

func AlreadyStarted() *AppError {
	return New(ErrCodeAlreadyStarted, "Session already started")
}

func NotEnoughPlayers(min, have int) *AppError {
	return New(ErrCodeNotEnoughPlayers, fmt.Sprintf("Need at least %d players, have %d", min, have))
}

func NotYourTurn(message string) *AppError {
	return New(ErrCodeNotYourTurn, message)
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(message string, cause error) *AppError {
	return Wrap(ErrCodeDatabase, message, cause)
}
