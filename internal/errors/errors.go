package errors

import (
	stderrors "errors"
	"fmt"

	"edabench/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an
// AppError cause or deriving one from a domain sentinel.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    codeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code of the outermost AppError, the code implied
// by a domain sentinel, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if err == nil {
		return ""
	}
	if code := codeFor(err); code != CodeInternalError {
		return code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeNameCollision    = "NAME_COLLISION"
	CodeDomainViolation  = "DOMAIN_VIOLATION"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeComputation      = "COMPUTATION_FAILED"
	CodeInvalidState     = "INVALID_STATE"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
)

var sentinelCodes = []struct {
	sentinel error
	code     string
}{
	{core.ErrNameCollision, CodeNameCollision},
	{core.ErrDomainViolation, CodeDomainViolation},
	{core.ErrInsufficientData, CodeInsufficientData},
	{core.ErrComputation, CodeComputation},
	{core.ErrInvalidState, CodeInvalidState},
	{core.ErrStale, CodeInvalidState},
	{core.ErrNotFound, CodeNotFound},
	{core.ErrValidation, CodeValidationError},
	{core.ErrWrongKind, CodeValidationError},
	{core.ErrLengthMismatch, CodeValidationError},
	{core.ErrUnknownOperator, CodeValidationError},
	{core.ErrCoercion, CodeValidationError},
}

func codeFor(err error) string {
	for _, sc := range sentinelCodes {
		if stderrors.Is(err, sc.sentinel) {
			return sc.code
		}
	}
	return CodeInternalError
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InvalidState(message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message, Cause: core.ErrInvalidState}
}

func ComputationFailed(step string, cause error) *AppError {
	return &AppError{
		Code:    CodeComputation,
		Message: fmt.Sprintf("%s failed", step),
		Cause:   fmt.Errorf("%w: %v", core.ErrComputation, cause),
	}
}
