package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"fastfisher/domain/core"
)

// AppError is an error with a stable machine-readable code
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
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
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to err. The code of the nearest AppError in the chain is
// kept; anything else becomes INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternalError
	if appErr, ok := asAppError(err); ok {
		code = appErr.Code
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode replaces the code of err, keeping its text.
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Cause: err}
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether any error in the chain is an AppError
func IsAppError(err error) bool {
	_, ok := asAppError(err)
	return ok
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// FromDomain gives the engine's sentinel errors their application codes.
// AppErrors and unknown errors pass through unchanged.
func FromDomain(err error) error {
	switch {
	case err == nil || IsAppError(err):
		return err
	case core.IsInvalidTableError(err):
		return InvalidTable(err)
	case stderrors.Is(err, core.ErrInvalidAlternative):
		return WithCode(CodeInvalidInput, err)
	case stderrors.Is(err, core.ErrOracleUnsupported):
		return &AppError{Code: CodeValidationError, Message: "table not supported by oracle", Cause: err}
	case core.IsDisagreement(err):
		return ReferenceMismatch(err)
	default:
		return err
	}
}

// HTTPStatus maps the code of err onto a response status.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidTable, CodeInvalidInput, CodeValidationError, CodeUnsupportedFormat:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeReferenceMismatch:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeInvalidTable      = "INVALID_TABLE"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeReferenceMismatch = "REFERENCE_MISMATCH"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

// InvalidTable wraps a table validation failure so callers can map it to a
// client error while errors.Is still reaches the domain sentinel.
func InvalidTable(cause error) *AppError {
	return &AppError{Code: CodeInvalidTable, Message: "invalid table", Cause: cause}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ReferenceMismatch(cause error) *AppError {
	return &AppError{Code: CodeReferenceMismatch, Message: "engine disagrees with reference", Cause: cause}
}

func UnsupportedFormat(path string) *AppError {
	return New(CodeUnsupportedFormat, fmt.Sprintf("unsupported table file %q (want .xlsx or .csv)", path))
}
