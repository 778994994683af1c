package errors

import (
	"fmt"
)

// ErrorType classifies failures raised below the HTTP layer. The error
// handler turns each type into a problem response; the CLI prints it as is.
type ErrorType string

const (
	// ErrTypeParsing marks a session export or schedule workbook that could
	// not be read. Served as 422.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage marks a failure writing or clearing stored uploads or
	// exported workbooks. The cause never reaches the client.
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeValidation marks bad caller input such as an unknown Cell
	// Manager or an inverted date range.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeNotFound marks a missing or expired workspace.
	ErrTypeNotFound ErrorType = "NOT_FOUND"
	ErrTypeConfig   ErrorType = "CONFIG"
)

// AppError is a typed failure from the report services, the upload store or
// the CLI. Context carries identifiers like the Cell Manager or file name and
// is echoed to clients only for 4xx responses.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches key to the error and returns it for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError wraps a decoder or excelize failure on an uploaded file.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError wraps a filesystem failure under the data directory.
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError reports rejected input outside a request body, such as
// CLI flags. Request bodies use the APIError validation helpers instead.
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError reports a missing resource, usually an expired workspace.
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError wraps a failure loading BKP_ settings or the config file.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
