package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeRemote     ErrorType = "remote"
	ErrorTypeIdentity   ErrorType = "identity"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
)

// Messages shown to the user when nothing more specific is available
const (
	MessageTransport = "Ошибка соединения с сервером. Попробуйте ещё раз."
	MessageRemote    = "Ошибка загрузки данных"
	MessageIdentity  = "Не удалось получить данные пользователя из Telegram"
	MessageInternal  = "Неизвестная ошибка"
)

// AppError represents an application error with additional context
type AppError struct {
	Type       ErrorType
	Message    string
	Code       string
	HTTPStatus int
	Internal   error
	Context    map[string]interface{}
	Source     string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.HTTPStatus != 0 {
		fields = append(fields, "http_status", e.HTTPStatus)
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

func caller(skip int) string {
	_, file, line, _ := runtime.Caller(skip)
	return fmt.Sprintf("%s:%d", file, line)
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  caller(2),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   caller(2),
		Context:  make(map[string]interface{}),
	}
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation:
		h.logger.WarnContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypeIdentity:
		h.logger.WarnContext(ctx, "Identity error", err.LogFields()...)
	case ErrorTypeRemote:
		if err.HTTPStatus >= 500 {
			h.logger.ErrorContext(ctx, "Remote API error", err.LogFields()...)
		} else {
			h.logger.WarnContext(ctx, "Remote API rejected request", err.LogFields()...)
		}
	case ErrorTypeTransport, ErrorTypeStorage, ErrorTypeExternal, ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Predefined errors
var (
	ErrInvalidInput    = New(ErrorTypeValidation, "INVALID_INPUT", "Invalid input provided")
	ErrMissingIdentity = New(ErrorTypeIdentity, "MISSING_IDENTITY", MessageIdentity)
	ErrInvalidIdentity = New(ErrorTypeIdentity, "INVALID_IDENTITY", "Неверные данные пользователя")
	ErrSessionNotFound = New(ErrorTypeStorage, "SESSION_NOT_FOUND", "Session not found")
)

// Convenience functions for common errors
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

func NewTransportError(err error, operation string) *AppError {
	return Wrap(err, ErrorTypeTransport, "TRANSPORT", fmt.Sprintf("%s request failed", operation)).
		WithContext("operation", operation)
}

// NewRemoteError builds a remote failure. message is the body's message and
// may be empty.
func NewRemoteError(status int, message, operation string) *AppError {
	e := New(ErrorTypeRemote, fmt.Sprintf("HTTP_%d", status), message)
	e.HTTPStatus = status
	return e.WithContext("operation", operation)
}

func NewStorageError(err error) *AppError {
	return Wrap(err, ErrorTypeStorage, "STORAGE", "Session storage failed")
}

func NewExternalAPIError(err error, api string) *AppError {
	return Wrap(err, ErrorTypeExternal, "EXTERNAL_API", fmt.Sprintf("%s API error", api)).
		WithContext("api", api)
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal server error")
}

// TypeOf returns the ErrorType of err, or "" if err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// UserMessage is the text to show for a failed action. Remote errors keep the
// server's message verbatim when it sent one.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return MessageInternal
	}
	switch appErr.Type {
	case ErrorTypeTransport:
		return MessageTransport
	case ErrorTypeRemote:
		if appErr.Message != "" {
			return appErr.Message
		}
		return MessageRemote
	case ErrorTypeIdentity, ErrorTypeValidation:
		return appErr.Message
	default:
		return MessageInternal
	}
}
