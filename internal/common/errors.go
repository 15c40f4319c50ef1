package common

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of an extraction failure.
// It travels alongside the human-readable message so callers never have to
// string-match errors.
type ErrorKind string

const (
	KindUnsupportedFormat      ErrorKind = "UNSUPPORTED_FORMAT"
	KindUnreadableDocument     ErrorKind = "UNREADABLE_DOCUMENT"
	KindTransportError         ErrorKind = "TRANSPORT_ERROR"
	KindMalformedModelResponse ErrorKind = "MALFORMED_MODEL_RESPONSE"
	KindNotFound               ErrorKind = "NOT_FOUND"
)

// ExtractionError is the application error type for the pipeline.
type ExtractionError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Common sentinel errors.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors, one per kind.

func NewUnsupportedFormat(message string) *ExtractionError {
	return &ExtractionError{Kind: KindUnsupportedFormat, Message: message}
}

func NewUnreadableDocument(message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: KindUnreadableDocument, Message: message, Cause: cause}
}

func NewTransportError(message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: KindTransportError, Message: message, Cause: cause}
}

func NewMalformedModelResponse(message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: KindMalformedModelResponse, Message: message, Cause: cause}
}

func NewNotFound(message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: KindNotFound, Message: message, Cause: cause}
}

// KindOf classifies an arbitrary error. Errors that are not ExtractionErrors
// are reported as transport failures, the only kind that can arise outside
// the pipeline's own checks.
func KindOf(err error) ErrorKind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindTransportError
}

// MessageOf returns the caller-facing message for an error: the bare Message
// of an ExtractionError, or Error() for anything else.
func MessageOf(err error) string {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Message
	}
	return err.Error()
}
