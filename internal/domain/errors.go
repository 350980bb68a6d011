package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline errors by what the caller can do about them.
type ErrorKind string

const (
	// KindUnsupportedFormat means the declared document format is not recognized.
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	// KindParseFailure means the bytes could not be parsed as the declared format.
	KindParseFailure ErrorKind = "parse_failure"
	// KindGenerationUnavailable means the completion service could not be reached.
	KindGenerationUnavailable ErrorKind = "generation_unavailable"
	// KindGenerationMalformed means the completion service responded but no pairs could be parsed.
	KindGenerationMalformed ErrorKind = "generation_malformed"
	// KindExportFormatInvalid means the requested export format is not supported.
	KindExportFormatInvalid ErrorKind = "export_format_invalid"
	// KindConfig means configuration could not be loaded or validated.
	KindConfig ErrorKind = "config"
	// KindStorage means a persistence operation failed.
	KindStorage ErrorKind = "storage"
)

// DomainError carries an error kind alongside a message and an optional cause.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error.
func NewError(kind ErrorKind, message string, err error) *DomainError {
	return &DomainError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func UnsupportedFormatError(message string) *DomainError {
	return NewError(KindUnsupportedFormat, message, nil)
}

func ParseFailureError(message string, err error) *DomainError {
	return NewError(KindParseFailure, message, err)
}

func GenerationUnavailableError(message string, err error) *DomainError {
	return NewError(KindGenerationUnavailable, message, err)
}

func GenerationMalformedError(message string, err error) *DomainError {
	return NewError(KindGenerationMalformed, message, err)
}

func ExportFormatInvalidError(message string) *DomainError {
	return NewError(KindExportFormatInvalid, message, nil)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(KindConfig, message, err)
}

func StorageError(message string, err error) *DomainError {
	return NewError(KindStorage, message, err)
}

// IsKind reports whether err is (or wraps) a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}
