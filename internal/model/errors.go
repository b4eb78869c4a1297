package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the HTTP layer can map them to status codes
type ErrorKind string

const (
	KindValidation ErrorKind = "validation" // Bad input (4xx)
	KindExtraction ErrorKind = "extraction" // PDF could not be read
	KindUpstream   ErrorKind = "upstream"   // Model or search call failed
	KindDecode     ErrorKind = "decode"     // Model output could not be decoded
)

// Error is a classified error
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err (or anything it wraps) is a classified error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
