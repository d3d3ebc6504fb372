package capture

import (
	"errors"
	"fmt"
)

// Kind classifies a capture failure.
type Kind string

const (
	KindInvalidInput Kind = "INVALID_INPUT"
	KindNavigation   Kind = "NAVIGATION_FAILED"
	KindResource     Kind = "BROWSER_FAILED"
	KindEncoding     Kind = "ENCODING_FAILED"
)

// Error is the failure half of a capture result. Message is shown to the
// caller as is.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped original error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClientError reports whether the failure was caused by the request itself.
func (e *Error) ClientError() bool {
	return e.Kind == KindInvalidInput
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// wrapError builds an Error that surfaces the underlying diagnostic text.
func wrapError(kind Kind, err error) *Error {
	return newError(kind, err.Error(), err)
}

// AsError converts any error returned by Service.Capture into an *Error.
// Foreign errors are classified as resource failures.
func AsError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return wrapError(KindResource, err)
}
