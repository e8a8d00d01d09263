package graphql

import "fmt"

// SanitizedError is an error that knows how to describe itself to a client
// without leaking internal detail. Errors that don't implement it are
// reported to the client as a generic message.
type SanitizedError interface {
	error
	SanitizedError() string
}

// SafeError is an error whose message is safe to return to a client
// verbatim.
type SafeError struct {
	message string
	cause   error
}

// ClientError is a SafeError raised because of a malformed request (a bad
// selection, unknown field, or similar), as opposed to an internal fault.
type ClientError SafeError

func (e ClientError) Error() string          { return e.message }
func (e ClientError) SanitizedError() string { return e.message }
func (e ClientError) Unwrap() error          { return e.cause }

func (e SafeError) Error() string          { return e.message }
func (e SafeError) SanitizedError() string { return e.message }
func (e SafeError) Unwrap() error          { return e.cause }

// NewClientError builds a ClientError from a format string.
func NewClientError(format string, a ...interface{}) error {
	return ClientError{message: fmt.Sprintf(format, a...)}
}

// NewSafeError builds a SafeError from a format string.
func NewSafeError(format string, a ...interface{}) error {
	return SafeError{message: fmt.Sprintf(format, a...)}
}

// WrapAsSafeError wraps cause with a safe, client-facing message while
// retaining the original error for Unwrap/errors.Is callers.
func WrapAsSafeError(cause error, format string, a ...interface{}) error {
	return SafeError{message: fmt.Sprintf(format, a...), cause: cause}
}

// SanitizeError returns the client-facing message for err, falling back to
// a generic message if err doesn't implement SanitizedError.
func SanitizeError(err error) string {
	if sanitized, ok := err.(SanitizedError); ok {
		return sanitized.SanitizedError()
	}
	return "internal server error"
}

// pathError nests a field path onto an error as execution descends
// through a selection set, matching the "errors have a path" part of the
// GraphQL response format.
type pathError struct {
	inner error
	path  []string
}

// nestPathError prepends key to err's path, leaving SanitizedErrors (which
// are meant for direct display) untouched.
func nestPathError(key string, err error) error {
	if se, ok := err.(SanitizedError); ok {
		return se
	}
	if pe, ok := err.(*pathError); ok {
		return &pathError{inner: pe.inner, path: append(append([]string{}, pe.path...), key)}
	}
	return &pathError{inner: err, path: []string{key}}
}

// ErrorCause unwraps a pathError to the underlying error, if any.
func ErrorCause(err error) error {
	if pe, ok := err.(*pathError); ok {
		return pe.inner
	}
	return err
}

// Path returns the reversed field path recorded on err, if it is a
// pathError.
func Path(err error) []string {
	pe, ok := err.(*pathError)
	if !ok {
		return nil
	}
	path := make([]string, len(pe.path))
	for i, p := range pe.path {
		path[len(pe.path)-1-i] = p
	}
	return path
}

func (pe *pathError) Error() string {
	s := ""
	path := Path(pe)
	for i, p := range path {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s + ": " + pe.inner.Error()
}

func (pe *pathError) Unwrap() error { return pe.inner }
