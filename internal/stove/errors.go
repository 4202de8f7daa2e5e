package stove

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// Kind classifies a client failure. Every error returned by this package
// is exactly one of the three kinds, so callers can switch on it
// exhaustively.
type Kind int

const (
	// KindTransport covers network, HTTP and authentication failures:
	// connection refused, timeouts, DNS errors, TLS problems, 401/403 and
	// any other non-2xx status. Transport failures are the only retryable
	// kind.
	KindTransport Kind = iota

	// KindProtocol means the response body could not be interpreted as the
	// expected key=value text format at all (empty, undecodable, or no
	// parseable line), or the caller's input was invalid before any request
	// was made. Never retried.
	KindProtocol

	// KindOperation means the device answered coherently but reported a
	// non-zero error code for the requested operation. Never retried.
	KindOperation
)

// String returns a human-readable name for the error kind
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindProtocol:
		return "protocol error"
	case KindOperation:
		return "operation error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Error is the error type returned by Client. Kind-specific payload:
// Status carries the HTTP status for transport errors where one was
// received, Code carries the device error code for operation errors.
type Error struct {
	Kind    Kind
	Message string
	Status  int   // HTTP status code, transport errors only (0 if none)
	Code    int   // device error code, operation errors only
	Err     error // underlying cause, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport-kind error. status may be 0 when
// the failure happened before an HTTP status was received.
func NewTransportError(message string, status int, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, Status: status, Err: err}
}

// NewProtocolError creates a protocol-kind error.
func NewProtocolError(message string, err error) *Error {
	return &Error{Kind: KindProtocol, Message: message, Err: err}
}

// NewOperationError creates an operation-kind error carrying the device
// error code verbatim.
func NewOperationError(code int, message string) *Error {
	return &Error{Kind: KindOperation, Message: message, Code: code}
}

// classifyTransport converts a raw HTTP client error into a transport
// error with a message describing the network-level cause.
func classifyTransport(err error) *Error {
	switch {
	case os.IsTimeout(err):
		return NewTransportError("request timed out", 0, err)
	case isDNSError(err):
		return NewTransportError("DNS resolution failed", 0, err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return NewTransportError("device refused connection", 0, err)
	case errors.Is(err, syscall.EHOSTUNREACH):
		return NewTransportError("host unreachable", 0, err)
	case errors.Is(err, syscall.ENETUNREACH):
		return NewTransportError("network unreachable", 0, err)
	default:
		return NewTransportError("request failed", 0, err)
	}
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// IsTransport reports whether err is a transport-kind error
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTransport
}

// IsProtocol reports whether err is a protocol-kind error
func IsProtocol(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindProtocol
}

// IsOperation reports whether err is an operation-kind error
func IsOperation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindOperation
}

// OperationCode extracts the device error code from an operation-kind
// error. Returns 0, false for any other error.
func OperationCode(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindOperation {
		return e.Code, true
	}
	return 0, false
}
