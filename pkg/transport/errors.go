package transport

import (
	"fmt"
)

// ErrorKind classifies transport failures.
type ErrorKind uint8

const (
	// KindConnection covers dial, TLS, timeout and cancellation failures.
	KindConnection ErrorKind = iota

	// KindStatus is a non-2xx HTTP response.
	KindStatus

	// KindDecode is a response body that is not a JSON object.
	KindDecode

	// KindEncode is a request that could not be encoded.
	KindEncode
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	default:
		return "unknown"
	}
}

// TransportError reports a failed exchange with the server.
type TransportError struct {
	Kind       ErrorKind
	Command    string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("transport %s: %s: HTTP %d", e.Kind, e.Command, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("transport %s: %s: %v", e.Kind, e.Command, e.Err)
	default:
		return fmt.Sprintf("transport %s: %s", e.Kind, e.Command)
	}
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
