package wire

import "strings"

// Status is the classified outcome of a response envelope.
type Status uint8

const (
	// StatusSuccess indicates the command completed.
	StatusSuccess Status = 0

	// StatusFail indicates the server rejected the command.
	StatusFail Status = 1

	// StatusAuthExpired indicates the session or login response is no longer
	// accepted and a new login is required.
	StatusAuthExpired Status = 2

	// StatusUnknown indicates an unrecognized result marker.
	StatusUnknown Status = 3
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFail:
		return "FAIL"
	case StatusAuthExpired:
		return "AUTH_EXPIRED"
	case StatusUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsError returns true if the status indicates an error.
func (s Status) IsError() bool {
	return s != StatusSuccess
}

// ExpiryClassifier decides whether a failed envelope means the session has
// expired.
type ExpiryClassifier func(*Envelope) bool

// expiryMarkers are lower-cased fragments of the reasons servers send when a
// session is no longer valid.
var expiryMarkers = []string{
	"invalid session",
	"missing session",
	"session expired",
	"session not found",
	"invalid response",
	"missing response",
	"not logged in",
	"login required",
}

// DefaultExpiryClassifier reports a failed envelope as expired when its
// reason matches one of the known session failure messages.
func DefaultExpiryClassifier(e *Envelope) bool {
	if e == nil || e.Result != ResultFail {
		return false
	}
	reason := strings.ToLower(e.Reason())
	if reason == "" {
		return false
	}
	for _, m := range expiryMarkers {
		if strings.Contains(reason, m) {
			return true
		}
	}
	return false
}
