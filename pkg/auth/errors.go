package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by AuthenticationError.
var (
	ErrMalformedChallenge = errors.New("malformed login challenge")
	ErrRejected           = errors.New("credentials rejected")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Reason classifies an authentication failure.
type Reason uint8

const (
	// ReasonMalformedChallenge means the server did not issue a usable session.
	ReasonMalformedChallenge Reason = iota

	// ReasonRejected means the server refused the credentials.
	ReasonRejected

	// ReasonExpired means the session expired again right after renewal.
	ReasonExpired
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonMalformedChallenge:
		return "malformed challenge"
	case ReasonRejected:
		return "rejected"
	case ReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// AuthenticationError reports a failed or unusable login.
type AuthenticationError struct {
	Reason Reason

	// Detail is the server-provided reason, if any.
	Detail string

	Err error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	msg := "authentication failed: " + e.Reason.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether retrying with the same credentials is pointless.
func (e *AuthenticationError) IsFatal() bool {
	return e.Reason == ReasonRejected
}
