package log

import (
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// Event represents a captured protocol event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ClientID identifies the client instance (UUID).
	ClientID string `cbor:"2,keyasint"`

	// RequestID correlates a request with its response (ULID).
	RequestID string `cbor:"3,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"4,keyasint"`

	// Stage where the event was captured.
	Stage Stage `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// Host is the server address.
	Host string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Request  *CommandEvent   `cbor:"10,keyasint,omitempty"`
	Response *ResponseEvent  `cbor:"11,keyasint,omitempty"`
	Auth     *AuthEvent      `cbor:"12,keyasint,omitempty"`
	Error    *ErrorEventData `cbor:"13,keyasint,omitempty"`
}

// CommandName returns the command the event belongs to, if any.
func (e Event) CommandName() string {
	switch {
	case e.Request != nil:
		return e.Request.Command
	case e.Response != nil:
		return e.Response.Command
	case e.Error != nil:
		return e.Error.Command
	default:
		return ""
	}
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates a server response.
	DirectionIn Direction = 0
	// DirectionOut indicates a client request.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Stage indicates which client component captured the event.
type Stage uint8

const (
	// StageTransport is the HTTP exchange.
	StageTransport Stage = 0
	// StageAuth is the login handshake.
	StageAuth Stage = 1
	// StageDispatch is command dispatch and normalization.
	StageDispatch Stage = 2
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageTransport:
		return "TRANSPORT"
	case StageAuth:
		return "AUTH"
	case StageDispatch:
		return "DISPATCH"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a request or response.
	CategoryMessage Category = 0
	// CategoryState indicates a session state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CommandEvent captures an outgoing command.
type CommandEvent struct {
	// Command is the wire command name.
	Command string `cbor:"1,keyasint"`

	// Kind is the command classification.
	Kind wire.Kind `cbor:"2,keyasint"`

	// Params holds the request fields with the response hash redacted.
	Params map[string]any `cbor:"3,keyasint,omitempty"`

	// Size is the encoded request size in bytes.
	Size int `cbor:"4,keyasint,omitempty"`
}

// ResponseEvent captures a decoded server response.
type ResponseEvent struct {
	// Command is the command this response answers.
	Command string `cbor:"1,keyasint"`

	// HTTPStatus is the HTTP status code.
	HTTPStatus int `cbor:"2,keyasint"`

	// Result is the envelope result marker ("success" or "fail").
	Result string `cbor:"3,keyasint,omitempty"`

	// Payload is the decoded data member.
	Payload any `cbor:"4,keyasint,omitempty"`

	// Size is the response body size in bytes.
	Size int `cbor:"5,keyasint,omitempty"`

	// Duration is the round-trip time. Stored as nanoseconds.
	Duration time.Duration `cbor:"6,keyasint,omitempty"`
}

// AuthEvent captures session lifecycle changes.
type AuthEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any stage.
type ErrorEventData struct {
	// Stage where the error occurred.
	Stage Stage `cbor:"1,keyasint"`

	// Command being executed, if any.
	Command string `cbor:"2,keyasint,omitempty"`

	// Message is the error message.
	Message string `cbor:"3,keyasint"`

	// HTTPStatus is set for non-2xx responses.
	HTTPStatus int `cbor:"4,keyasint,omitempty"`
}
