package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Token is the authentication material attached to every command once a
// login handshake has completed.
type Token struct {
	// Session is the server-issued session identifier.
	Session string

	// Response is the login response hash computed from the credentials and
	// the session challenge.
	Response string
}

// IsZero reports whether the token carries no session.
func (t Token) IsZero() bool {
	return t.Session == ""
}

// Request is a command plus the token it is sent with.
type Request struct {
	Command Command
	Token   Token
}

// NewRequest creates a request for cmd authenticated with tok.
func NewRequest(cmd Command, tok Token) *Request {
	return &Request{Command: cmd, Token: tok}
}

// MarshalJSON encodes the request as one JSON object. The reserved keys come
// first, parameters follow in their declared order.
func (r *Request) MarshalJSON() ([]byte, error) {
	if err := r.Command.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, KeyCommand, r.Command.Name, true); err != nil {
		return nil, err
	}
	if r.Token.Session != "" {
		if err := writeMember(&buf, KeySession, r.Token.Session, false); err != nil {
			return nil, err
		}
	}
	if r.Token.Response != "" {
		if err := writeMember(&buf, KeyResponse, r.Token.Response, false); err != nil {
			return nil, err
		}
	}
	for _, p := range r.Command.Params {
		if err := writeMember(&buf, p.Key, p.Value, false); err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Fields returns the request as a plain map, with the response hash
// redacted. Used for protocol capture.
func (r *Request) Fields() map[string]any {
	fields := make(map[string]any, len(r.Command.Params)+3)
	fields[KeyCommand] = r.Command.Name
	if r.Token.Session != "" {
		fields[KeySession] = r.Token.Session
	}
	if r.Token.Response != "" {
		fields[KeyResponse] = "<redacted>"
	}
	for _, p := range r.Command.Params {
		fields[p.Key] = p.Value
	}
	return fields
}

func writeMember(buf *bytes.Buffer, key string, value any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// Result markers used by the server.
const (
	ResultSuccess = "success"
	ResultFail    = "fail"
)

// Envelope is the outer structure of every response.
type Envelope struct {
	Result  string          `json:"result"`
	Session string          `json:"session,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HasData reports whether the envelope carries a non-null payload.
func (e *Envelope) HasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// Reason returns the failure reason reported in data.reason, if any.
func (e *Envelope) Reason() string {
	if !e.HasData() {
		return ""
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(e.Data, &body); err != nil {
		return ""
	}
	return body.Reason
}

// Status classifies the envelope. A nil classifier uses
// DefaultExpiryClassifier.
func (e *Envelope) Status(classify ExpiryClassifier) Status {
	switch e.Result {
	case ResultSuccess:
		return StatusSuccess
	case ResultFail:
		if classify == nil {
			classify = DefaultExpiryClassifier
		}
		if classify(e) {
			return StatusAuthExpired
		}
		return StatusFail
	default:
		return StatusUnknown
	}
}
