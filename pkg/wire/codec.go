package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeRequest encodes a request to its JSON body.
func EncodeRequest(req *Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return data, nil
}

// DecodeEnvelope decodes a response body into an Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.Result == "" && env.Session == "" {
		return nil, fmt.Errorf("failed to decode envelope: no result marker")
	}
	return &env, nil
}

// IsObject reports whether data is a JSON object.
func IsObject(data []byte) bool {
	d := bytes.TrimSpace(data)
	return len(d) > 0 && d[0] == '{' && json.Valid(d)
}

// DecodeValue decodes arbitrary JSON into plain Go values
// (map[string]any, []any, string, float64, bool, nil).
func DecodeValue(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
