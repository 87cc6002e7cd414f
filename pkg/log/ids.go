package log

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewClientID returns a fresh client instance ID.
func NewClientID() string {
	return uuid.NewString()
}

// NewRequestID returns a time-ordered request ID for the given instant.
func NewRequestID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// RequestTime extracts the timestamp embedded in a request ID.
func RequestTime(id string) (time.Time, bool) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}
