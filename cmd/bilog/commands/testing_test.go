package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/log"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+log.FileExt)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// sampleSession is a login followed by one status exchange and one failed
// camconfig.
func sampleSession() []log.Event {
	const client = "c0ffee00-1111-2222-3333-444455556666"
	return []log.Event{
		{
			Timestamp: testTime,
			ClientID:  client,
			Direction: log.DirectionOut,
			Stage:     log.StageAuth,
			Category:  log.CategoryState,
			Auth:      &log.AuthEvent{OldState: "unauthenticated", NewState: "authenticated"},
		},
		{
			Timestamp: testTime.Add(time.Second),
			ClientID:  client,
			RequestID: "01HRQ0000000000000000000AA",
			Direction: log.DirectionOut,
			Stage:     log.StageTransport,
			Category:  log.CategoryMessage,
			Host:      "bi.local:81",
			Request: &log.CommandEvent{
				Command: "status",
				Kind:    wire.KindQuery,
				Size:    64,
			},
		},
		{
			Timestamp: testTime.Add(time.Second + 20*time.Millisecond),
			ClientID:  client,
			RequestID: "01HRQ0000000000000000000AA",
			Direction: log.DirectionIn,
			Stage:     log.StageTransport,
			Category:  log.CategoryMessage,
			Host:      "bi.local:81",
			Response: &log.ResponseEvent{
				Command:    "status",
				HTTPStatus: 200,
				Result:     "success",
				Payload:    map[string]any{"signal": "1"},
				Size:       120,
				Duration:   20 * time.Millisecond,
			},
		},
		{
			Timestamp: testTime.Add(2 * time.Second),
			ClientID:  client,
			RequestID: "01HRQ0000000000000000000BB",
			Direction: log.DirectionOut,
			Stage:     log.StageTransport,
			Category:  log.CategoryMessage,
			Request: &log.CommandEvent{
				Command: "camconfig",
				Kind:    wire.KindMutating,
				Params:  map[string]any{"camera": "drive", "pause": 1},
			},
		},
		{
			Timestamp: testTime.Add(2*time.Second + 40*time.Millisecond),
			ClientID:  client,
			RequestID: "01HRQ0000000000000000000BB",
			Direction: log.DirectionIn,
			Stage:     log.StageTransport,
			Category:  log.CategoryMessage,
			Response: &log.ResponseEvent{
				Command:    "camconfig",
				HTTPStatus: 200,
				Result:     "fail",
				Duration:   40 * time.Millisecond,
			},
		},
		{
			Timestamp: testTime.Add(2*time.Second + 41*time.Millisecond),
			ClientID:  client,
			RequestID: "01HRQ0000000000000000000BB",
			Direction: log.DirectionIn,
			Stage:     log.StageDispatch,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Stage:   log.StageDispatch,
				Command: "camconfig",
				Message: "camera not found",
			},
		},
	}
}
