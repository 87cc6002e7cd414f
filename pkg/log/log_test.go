package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+FileExt)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{Direction(9).String(), "UNKNOWN"},
		{StageTransport.String(), "TRANSPORT"},
		{StageAuth.String(), "AUTH"},
		{StageDispatch.String(), "DISPATCH"},
		{Stage(9).String(), "UNKNOWN"},
		{CategoryMessage.String(), "MESSAGE"},
		{CategoryState.String(), "STATE"},
		{CategoryError.String(), "ERROR"},
		{Category(9).String(), "UNKNOWN"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestEventRoundTripKeepsPayload(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.UTC)
	event := Event{
		Timestamp: now,
		ClientID:  "client-1",
		RequestID: NewRequestID(now),
		Direction: DirectionIn,
		Stage:     StageTransport,
		Category:  CategoryMessage,
		Response: &ResponseEvent{
			Command:    "status",
			HTTPStatus: 200,
			Result:     wire.ResultSuccess,
			Payload:    map[string]any{"signal": "1", "nested": map[string]any{"a": true}},
			Duration:   15 * time.Millisecond,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(now) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, now)
	}
	if decoded.Response == nil {
		t.Fatal("Response is nil")
	}
	if decoded.Response.Duration != event.Response.Duration {
		t.Errorf("Duration: got %v, want %v", decoded.Response.Duration, event.Response.Duration)
	}

	payload, ok := decoded.Response.Payload.(map[string]any)
	if !ok {
		t.Fatalf("Payload: got %T, want map[string]any", decoded.Response.Payload)
	}
	if _, err := json.Marshal(payload); err != nil {
		t.Errorf("decoded payload not JSON-encodable: %v", err)
	}
	if nested, ok := payload["nested"].(map[string]any); !ok || nested["a"] != true {
		t.Errorf("nested payload: got %v", payload["nested"])
	}
}

func TestEventCommandName(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"request", Event{Request: &CommandEvent{Command: "camlist"}}, "camlist"},
		{"response", Event{Response: &ResponseEvent{Command: "status"}}, "status"},
		{"error", Event{Error: &ErrorEventData{Command: "log"}}, "log"},
		{"auth", Event{Auth: &AuthEvent{NewState: "VALID"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.CommandName(); got != tt.want {
				t.Errorf("CommandName: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestIDIsTimeOrdered(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	a, b := NewRequestID(t1), NewRequestID(t2)
	if a >= b {
		t.Errorf("request IDs not ordered: %s >= %s", a, b)
	}

	got, ok := RequestTime(a)
	if !ok || !got.Equal(t1) {
		t.Errorf("RequestTime: got %v, %v; want %v", got, ok, t1)
	}
	if _, ok := RequestTime("not-a-ulid"); ok {
		t.Error("RequestTime accepted an invalid ID")
	}
	if NewClientID() == NewClientID() {
		t.Error("client IDs collide")
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := createTestLogFile(t, []Event{{Timestamp: time.Now(), ClientID: "c1"}})

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger second open failed: %v", err)
	}
	logger.Log(Event{Timestamp: time.Now(), ClientID: "c2"})
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	events := readAll(t, reader)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].ClientID != "c2" {
		t.Errorf("second ClientID: got %q, want %q", events[1].ClientID, "c2")
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c"+FileExt)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	logger.Log(Event{ClientID: "after-close"})
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("file size after closed Log: got %d, want 0", info.Size())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conc"+FileExt)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(Event{Timestamp: time.Now(), Request: &CommandEvent{Command: "status"}})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if got := len(readAll(t, reader)); got != 200 {
		t.Errorf("got %d events, want 200", got)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, ClientID: "a", RequestID: "r1", Direction: DirectionOut, Stage: StageTransport, Category: CategoryMessage, Request: &CommandEvent{Command: "status"}},
		{Timestamp: base.Add(time.Second), ClientID: "a", RequestID: "r1", Direction: DirectionIn, Stage: StageTransport, Category: CategoryMessage, Response: &ResponseEvent{Command: "status"}},
		{Timestamp: base.Add(2 * time.Second), ClientID: "b", Direction: DirectionIn, Stage: StageAuth, Category: CategoryState, Auth: &AuthEvent{NewState: "VALID"}},
		{Timestamp: base.Add(3 * time.Second), ClientID: "b", RequestID: "r2", Direction: DirectionIn, Stage: StageDispatch, Category: CategoryError, Error: &ErrorEventData{Command: "camlist", Message: "boom"}},
	}
	path := createTestLogFile(t, events)

	in := DirectionIn
	auth := StageAuth
	errCat := CategoryError
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"none", Filter{}, 4},
		{"client", Filter{ClientID: "a"}, 2},
		{"request", Filter{RequestID: "r1"}, 2},
		{"command", Filter{Command: "status"}, 2},
		{"direction", Filter{Direction: &in}, 3},
		{"stage", Filter{Stage: &auth}, 1},
		{"category", Filter{Category: &errCat}, 1},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{ClientID: "b", Command: "camlist"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing"+FileExt)); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSlogAdapterLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{
		Timestamp: time.Now(),
		ClientID:  "client-9",
		RequestID: "req-1",
		Direction: DirectionOut,
		Stage:     StageTransport,
		Category:  CategoryMessage,
		Host:      "192.168.1.5",
		Request: &CommandEvent{
			Command: "camconfig",
			Kind:    wire.KindMutating,
			Params:  map[string]any{"camera": "drive"},
		},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	want := map[string]any{
		"msg":       "protocol",
		"client_id": "client-9",
		"req_id":    "req-1",
		"direction": "OUT",
		"stage":     "TRANSPORT",
		"host":      "192.168.1.5",
		"cmd":       "camconfig",
		"kind":      "MUTATING",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %v", k, entry[k], v)
		}
	}
}

func TestSlogAdapterLogsError(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Stage: StageTransport, Command: "status", Message: "bad gateway", HTTPStatus: 502},
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["error_msg"] != "bad gateway" {
		t.Errorf("error_msg: got %v", entry["error_msg"])
	}
	if entry["http_status"] != float64(502) {
		t.Errorf("http_status: got %v, want 502", entry["http_status"])
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	NewSlogAdapter(slog.New(handler)).Log(Event{ClientID: "x"})

	if buf.Len() != 0 {
		t.Errorf("debug event written at info level: %s", buf.String())
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, nil, b)

	if len(m) != 2 {
		t.Errorf("len: got %d, want 2", len(m))
	}

	m.Log(Event{ClientID: "x"})
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events: got %d and %d, want 1 each", len(a.events), len(b.events))
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	r := &recordingLogger{}
	if OrNoop(r) != Logger(r) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
	NoopLogger{}.Log(Event{})
}

func TestFileLoggerCountsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count"+FileExt)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if logger.Path() != path {
		t.Errorf("Path: got %q, want %q", logger.Path(), path)
	}

	for i := 0; i < 3; i++ {
		logger.Log(Event{Timestamp: time.Now(), Request: &CommandEvent{Command: "camlist"}})
	}
	if got := logger.Written(); got != 3 {
		t.Errorf("Written: got %d, want 3", got)
	}
	if err := logger.Err(); err != nil {
		t.Errorf("Err: got %v, want nil", err)
	}
	logger.Close()
}

func TestReadAllAndEvents(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{ClientID: "a", Request: &CommandEvent{Command: "status"}},
		{ClientID: "a", Response: &ResponseEvent{Command: "status", Result: "success"}},
		{ClientID: "b", Request: &CommandEvent{Command: "camlist"}},
	})

	events, err := ReadAll(path, Filter{ClientID: "a"})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ReadAll: got %d events, want 2", len(events))
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var names []string
	for event, err := range reader.Events() {
		if err != nil {
			t.Fatalf("Events yielded error: %v", err)
		}
		names = append(names, event.CommandName())
	}
	if strings.Join(names, ",") != "status,status,camlist" {
		t.Errorf("Events: got %v", names)
	}
}

func TestReaderStopsAtTruncatedRecord(t *testing.T) {
	path := createTestLogFile(t, []Event{{ClientID: "whole"}})

	partial, err := EncodeEvent(Event{ClientID: "cut-short", Request: &CommandEvent{Command: "status"}})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := f.Write(partial[:len(partial)/2]); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	f.Close()

	events, err := ReadAll(path, Filter{})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 1 || events[0].ClientID != "whole" {
		t.Errorf("got %+v, want only the complete record", events)
	}
}
