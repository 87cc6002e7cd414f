package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	bilog "github.com/nwesterhausen/pyblueiris/pkg/log"
	"github.com/nwesterhausen/pyblueiris/pkg/wire"
)

// DefaultMaxResponseSize bounds the response body read from the server.
const DefaultMaxResponseSize = 32 << 20

// ErrNoEndpoint is returned by New when no endpoint URL is configured.
var ErrNoEndpoint = errors.New("transport: endpoint URL is required")

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Transport.
type Config struct {
	// Endpoint is the full URL of the JSON API, e.g. "http://host:81/json".
	Endpoint string

	// Doer performs the HTTP exchange. Defaults to http.DefaultClient.
	Doer Doer

	// ProtocolLogger receives request/response capture events.
	ProtocolLogger bilog.Logger

	// ClientID identifies this client in capture events.
	ClientID string

	// Logger is the operational logger. Defaults to slog.Default().
	Logger *slog.Logger

	// MaxResponseSize bounds the response body (default 32 MiB).
	MaxResponseSize int64
}

// Transport posts commands to a Blue Iris server.
// It is safe for concurrent use.
type Transport struct {
	endpoint string
	host     string
	doer     Doer
	capture  bilog.Logger
	clientID string
	logger   *slog.Logger
	maxBody  int64

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a Transport.
func New(cfg Config) (*Transport, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("transport: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("transport: endpoint %q has no host", cfg.Endpoint)
	}

	t := &Transport{
		endpoint: cfg.Endpoint,
		host:     u.Host,
		doer:     cfg.Doer,
		capture:  bilog.OrNoop(cfg.ProtocolLogger),
		clientID: cfg.ClientID,
		logger:   cfg.Logger,
		maxBody:  cfg.MaxResponseSize,
		now:      time.Now,
	}
	if t.doer == nil {
		t.doer = http.DefaultClient
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.maxBody <= 0 {
		t.maxBody = DefaultMaxResponseSize
	}
	if t.clientID == "" {
		t.clientID = bilog.NewClientID()
	}
	return t, nil
}

// Endpoint returns the configured endpoint URL.
func (t *Transport) Endpoint() string {
	return t.endpoint
}

// ClientID returns the capture client ID.
func (t *Transport) ClientID() string {
	return t.clientID
}

// Send posts req and returns the raw response object.
func (t *Transport) Send(ctx context.Context, req *wire.Request) (json.RawMessage, error) {
	cmd := req.Command.Name
	body, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, &TransportError{Kind: KindEncode, Command: cmd, URL: t.endpoint, Err: err}
	}

	start := t.now()
	reqID := bilog.NewRequestID(start)
	t.capture.Log(bilog.Event{
		Timestamp: start,
		ClientID:  t.clientID,
		RequestID: reqID,
		Direction: bilog.DirectionOut,
		Stage:     bilog.StageTransport,
		Category:  bilog.CategoryMessage,
		Host:      t.host,
		Request: &bilog.CommandEvent{
			Command: cmd,
			Kind:    req.Command.Kind,
			Params:  req.Fields(),
			Size:    len(body),
		},
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, t.fail(reqID, &TransportError{Kind: KindConnection, Command: cmd, URL: t.endpoint, Err: err})
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.doer.Do(httpReq)
	if err != nil {
		// Prefer the context error so callers can errors.Is it directly.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, t.fail(reqID, &TransportError{Kind: KindConnection, Command: cmd, URL: t.endpoint, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, t.fail(reqID, &TransportError{Kind: KindConnection, Command: cmd, URL: t.endpoint, StatusCode: resp.StatusCode, Err: err})
	}
	elapsed := t.now().Sub(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, t.fail(reqID, &TransportError{Kind: KindStatus, Command: cmd, URL: t.endpoint, StatusCode: resp.StatusCode})
	}
	if int64(len(raw)) > t.maxBody {
		return nil, t.fail(reqID, &TransportError{Kind: KindDecode, Command: cmd, URL: t.endpoint, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("response exceeds %d bytes", t.maxBody)})
	}
	if !wire.IsObject(raw) {
		return nil, t.fail(reqID, &TransportError{Kind: KindDecode, Command: cmd, URL: t.endpoint, StatusCode: resp.StatusCode,
			Err: errors.New("response is not a JSON object")})
	}

	t.captureResponse(reqID, cmd, resp.StatusCode, raw, elapsed)
	t.logger.Debug("command sent", "cmd", cmd, "status", resp.StatusCode, "duration", elapsed)
	return json.RawMessage(raw), nil
}

func (t *Transport) captureResponse(reqID, cmd string, status int, raw []byte, elapsed time.Duration) {
	ev := &bilog.ResponseEvent{
		Command:    cmd,
		HTTPStatus: status,
		Size:       len(raw),
		Duration:   elapsed,
	}
	if env, err := wire.DecodeEnvelope(raw); err == nil {
		ev.Result = env.Result
		if env.HasData() {
			if v, err := wire.DecodeValue(env.Data); err == nil {
				ev.Payload = v
			}
		}
	}
	t.capture.Log(bilog.Event{
		Timestamp: t.now(),
		ClientID:  t.clientID,
		RequestID: reqID,
		Direction: bilog.DirectionIn,
		Stage:     bilog.StageTransport,
		Category:  bilog.CategoryMessage,
		Host:      t.host,
		Response:  ev,
	})
}

func (t *Transport) fail(reqID string, err *TransportError) error {
	t.capture.Log(bilog.Event{
		Timestamp: t.now(),
		ClientID:  t.clientID,
		RequestID: reqID,
		Direction: bilog.DirectionIn,
		Stage:     bilog.StageTransport,
		Category:  bilog.CategoryError,
		Host:      t.host,
		Error: &bilog.ErrorEventData{
			Stage:      bilog.StageTransport,
			Command:    err.Command,
			Message:    err.Error(),
			HTTPStatus: err.StatusCode,
		},
	})
	t.logger.Debug("command failed", "cmd", err.Command, "kind", err.Kind.String(), "err", err)
	return err
}
