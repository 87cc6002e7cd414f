package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see commands in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("client_id", event.ClientID),
		slog.String("direction", event.Direction.String()),
		slog.String("stage", event.Stage.String()),
		slog.String("category", event.Category.String()),
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("req_id", event.RequestID))
	}
	if event.Host != "" {
		attrs = append(attrs, slog.String("host", event.Host))
	}

	switch {
	case event.Request != nil:
		attrs = append(attrs,
			slog.String("cmd", event.Request.Command),
			slog.String("kind", event.Request.Kind.String()),
			slog.Any("params", event.Request.Params),
		)
	case event.Response != nil:
		attrs = append(attrs,
			slog.String("cmd", event.Response.Command),
			slog.Int("http_status", event.Response.HTTPStatus),
			slog.String("result", event.Response.Result),
			slog.Int("size", event.Response.Size),
			slog.Duration("duration", event.Response.Duration),
		)
	case event.Auth != nil:
		attrs = append(attrs,
			slog.String("old_state", event.Auth.OldState),
			slog.String("new_state", event.Auth.NewState),
		)
		if event.Auth.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Auth.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_stage", event.Error.Stage.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Command != "" {
			attrs = append(attrs, slog.String("cmd", event.Error.Command))
		}
		if event.Error.HTTPStatus != 0 {
			attrs = append(attrs, slog.Int("http_status", event.Error.HTTPStatus))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
