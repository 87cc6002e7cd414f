// Package commands implements the bilog CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nwesterhausen/pyblueiris/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timestampLayout)
	fmt.Fprintf(w, "%s [client:%s] %-3s %s %s\n",
		ts, shortenID(event.ClientID), event.Direction.String(), event.Stage.String(), eventLabel(event))

	if event.RequestID != "" {
		fmt.Fprintf(w, "  Request: %s\n", event.RequestID)
	}
	if event.Host != "" {
		fmt.Fprintf(w, "  Host: %s\n", event.Host)
	}

	switch {
	case event.Request != nil:
		formatCommandDetails(w, event.Request)
	case event.Response != nil:
		formatResponseDetails(w, event.Response)
	case event.Auth != nil:
		formatAuthDetails(w, event.Auth)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// eventLabel names the event payload.
func eventLabel(event log.Event) string {
	switch {
	case event.Request != nil:
		return "Command " + event.Request.Command
	case event.Response != nil:
		return "Response " + event.Response.Command
	case event.Auth != nil:
		return "Session"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of an ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatCommandDetails(w io.Writer, cmd *log.CommandEvent) {
	fmt.Fprintf(w, "  Kind: %s\n", cmd.Kind.String())
	if cmd.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", cmd.Size)
	}
	if len(cmd.Params) > 0 {
		keys := make([]string, 0, len(cmd.Params))
		for k := range cmd.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, cmd.Params[k]))
		}
		fmt.Fprintf(w, "  Params: %s\n", strings.Join(parts, " "))
	}
}

func formatResponseDetails(w io.Writer, resp *log.ResponseEvent) {
	fmt.Fprintf(w, "  HTTP: %d\n", resp.HTTPStatus)
	if resp.Result != "" {
		fmt.Fprintf(w, "  Result: %s\n", resp.Result)
	}
	if resp.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(resp.Duration))
	}
	if resp.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", resp.Size)
	}
	if resp.Payload != nil {
		payloadJSON, err := json.Marshal(resp.Payload)
		if err == nil {
			fmt.Fprintf(w, "  Payload: %s\n", string(payloadJSON))
		}
	}
}

func formatAuthDetails(w io.Writer, a *log.AuthEvent) {
	if a.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", a.OldState, a.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", a.NewState)
	}
	if a.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", a.Reason)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Stage: %s\n", e.Stage.String())
	if e.Command != "" {
		fmt.Fprintf(w, "  Command: %s\n", e.Command)
	}
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.HTTPStatus != 0 {
		fmt.Fprintf(w, "  HTTP: %d\n", e.HTTPStatus)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseStageFlag parses a stage name (case-insensitive).
func ParseStageFlag(s string) (log.Stage, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.StageTransport, nil
	case "auth":
		return log.StageAuth, nil
	case "dispatch":
		return log.StageDispatch, nil
	default:
		return 0, fmt.Errorf("invalid stage: %s (must be transport, auth, or dispatch)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

// RunView prints every event matching filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
