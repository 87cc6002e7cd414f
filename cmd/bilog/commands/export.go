package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nwesterhausen/pyblueiris/pkg/log"
)

// RunExport writes the events matching filter as JSON lines or CSV.
// An empty output writes to stdout.
func RunExport(path, format, output string, filter log.Filter) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

var csvHeader = []string{
	"timestamp", "client_id", "request_id", "direction", "stage", "category",
	"host", "type", "command", "http_status", "result", "duration_ms", "message",
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var eventType, status, result, duration, message string
		switch {
		case event.Request != nil:
			eventType = "command"
		case event.Response != nil:
			eventType = "response"
			status = strconv.Itoa(event.Response.HTTPStatus)
			result = event.Response.Result
			duration = strconv.FormatFloat(float64(event.Response.Duration.Microseconds())/1000, 'f', 3, 64)
		case event.Auth != nil:
			eventType = "session"
			result = event.Auth.NewState
			message = event.Auth.Reason
		case event.Error != nil:
			eventType = "error"
			if event.Error.HTTPStatus != 0 {
				status = strconv.Itoa(event.Error.HTTPStatus)
			}
			message = event.Error.Message
		default:
			eventType = "unknown"
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampLayout),
			event.ClientID,
			event.RequestID,
			event.Direction.String(),
			event.Stage.String(),
			event.Category.String(),
			event.Host,
			eventType,
			event.CommandName(),
			status,
			result,
			duration,
			message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
