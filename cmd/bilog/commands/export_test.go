package commands

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nwesterhausen/pyblueiris/pkg/log"
)

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleSession())
	output := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", output, log.Filter{}); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	if lines[1]["ClientID"] != "c0ffee00-1111-2222-3333-444455556666" {
		t.Errorf("unexpected ClientID: %v", lines[1]["ClientID"])
	}
	resp, ok := lines[2]["Response"].(map[string]any)
	if !ok {
		t.Fatalf("expected Response object, got %v", lines[2]["Response"])
	}
	payload, ok := resp["Payload"].(map[string]any)
	if !ok || payload["signal"] != "1" {
		t.Errorf("unexpected payload: %v", resp["Payload"])
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, sampleSession())
	output := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", output, log.Filter{}); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header + 6 rows, got %d", len(records))
	}
	if records[0][0] != "timestamp" || len(records[0]) != len(csvHeader) {
		t.Errorf("unexpected header: %v", records[0])
	}

	status := records[3]
	if status[7] != "response" || status[8] != "status" || status[9] != "200" || status[10] != "success" || status[11] != "20.000" {
		t.Errorf("unexpected status row: %v", status)
	}
	errRow := records[6]
	if errRow[7] != "error" || errRow[8] != "camconfig" || errRow[12] != "camera not found" {
		t.Errorf("unexpected error row: %v", errRow)
	}
}

func TestExportFiltered(t *testing.T) {
	path := createTestLogFile(t, sampleSession())
	output := filepath.Join(t.TempDir(), "out.csv")

	stage := log.StageAuth
	if err := RunExport(path, "csv", output, log.Filter{Stage: &stage}); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 2 || records[1][7] != "session" || records[1][10] != "authenticated" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, sampleSession())
	if err := RunExport(path, "xml", "", log.Filter{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
