package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type slot struct {
	StartTime string `json:"start_time"`
}

func TestPrinter_YAMLUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Stdout: &buf}
	if err := p.Print(slot{StartTime: "morning"}); err != nil {
		t.Fatalf("Print error: %v", err)
	}
	if !strings.Contains(buf.String(), "start_time: morning") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{JSON: true, Stdout: &buf}
	if err := p.Print(map[string]any{"name": "test"}); err != nil {
		t.Fatalf("Print error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got["name"] != "test" {
		t.Errorf("name = %v", got["name"])
	}
}

func TestPrinter_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	p := &Printer{JSON: true, Path: path}
	if err := p.Print(map[string]int{"n": 1}); err != nil {
		t.Fatalf("Print error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"n": 1`) {
		t.Errorf("file content = %s", data)
	}
}
