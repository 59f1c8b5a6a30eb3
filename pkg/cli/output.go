package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// Printer renders command results as YAML, or JSON when JSON is set.
// goccy/go-yaml falls back to json tags, so both formats share field names.
type Printer struct {
	JSON bool

	// Path is the output file. Empty writes to Stdout.
	Path string

	// Stdout defaults to os.Stdout.
	Stdout io.Writer
}

func (p *Printer) Print(v any) error {
	data, err := p.render(v)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	if p.Path != "" {
		if err := os.WriteFile(p.Path, data, 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	w := p.Stdout
	if w == nil {
		w = os.Stdout
	}
	_, err = w.Write(data)
	return err
}

func (p *Printer) render(v any) ([]byte, error) {
	if !p.JSON {
		return yaml.Marshal(v)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message with checkmark
func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}
