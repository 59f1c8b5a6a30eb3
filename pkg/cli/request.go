package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRequest reads a request file into a new T. The path "-" reads stdin.
// YAML files are decoded through the JSON field names of T, so request
// types only need json tags.
func LoadRequest[T any](path string) (*T, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	v := new(T)
	if err := ParseRequest(data, filepath.Ext(path), v); err != nil {
		return nil, fmt.Errorf("parse request %s: %w", path, err)
	}
	return v, nil
}

// ParseRequest decodes data into v. ext selects JSON for ".json"; anything
// else is read as YAML, which accepts JSON as well.
func ParseRequest(data []byte, ext string, v any) error {
	if strings.ToLower(ext) == ".json" {
		return decodeJSON(data, v)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("empty request")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("request is not representable as JSON: %w", err)
	}
	return decodeJSON(b, v)
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
