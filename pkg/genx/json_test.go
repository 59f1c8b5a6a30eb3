package genx

import (
	"testing"
)

func TestUnmarshalJSON_Valid(t *testing.T) {
	var result map[string]any
	if err := unmarshalJSON([]byte(`{"name": "test", "value": 123}`), &result); err != nil {
		t.Fatalf("unmarshalJSON error: %v", err)
	}
	if result["name"] != "test" {
		t.Errorf("name = %v, want %q", result["name"], "test")
	}
	if result["value"] != float64(123) {
		t.Errorf("value = %v, want 123", result["value"])
	}
}

func TestUnmarshalJSON_Repair(t *testing.T) {
	tests := []string{
		`{"name": "test", "value": 1,}`,
		`{name: "test", value: 1}`,
		`{'name': 'test', 'value': 1}`,
	}
	for _, in := range tests {
		var result struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		if err := unmarshalJSON([]byte(in), &result); err != nil {
			t.Errorf("unmarshalJSON(%s) error: %v", in, err)
			continue
		}
		if result.Name != "test" || result.Value != 1 {
			t.Errorf("unmarshalJSON(%s) = %+v", in, result)
		}
	}
}

func TestUnmarshalJSON_TypeMismatchNotRepaired(t *testing.T) {
	var result struct {
		Value int `json:"value"`
	}
	if err := unmarshalJSON([]byte(`{"value": "abc"}`), &result); err == nil {
		t.Fatal("unmarshalJSON should fail on a type mismatch")
	}
}

func TestDecode(t *testing.T) {
	type verdict struct {
		OnTopic   bool   `json:"on_topic"`
		Reasoning string `json:"reasoning"`
	}
	tests := []struct {
		name string
		in   string
		want verdict
	}{
		{"plain", `{"on_topic": true, "reasoning": "fine"}`, verdict{true, "fine"}},
		{"fenced", "```json\n{\"on_topic\": false, \"reasoning\": \"x\"}\n```", verdict{false, "x"}},
		{"trailing comma", `{"on_topic": true, "reasoning": "r",}`, verdict{true, "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[verdict](tt.in)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	if _, err := Decode[map[string]any]("  "); err == nil {
		t.Fatal("Decode should fail on empty output")
	}
}

func TestHexString(t *testing.T) {
	a, b := hexString(), hexString()
	if len(a) != 16 {
		t.Errorf("len = %d, want 16", len(a))
	}
	if a == b {
		t.Errorf("hexString returned the same value twice: %s", a)
	}
}
