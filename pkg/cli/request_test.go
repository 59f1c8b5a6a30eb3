package cli

import (
	"os"
	"path/filepath"
	"testing"
)

type testForm struct {
	Title           string   `json:"title"`
	MeetingDuration string   `json:"meeting_duration"`
	Participants    []string `json:"participants"`
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"yaml", ".yaml", "title: Sync\nmeeting_duration: \"01:00:00\"\nparticipants: [Ann, Bo]\n"},
		{"json", ".json", `{"title":"Sync","meeting_duration":"01:00:00","participants":["Ann","Bo"]}`},
		{"json without extension", "", `{"title":"Sync","meeting_duration":"01:00:00","participants":["Ann","Bo"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f testForm
			if err := ParseRequest([]byte(tt.data), tt.ext, &f); err != nil {
				t.Fatalf("ParseRequest error: %v", err)
			}
			if f.Title != "Sync" || f.MeetingDuration != "01:00:00" || len(f.Participants) != 2 {
				t.Errorf("form = %+v", f)
			}
		})
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"broken json", ".json", "{broken"},
		{"unknown field", ".yaml", "title: Sync\nduration: 1h\n"},
		{"empty", ".yaml", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f testForm
			if err := ParseRequest([]byte(tt.data), tt.ext, &f); err == nil {
				t.Errorf("ParseRequest should fail, got %+v", f)
			}
		})
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yml")
	os.WriteFile(path, []byte("title: Planning\n"), 0600)

	f, err := LoadRequest[testForm](path)
	if err != nil {
		t.Fatalf("LoadRequest error: %v", err)
	}
	if f.Title != "Planning" {
		t.Errorf("title = %q", f.Title)
	}
	if _, err := LoadRequest[testForm](filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadRequest should fail on a missing file")
	}
}
