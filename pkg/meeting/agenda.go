package meeting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AgendaSnapshot is a generated meeting agenda.
type AgendaSnapshot struct {
	Title                string               `json:"title" jsonschema:"meeting title"`
	Checklist            []string             `json:"checklist" jsonschema:"outcome-oriented goals of the meeting"`
	TimePlan             []TimeSlot           `json:"time_plan" jsonschema:"sequential agenda segments"`
	PreparationTips      []string             `json:"preparation_tips" jsonschema:"practical preparation recommendations"`
	ParticipantsInsights []ParticipantInsight `json:"participants_insights" jsonschema:"priorities and concerns per participant"`
}

// TimeSlot is one segment of the time plan. Times are HH:MM.
type TimeSlot struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Content string `json:"content"`
}

type ParticipantInsight struct {
	Participant string `json:"participant"`
	Insight     string `json:"insight"`
}

// AgendaInfo is the agenda a client attaches to a live session.
type AgendaInfo struct {
	Title string `json:"title"`

	// ChecklistItems is the client's name for the checklist; Checklist is
	// accepted as well so an AgendaSnapshot can be sent as is.
	ChecklistItems []string `json:"checklist_items,omitempty"`
	Checklist      []string `json:"checklist,omitempty"`
}

// ParseAgendaInfo decodes the agenda payload of an agenda_info message.
func ParseAgendaInfo(raw json.RawMessage) (*AgendaInfo, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("meeting: empty agenda")
	}
	var info AgendaInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("meeting: parse agenda: %w", err)
	}
	return &info, nil
}

// Items returns the numbered checklist items.
func (a *AgendaInfo) Items() []string {
	if len(a.ChecklistItems) > 0 {
		return a.ChecklistItems
	}
	return a.Checklist
}

// Prompt renders the agenda as the system turn appended to each analyst.
func (a *AgendaInfo) Prompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Agenda for meeting: %s\n", a.Title)
	if items := a.Items(); len(items) > 0 {
		sb.WriteString("Checklist items:\n")
		for i, item := range items {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
		}
	}
	return sb.String()
}
