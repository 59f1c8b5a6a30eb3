// Package agendachat generates meeting agendas and revises them through a
// topic-guarded chat.
//
// Chat runs two independent model calls. A classifier first judges whether
// the user's messages concern the agenda. Only an on-topic verdict leads to
// the generation call; an off-topic verdict returns the agenda unchanged.
package agendachat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/meetpilot/pkg/genx"
	"github.com/haivivi/meetpilot/pkg/meeting"
)

// AgendaForm describes the meeting an agenda is created for.
type AgendaForm struct {
	Title           string   `json:"title"`
	Purpose         string   `json:"purpose"`
	Context         string   `json:"context,omitempty"`
	MeetingDuration string   `json:"meeting_duration"`
	TypeOfMeeting   string   `json:"type_of_meeting,omitempty"`
	Participants    []string `json:"participants,omitempty"`
}

// Validate checks the fields the generation relies on.
func (f *AgendaForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return errors.New("agendachat: title is required")
	}
	if strings.TrimSpace(f.MeetingDuration) == "" {
		return errors.New("agendachat: meeting_duration is required")
	}
	return nil
}

// Message is one chat turn sent by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of an agenda chat call.
type ChatRequest struct {
	Agenda   *meeting.AgendaSnapshot `json:"agenda"`
	Messages []Message               `json:"messages"`
}

// GuardrailVerdict is the classifier's judgment of a chat turn.
type GuardrailVerdict struct {
	OnTopic   bool   `json:"on_topic" jsonschema:"true when the request concerns the meeting or its agenda"`
	Reasoning string `json:"reasoning" jsonschema:"one sentence explaining the verdict"`
}

var (
	agendaOutput  = genx.MustOutputOf[meeting.AgendaSnapshot]("agenda", "the complete meeting agenda")
	verdictOutput = genx.MustOutputOf[GuardrailVerdict]("guardrail_verdict", "whether the request concerns the agenda")
)

// Service runs agenda generation against a Runner.
type Service struct {
	runner *genx.Runner

	creator    *genx.Agent[struct{}]
	classifier *genx.Agent[struct{}]
}

func NewService(r *genx.Runner) *Service {
	return &Service{
		runner: r,
		creator: &genx.Agent[struct{}]{
			Name:         "Agenda Creator",
			Instructions: creationInstructions,
			Output:       agendaOutput,
		},
		classifier: &genx.Agent[struct{}]{
			Name:         "Guardrail check",
			Instructions: guardrailInstructions,
			Output:       verdictOutput,
		},
	}
}

// Create generates an agenda from form.
func (s *Service) Create(ctx context.Context, form *AgendaForm) (*meeting.AgendaSnapshot, error) {
	if form == nil {
		return nil, errors.New("agendachat: nil form")
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("agendachat: encode form: %w", err)
	}
	snap, res, err := genx.RunStructured[meeting.AgendaSnapshot](ctx, s.runner, s.creator, []genx.Turn{genx.UserTurn(string(b))}, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("agendachat: create: %w", err)
	}
	slog.Info("agenda created", "title", snap.Title, "checklist", len(snap.Checklist), "generated_tokens", res.Usage.GeneratedTokenCount)
	return &snap, nil
}

// Chat revises agenda according to messages. When the classifier judges the
// conversation off topic, agenda itself is returned and no generation call
// is made. The verdict is returned in both cases.
func (s *Service) Chat(ctx context.Context, agenda *meeting.AgendaSnapshot, messages []Message) (*meeting.AgendaSnapshot, *GuardrailVerdict, error) {
	if agenda == nil {
		return nil, nil, errors.New("agendachat: nil agenda")
	}
	if len(messages) == 0 {
		return nil, nil, errors.New("agendachat: no messages")
	}
	turns, err := convMessages(messages)
	if err != nil {
		return nil, nil, err
	}

	verdict, err := s.classify(ctx, agenda, turns)
	if err != nil {
		return nil, nil, err
	}
	if !verdict.OnTopic {
		slog.Info("agenda chat tripwire", "reasoning", verdict.Reasoning)
		return agenda, verdict, nil
	}

	current, err := json.Marshal(agenda)
	if err != nil {
		return nil, nil, fmt.Errorf("agendachat: encode agenda: %w", err)
	}
	history := make([]genx.Turn, 0, len(turns)+3)
	history = append(history,
		genx.AssistantTurn(string(current)),
		genx.UserTurn("Here is the current agenda: "+string(current)),
	)
	history = append(history, turns...)
	history = append(history, genx.SystemTurn(updateInstruction))

	snap, _, err := genx.RunStructured[meeting.AgendaSnapshot](ctx, s.runner, s.creator, history, struct{}{})
	if err != nil {
		return nil, nil, fmt.Errorf("agendachat: chat: %w", err)
	}
	return &snap, verdict, nil
}

func (s *Service) classify(ctx context.Context, agenda *meeting.AgendaSnapshot, turns []genx.Turn) (*GuardrailVerdict, error) {
	current, err := yaml.Marshal(agenda)
	if err != nil {
		return nil, fmt.Errorf("agendachat: encode agenda: %w", err)
	}
	history := make([]genx.Turn, 0, len(turns)+1)
	history = append(history, genx.UserTurn("Current agenda:\n"+string(current)))
	history = append(history, turns...)

	v, _, err := genx.RunStructured[GuardrailVerdict](ctx, s.runner, s.classifier, history, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("agendachat: classify: %w", err)
	}
	return &v, nil
}

func convMessages(messages []Message) ([]genx.Turn, error) {
	turns := make([]genx.Turn, 0, len(messages))
	for i, m := range messages {
		switch genx.Role(m.Role) {
		case genx.RoleUser:
			turns = append(turns, genx.UserTurn(m.Content))
		case genx.RoleAssistant:
			turns = append(turns, genx.AssistantTurn(m.Content))
		default:
			return nil, fmt.Errorf("agendachat: message %d: unsupported role %q", i, m.Role)
		}
	}
	return turns, nil
}
