package meeting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haivivi/meetpilot/pkg/genx"
)

// NewChecklistAnalyst reports fulfilled agenda checklist items.
func NewChecklistAnalyst(r *genx.Runner, emitter Emitter) *Analyst {
	return NewAnalyst(ChecklistProfile(), r, emitter)
}

func ChecklistProfile() Profile {
	type arg struct {
		CheckpointFulfilled int `json:"checkpoint_fulfilled" jsonschema:"1-based number of the fulfilled agenda point"`
	}
	return Profile{
		Name:         "Agenda Agent",
		Instructions: checklistInstructions,
		Tools: []*Tool{
			genx.MustNewFuncTool("send_checkpoint_fulfilled", "Report the number of a fulfilled agenda point to the client.",
				func(ctx context.Context, tc *ToolContext, a arg) (any, error) {
					if a.CheckpointFulfilled < 1 {
						return nil, fmt.Errorf("checkpoint_fulfilled must be >= 1, got %d", a.CheckpointFulfilled)
					}
					if err := tc.Emitter.Emit(CheckpointFulfilled{CheckpointFulfilled: a.CheckpointFulfilled}); err != nil {
						return nil, err
					}
					return "sent", nil
				}),
		},
	}
}

// NewEngagementAnalyst classifies each segment's speaker as host or guest.
func NewEngagementAnalyst(r *genx.Runner, emitter Emitter) *Analyst {
	return NewAnalyst(EngagementProfile(), r, emitter)
}

func EngagementProfile() Profile {
	type arg struct {
		UserType string `json:"user_type" jsonschema:"host or guest"`
	}
	return Profile{
		Name:         "Engagement Agent",
		Instructions: engagementInstructions,
		Tools: []*Tool{
			genx.MustNewFuncTool("send_engagement", "Send the speaker classification of the last chunk to the client.",
				func(ctx context.Context, tc *ToolContext, a arg) (any, error) {
					if a.UserType != UserTypeHost && a.UserType != UserTypeGuest {
						return nil, fmt.Errorf("user_type must be %q or %q, got %q", UserTypeHost, UserTypeGuest, a.UserType)
					}
					if err := tc.Emitter.Emit(Engagement{WordsCount: tc.WordCount, UserType: a.UserType}); err != nil {
						return nil, err
					}
					return "sent", nil
				}),
		},
	}
}

// NewOfftopicAnalyst keeps a running judgment of topic drift.
func NewOfftopicAnalyst(r *genx.Runner, emitter Emitter) *Analyst {
	return NewAnalyst(OfftopicProfile(), r, emitter)
}

func OfftopicProfile() Profile {
	type arg struct {
		IsOfftopic         bool    `json:"is_offtopic"`
		TopicSummary       string  `json:"topic_summary" jsonschema:"one sentence describing the current discussion"`
		RelevantAgendaItem *string `json:"relevant_agenda_item,omitempty" jsonschema:"agenda item the discussion relates to"`
		Recommendation     *string `json:"recommendation,omitempty" jsonschema:"how to steer back to the agenda"`
	}
	return Profile{
		Name:         "Offtopic Agent",
		Instructions: offtopicInstructions,
		Tools: []*Tool{
			genx.MustNewFuncTool("send_topic_status", "Send a topic status update about the current discussion to the client.",
				func(ctx context.Context, tc *ToolContext, a arg) (any, error) {
					err := tc.Emitter.Emit(TopicStatus{
						IsOfftopic:         a.IsOfftopic,
						TopicSummary:       a.TopicSummary,
						RelevantAgendaItem: a.RelevantAgendaItem,
						Recommendation:     a.Recommendation,
					})
					if err != nil {
						return nil, err
					}
					return "sent", nil
				}),
		},
	}
}

// ModerationVerdict is the outcome of a moderation check.
type ModerationVerdict struct {
	IsWrong   bool   `json:"is_wrong"`
	Reasoning string `json:"reasoning"`
}

var moderationOutput = genx.MustOutputOf[ModerationVerdict]("moderation_verdict", "whether the content must be suppressed")

// moderate reports whether content may reach the client. Errors count as
// a rejection.
func moderate(ctx context.Context, r *genx.Runner, kind, content string) (bool, error) {
	guard := &genx.Agent[struct{}]{
		Name:         "Guardrail check",
		Instructions: fmt.Sprintf(moderationInstructions, kind),
		Output:       moderationOutput,
	}
	v, _, err := genx.RunStructured[ModerationVerdict](ctx, r, guard, []genx.Turn{genx.UserTurn(content)}, struct{}{})
	if err != nil {
		return false, fmt.Errorf("moderate %s: %w", kind, err)
	}
	if v.IsWrong {
		slog.Info("suppressed moderated content", "kind", kind, "reasoning", v.Reasoning)
		return false, nil
	}
	return true, nil
}

// NewTipsAnalyst proposes conversation tips and extra checklist items.
// Every proposal passes a moderation run before it is sent.
func NewTipsAnalyst(r *genx.Runner, emitter Emitter) *Analyst {
	return NewAnalyst(TipsProfile(r), r, emitter)
}

// TipsProfile builds the tips profile. r runs the moderation checks.
func TipsProfile(r *genx.Runner) Profile {
	type tipArg struct {
		NewConversationTip string `json:"new_conversation_tip" jsonschema:"a concise, specific, actionable tip"`
	}
	type checkpointArg struct {
		NewCheckpointContent string `json:"new_checkpoint_content" jsonschema:"an outcome-oriented checklist item"`
	}
	return Profile{
		Name:         "Conversation Tips",
		Instructions: tipsInstructions,
		Tools: []*Tool{
			genx.MustNewFuncTool("send_conversation_tip", "Send a conversation tip to the client.",
				func(ctx context.Context, tc *ToolContext, a tipArg) (any, error) {
					ok, err := moderate(ctx, r, "conversation tip", a.NewConversationTip)
					if err != nil || !ok {
						return nil, err
					}
					if err := tc.Emitter.Emit(ConversationTip{NewConversationTip: a.NewConversationTip}); err != nil {
						return nil, err
					}
					return "sent", nil
				}),
			genx.MustNewFuncTool("send_new_checkpoint", "Propose a new checklist item to the client.",
				func(ctx context.Context, tc *ToolContext, a checkpointArg) (any, error) {
					ok, err := moderate(ctx, r, "checkpoint", a.NewCheckpointContent)
					if err != nil || !ok {
						return nil, err
					}
					if err := tc.Emitter.Emit(NewCheckpoint{NewCheckpointContent: a.NewCheckpointContent}); err != nil {
						return nil, err
					}
					return "sent", nil
				}),
		},
	}
}

// NewDefaultAnalysts returns the four analysts of a live session.
func NewDefaultAnalysts(r *genx.Runner, emitter Emitter) []*Analyst {
	return []*Analyst{
		NewChecklistAnalyst(r, emitter),
		NewEngagementAnalyst(r, emitter),
		NewOfftopicAnalyst(r, emitter),
		NewTipsAnalyst(r, emitter),
	}
}
