package genx

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// DefaultMaxTurns bounds the tool loop when Runner.MaxTurns is zero.
const DefaultMaxTurns = 10

// Runner executes agents against a Generator.
type Runner struct {
	Generator Generator

	// MaxTurns is the number of model calls allowed per run.
	MaxTurns int

	// Timeout bounds a whole run, tool invocations included.
	Timeout time.Duration
}

// Agent is an instruction profile with tools. C is the context passed to
// every tool invocation during a run.
type Agent[C any] struct {
	Name         string
	Instructions string
	Tools        []*FuncTool[C]

	// Output requests a structured JSON answer.
	Output *Spec

	Params *ModelParams
}

// Result is the outcome of a run.
type Result struct {
	// FinalOutput is the text of the last assistant answer.
	FinalOutput string

	// History is the input history followed by every turn the run produced.
	History []Turn

	Usage Usage
}

// Run drives the tool loop until the model answers without calling a tool.
// The input history is not modified.
func (a *Agent[C]) Run(ctx context.Context, r *Runner, history []Turn, cc C) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	maxTurns := r.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	tools := make(map[string]*FuncTool[C], len(a.Tools))
	specs := make([]Spec, 0, len(a.Tools))
	for _, t := range a.Tools {
		tools[t.Name] = t
		specs = append(specs, t.Spec())
	}

	res := &Result{History: slices.Clone(history)}
	for turn := 0; turn < maxTurns; turn++ {
		resp, err := r.Generator.Generate(ctx, &Request{
			Instructions: a.Instructions,
			History:      res.History,
			Tools:        specs,
			Output:       a.Output,
			Params:       a.Params,
		})
		if err != nil {
			return nil, fmt.Errorf("genx: agent %s: %w", a.Name, err)
		}
		res.Usage.add(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			res.FinalOutput = resp.Text
			if resp.Text != "" {
				res.History = append(res.History, AssistantTurn(resp.Text))
			}
			return res, nil
		}

		res.History = append(res.History, Turn{
			Role:      RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			res.History = append(res.History, ToolResultTurn(call, a.invoke(ctx, tools, call, cc)))
		}
	}
	return nil, fmt.Errorf("genx: agent %s: %w", a.Name, ErrMaxTurns)
}

// invoke runs one tool call. Failures are reported back to the model as the
// tool result so it can recover.
func (a *Agent[C]) invoke(ctx context.Context, tools map[string]*FuncTool[C], call ToolCall, cc C) string {
	tool, ok := tools[call.Name]
	if !ok {
		slog.Warn("model called unknown tool", "agent", a.Name, "tool", call.Name)
		return fmt.Sprintf("error: tool %q not found", call.Name)
	}
	slog.Debug("invoking tool", "agent", a.Name, "tool", call.Name, "args", call.Arguments)
	v, err := tool.Invoke(ctx, cc, call.Arguments)
	if err != nil {
		slog.Warn("tool failed", "agent", a.Name, "tool", call.Name, "error", err)
		return fmt.Sprintf("error: %v", err)
	}
	return toolResultString(v)
}

// RunStructured runs a and decodes its final answer into T. The agent
// should carry an Output schema describing T.
func RunStructured[T, C any](ctx context.Context, r *Runner, a *Agent[C], history []Turn, cc C) (T, *Result, error) {
	var zero T
	res, err := a.Run(ctx, r, history, cc)
	if err != nil {
		return zero, nil, err
	}
	v, err := Decode[T](res.FinalOutput)
	if err != nil {
		return zero, res, fmt.Errorf("genx: agent %s: %w", a.Name, err)
	}
	return v, res, nil
}

type delegateArg struct {
	Input string `json:"input" jsonschema:"the request to hand over"`
}

// AgentTool exposes sub as a tool of another agent. The sub-agent runs on
// a fresh history holding only the delegated input and shares the caller's
// tool context.
func AgentTool[C any](sub *Agent[C], r *Runner, name, description string) (*FuncTool[C], error) {
	return NewFuncTool(name, description, func(ctx context.Context, cc C, arg delegateArg) (any, error) {
		res, err := sub.Run(ctx, r, []Turn{UserTurn(arg.Input)}, cc)
		if err != nil {
			return nil, err
		}
		return res.FinalOutput, nil
	})
}
