package genx

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptGenerator replays canned responses and records every request.
type scriptGenerator struct {
	mu        sync.Mutex
	responses []*Response
	requests  []*Request
}

func (g *scriptGenerator) Generate(ctx context.Context, req *Request) (*Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	snapshot := *req
	snapshot.History = append([]Turn(nil), req.History...)
	g.requests = append(g.requests, &snapshot)
	if len(g.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp, nil
}

func TestAgentRun_TextOnly(t *testing.T) {
	gen := &scriptGenerator{responses: []*Response{{Text: "hello"}}}
	agent := &Agent[struct{}]{Name: "greeter", Instructions: "be nice"}
	history := []Turn{UserTurn("hi")}

	res, err := agent.Run(context.Background(), &Runner{Generator: gen}, history, struct{}{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.FinalOutput != "hello" {
		t.Errorf("FinalOutput = %q, want hello", res.FinalOutput)
	}
	if len(res.History) != 2 || res.History[1].Role != RoleAssistant {
		t.Errorf("History = %+v, want user + assistant", res.History)
	}
	if len(history) != 1 {
		t.Errorf("input history modified: %+v", history)
	}
	if got := gen.requests[0].Instructions; got != "be nice" {
		t.Errorf("Instructions = %q", got)
	}
}

func TestAgentRun_ToolLoop(t *testing.T) {
	gen := &scriptGenerator{responses: []*Response{
		{ToolCalls: []ToolCall{{ID: "c1", Name: "record", Arguments: `{"name":"x","value":1}`}}},
		{Text: "done"},
	}}
	agent := &Agent[*testCallCtx]{
		Name: "recorder",
		Tools: []*FuncTool[*testCallCtx]{
			MustNewFuncTool("record", "", func(ctx context.Context, cc *testCallCtx, arg testArg) (any, error) {
				cc.calls = append(cc.calls, arg.Name)
				return "ok", nil
			}),
		},
	}
	cc := &testCallCtx{}
	res, err := agent.Run(context.Background(), &Runner{Generator: gen}, []Turn{UserTurn("go")}, cc)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(cc.calls) != 1 || cc.calls[0] != "x" {
		t.Errorf("calls = %v, want [x]", cc.calls)
	}
	// user, assistant tool call, tool result, assistant answer
	if len(res.History) != 4 {
		t.Fatalf("len(History) = %d, want 4: %+v", len(res.History), res.History)
	}
	tr := res.History[2]
	if tr.Role != RoleTool || tr.ToolCallID != "c1" || tr.Content != "ok" || tr.Name != "record" {
		t.Errorf("tool turn = %+v", tr)
	}
	if len(gen.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(gen.requests))
	}
	if n := len(gen.requests[1].History); n != 3 {
		t.Errorf("second request history = %d turns, want 3", n)
	}
	if len(gen.requests[0].Tools) != 1 || gen.requests[0].Tools[0].Name != "record" {
		t.Errorf("tools = %+v", gen.requests[0].Tools)
	}
}

func TestAgentRun_ToolErrorsReportedToModel(t *testing.T) {
	gen := &scriptGenerator{responses: []*Response{
		{ToolCalls: []ToolCall{
			{ID: "c1", Name: "missing", Arguments: `{}`},
			{ID: "c2", Name: "fail", Arguments: `{}`},
		}},
		{Text: "recovered"},
	}}
	agent := &Agent[struct{}]{
		Name: "a",
		Tools: []*FuncTool[struct{}]{
			MustNewFuncTool("fail", "", func(ctx context.Context, _ struct{}, _ struct{}) (any, error) {
				return nil, errors.New("boom")
			}),
		},
	}
	res, err := agent.Run(context.Background(), &Runner{Generator: gen}, []Turn{UserTurn("go")}, struct{}{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := res.History[2].Content; !strings.Contains(got, "not found") {
		t.Errorf("missing tool result = %q", got)
	}
	if got := res.History[3].Content; !strings.Contains(got, "boom") {
		t.Errorf("failed tool result = %q", got)
	}
}

func TestAgentRun_MaxTurns(t *testing.T) {
	loop := &Response{ToolCalls: []ToolCall{{ID: "c", Name: "noop", Arguments: `{}`}}}
	gen := &scriptGenerator{responses: []*Response{loop, loop, loop}}
	agent := &Agent[struct{}]{
		Name: "looper",
		Tools: []*FuncTool[struct{}]{
			MustNewFuncTool("noop", "", func(ctx context.Context, _ struct{}, _ struct{}) (any, error) {
				return nil, nil
			}),
		},
	}
	_, err := agent.Run(context.Background(), &Runner{Generator: gen, MaxTurns: 2}, []Turn{UserTurn("go")}, struct{}{})
	if !errors.Is(err, ErrMaxTurns) {
		t.Fatalf("Run error = %v, want ErrMaxTurns", err)
	}
	if len(gen.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(gen.requests))
	}
}

func TestAgentRun_Timeout(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, req *Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	agent := &Agent[struct{}]{Name: "slow"}
	_, err := agent.Run(context.Background(), &Runner{Generator: gen, Timeout: 20 * time.Millisecond}, []Turn{UserTurn("go")}, struct{}{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run error = %v, want DeadlineExceeded", err)
	}
}

func TestRunStructured(t *testing.T) {
	type verdict struct {
		OnTopic bool `json:"on_topic"`
	}
	gen := &scriptGenerator{responses: []*Response{{Text: `{"on_topic": true}`}}}
	agent := &Agent[struct{}]{Name: "guard", Output: MustOutputOf[verdict]("verdict", "")}

	v, res, err := RunStructured[verdict](context.Background(), &Runner{Generator: gen}, agent, []Turn{UserTurn("q")}, struct{}{})
	if err != nil {
		t.Fatalf("RunStructured error: %v", err)
	}
	if !v.OnTopic {
		t.Errorf("verdict = %+v, want on topic", v)
	}
	if res.FinalOutput == "" {
		t.Error("FinalOutput should be kept")
	}
	if gen.requests[0].Output == nil || gen.requests[0].Output.Name != "verdict" {
		t.Errorf("Output = %+v, want verdict spec", gen.requests[0].Output)
	}
}

func TestRunStructured_Malformed(t *testing.T) {
	gen := &scriptGenerator{responses: []*Response{{Text: "not json at all"}}}
	agent := &Agent[struct{}]{Name: "guard"}
	_, _, err := RunStructured[struct {
		A int `json:"a"`
	}](context.Background(), &Runner{Generator: gen}, agent, []Turn{UserTurn("q")}, struct{}{})
	if err == nil {
		t.Fatal("RunStructured should fail on non-JSON output")
	}
}

func TestAgentTool_Delegates(t *testing.T) {
	gen := &scriptGenerator{responses: []*Response{
		{ToolCalls: []ToolCall{{ID: "d1", Name: "ask_expert", Arguments: `{"input":"what time?"}`}}},
		{Text: "noon"},
		{Text: "the expert says noon"},
	}}
	r := &Runner{Generator: gen}
	expert := &Agent[struct{}]{Name: "expert", Instructions: "answer briefly"}
	tool, err := AgentTool(expert, r, "ask_expert", "ask the expert")
	if err != nil {
		t.Fatalf("AgentTool error: %v", err)
	}
	lead := &Agent[struct{}]{Name: "lead", Tools: []*FuncTool[struct{}]{tool}}

	res, err := lead.Run(context.Background(), r, []Turn{UserTurn("time?")}, struct{}{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.FinalOutput != "the expert says noon" {
		t.Errorf("FinalOutput = %q", res.FinalOutput)
	}
	sub := gen.requests[1]
	if sub.Instructions != "answer briefly" || len(sub.History) != 1 || sub.History[0].Content != "what time?" {
		t.Errorf("delegated request = %+v", sub)
	}
	if got := res.History[2].Content; got != "noon" {
		t.Errorf("delegation result = %q, want noon", got)
	}
}

func TestUsageAccumulates(t *testing.T) {
	gen := &scriptGenerator{responses: []*Response{
		{ToolCalls: []ToolCall{{ID: "c", Name: "noop", Arguments: `{}`}}, Usage: Usage{PromptTokenCount: 10, GeneratedTokenCount: 2}},
		{Text: "ok", Usage: Usage{PromptTokenCount: 15, GeneratedTokenCount: 3}},
	}}
	agent := &Agent[struct{}]{
		Name: "a",
		Tools: []*FuncTool[struct{}]{
			MustNewFuncTool("noop", "", func(ctx context.Context, _ struct{}, _ struct{}) (any, error) {
				return nil, nil
			}),
		},
	}
	res, err := agent.Run(context.Background(), &Runner{Generator: gen}, []Turn{UserTurn("go")}, struct{}{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Usage.PromptTokenCount != 25 || res.Usage.GeneratedTokenCount != 5 {
		t.Errorf("Usage = %+v", res.Usage)
	}
	if !strings.Contains(res.Usage.String(), "Prompt: 25") {
		t.Errorf("Usage.String() = %q", res.Usage.String())
	}
}
