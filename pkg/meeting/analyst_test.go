package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haivivi/meetpilot/pkg/genx"
)

// recorder collects emitted client events.
type recorder struct {
	mu     sync.Mutex
	events []any
}

func (r *recorder) Emit(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v)
	return nil
}

func (r *recorder) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func lastTurn(req *genx.Request) genx.Turn {
	return req.History[len(req.History)-1]
}

func lastUserText(req *genx.Request) string {
	for i := len(req.History) - 1; i >= 0; i-- {
		if req.History[i].Role == genx.RoleUser {
			return req.History[i].Content
		}
	}
	return ""
}

// toolThenDone answers with one tool call, then with text once the tool
// result is in the history.
func toolThenDone(name string, args func(req *genx.Request) string) genx.Generator {
	return genx.GeneratorFunc(func(ctx context.Context, req *genx.Request) (*genx.Response, error) {
		if lastTurn(req).Role == genx.RoleTool {
			return &genx.Response{Text: "done"}, nil
		}
		return &genx.Response{ToolCalls: []genx.ToolCall{{ID: "call_1", Name: name, Arguments: args(req)}}}, nil
	})
}

// drain processes every queued item on the calling goroutine.
func drain(ctx context.Context, a *Analyst) {
	for {
		it, ok := a.queue.TryPop()
		if !ok {
			return
		}
		a.process(ctx, it)
	}
}

func TestAnalyst_ZeroCallWithoutContext(t *testing.T) {
	var calls atomic.Int32
	gen := genx.GeneratorFunc(func(ctx context.Context, req *genx.Request) (*genx.Response, error) {
		calls.Add(1)
		return &genx.Response{Text: "x"}, nil
	})
	a := NewAnalyst(Profile{Name: "idle"}, &genx.Runner{Generator: gen}, &recorder{})

	if a.State() != AwaitingContext {
		t.Fatalf("State = %v, want awaiting_context", a.State())
	}
	a.Enqueue(NewSegment(""))
	a.Enqueue(NewSegment("   "))
	drain(context.Background(), a)

	if n := calls.Load(); n != 0 {
		t.Errorf("generator called %d times, want 0", n)
	}
	if a.State() != AwaitingContext {
		t.Errorf("State = %v, want awaiting_context", a.State())
	}
	if len(a.History()) != 0 {
		t.Errorf("History = %+v, want empty", a.History())
	}
}

func TestAnalyst_AgendaAttachDoesNotCallModel(t *testing.T) {
	var calls atomic.Int32
	gen := genx.GeneratorFunc(func(ctx context.Context, req *genx.Request) (*genx.Response, error) {
		calls.Add(1)
		return &genx.Response{Text: "x"}, nil
	})
	a := NewAnalyst(Profile{Name: "a"}, &genx.Runner{Generator: gen}, &recorder{})
	if err := a.AttachAgenda(&AgendaInfo{Title: "Sync"}); err != nil {
		t.Fatal(err)
	}
	drain(context.Background(), a)

	if calls.Load() != 0 {
		t.Error("attaching an agenda must not call the model")
	}
	if a.State() != Ready {
		t.Errorf("State = %v, want ready", a.State())
	}
	h := a.History()
	if len(h) != 1 || h[0].Role != genx.RoleSystem || h[0].Content != "Agenda for meeting: Sync\n" {
		t.Errorf("History = %+v", h)
	}
	if err := a.AttachAgenda(nil); err == nil {
		t.Error("AttachAgenda(nil) should fail")
	}
}

func TestAnalyst_ReplacesHistoryWithRunResult(t *testing.T) {
	rec := &recorder{}
	gen := toolThenDone("send_checkpoint_fulfilled", func(*genx.Request) string { return `{"checkpoint_fulfilled": 1}` })
	a := NewChecklistAnalyst(&genx.Runner{Generator: gen}, rec)

	a.AttachAgenda(&AgendaInfo{Title: "Sales", ChecklistItems: []string{"Secure commitment for pilot"}})
	a.Enqueue(NewSegment("We agree to proceed with the pilot"))
	drain(context.Background(), a)

	h := a.History()
	roles := make([]string, len(h))
	for i, turn := range h {
		roles[i] = string(turn.Role)
	}
	if got, want := strings.Join(roles, ","), "system,user,assistant,tool,assistant"; got != want {
		t.Errorf("history roles = %s, want %s", got, want)
	}
	if a.State() != Ready {
		t.Errorf("State = %v, want ready", a.State())
	}
	events := rec.all()
	if len(events) != 1 || events[0] != (CheckpointFulfilled{CheckpointFulfilled: 1}) {
		t.Errorf("events = %+v", events)
	}
}

func TestAnalyst_FIFO(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	gen := genx.GeneratorFunc(func(ctx context.Context, req *genx.Request) (*genx.Response, error) {
		mu.Lock()
		seen = append(seen, lastUserText(req))
		mu.Unlock()
		return &genx.Response{Text: "ok"}, nil
	})
	a := NewAnalyst(Profile{Name: "fifo"}, &genx.Runner{Generator: gen}, &recorder{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	const n = 50
	for i := range n {
		a.Enqueue(NewSegment(fmt.Sprintf("segment %d", i)))
	}
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == n
	})
	a.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for i, s := range seen {
		if want := fmt.Sprintf("segment %d", i); s != want {
			t.Fatalf("seen[%d] = %q, want %q", i, s, want)
		}
	}
}

func TestAnalyst_FailureIsolation(t *testing.T) {
	var processed []string
	gen := genx.GeneratorFunc(func(ctx context.Context, req *genx.Request) (*genx.Response, error) {
		text := lastUserText(req)
		switch text {
		case "boom":
			return nil, errors.New("inference failed")
		case "panic":
			panic("tool exploded")
		}
		processed = append(processed, text)
		return &genx.Response{Text: "ok"}, nil
	})
	a := NewAnalyst(Profile{Name: "fragile"}, &genx.Runner{Generator: gen}, &recorder{})

	for _, s := range []string{"one", "boom", "two", "panic", "three"} {
		a.Enqueue(NewSegment(s))
	}
	drain(context.Background(), a)

	if got := strings.Join(processed, ","); got != "one,two,three" {
		t.Errorf("processed = %s, want one,two,three", got)
	}
	if a.State() != Ready {
		t.Errorf("State = %v, want ready", a.State())
	}
	var users int
	for _, turn := range a.History() {
		if turn.Role == genx.RoleUser {
			users++
		}
	}
	if users != 5 {
		t.Errorf("user turns = %d, want 5 (failed items keep their transcript)", users)
	}
}

func TestAnalyst_RunStopsOnCancel(t *testing.T) {
	a := NewAnalyst(Profile{Name: "a"}, &genx.Runner{}, &recorder{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAnalyst_ProcessingState(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gen := genx.GeneratorFunc(func(ctx context.Context, req *genx.Request) (*genx.Response, error) {
		close(entered)
		<-release
		return &genx.Response{Text: "ok"}, nil
	})
	a := NewAnalyst(Profile{Name: "slow"}, &genx.Runner{Generator: gen}, &recorder{})
	a.Enqueue(NewSegment("hello"))

	done := make(chan struct{})
	go func() {
		drain(context.Background(), a)
		close(done)
	}()
	<-entered
	if a.State() != Processing {
		t.Errorf("State = %v, want processing", a.State())
	}
	close(release)
	<-done
	if a.State() != Ready {
		t.Errorf("State = %v, want ready", a.State())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{AwaitingContext: "awaiting_context", Ready: "ready", Processing: "processing", State(9): "state(9)"} {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
