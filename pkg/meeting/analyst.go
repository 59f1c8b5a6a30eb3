package meeting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/haivivi/meetpilot/pkg/buffer"
	"github.com/haivivi/meetpilot/pkg/genx"
)

// State is the lifecycle phase of an Analyst.
type State int32

const (
	// AwaitingContext: neither an agenda nor a transcript has arrived.
	AwaitingContext State = iota
	// Ready: context is present, waiting for the next item.
	Ready
	// Processing: a model run is in flight.
	Processing
)

func (s State) String() string {
	switch s {
	case AwaitingContext:
		return "awaiting_context"
	case Ready:
		return "ready"
	case Processing:
		return "processing"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ToolContext is passed to every tool call of an analyst run.
type ToolContext struct {
	Emitter Emitter

	// Segment is the transcript segment that triggered the run.
	Segment TranscriptSegment

	// WordCount is the number of words in Segment.
	WordCount int
}

// Tool is a function an analyst exposes to the model.
type Tool = genx.FuncTool[*ToolContext]

// Profile is what distinguishes one analyst from another.
type Profile struct {
	Name         string
	Instructions string
	Tools        []*Tool
}

// item is either a transcript segment or an agenda attachment. Both travel
// through the same queue so history changes stay on the analyst goroutine.
type item struct {
	segment *TranscriptSegment
	agenda  *AgendaInfo
}

// Analyst is a stateful model-backed observer of the meeting.
type Analyst struct {
	agent   *genx.Agent[*ToolContext]
	runner  *genx.Runner
	emitter Emitter
	queue   *buffer.Queue[item]
	state   atomic.Int32

	mu      sync.Mutex
	history []genx.Turn
	agenda  *AgendaInfo
}

// NewAnalyst creates an analyst. Call Run to start processing.
func NewAnalyst(p Profile, r *genx.Runner, emitter Emitter) *Analyst {
	return &Analyst{
		agent: &genx.Agent[*ToolContext]{
			Name:         p.Name,
			Instructions: p.Instructions,
			Tools:        p.Tools,
		},
		runner:  r,
		emitter: emitter,
		queue:   buffer.NewQueue[item](16),
	}
}

func (a *Analyst) Name() string { return a.agent.Name }

func (a *Analyst) State() State { return State(a.state.Load()) }

// Enqueue schedules seg for processing. It never blocks.
func (a *Analyst) Enqueue(seg TranscriptSegment) error {
	return a.queue.Push(item{segment: &seg})
}

// AttachAgenda schedules info to be added to the history as a system turn.
func (a *Analyst) AttachAgenda(info *AgendaInfo) error {
	if info == nil {
		return errors.New("meeting: nil agenda")
	}
	return a.queue.Push(item{agenda: info})
}

// History returns a copy of the conversation history.
func (a *Analyst) History() []genx.Turn {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.history)
}

// Pending returns the number of queued items.
func (a *Analyst) Pending() int { return a.queue.Len() }

// Run processes queued items in order until ctx is done or Close is
// called. A failing item is logged and skipped.
func (a *Analyst) Run(ctx context.Context) error {
	for {
		it, err := a.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, buffer.ErrClosed) {
				return nil
			}
			return err
		}
		slog.Debug("analyst dequeued item", "agent", a.Name(), "pending", a.queue.Len())
		a.process(ctx, it)
	}
}

// Close stops Run and drops pending items.
func (a *Analyst) Close() error {
	return a.queue.Close()
}

func (a *Analyst) process(ctx context.Context, it item) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analyst panicked", "agent", a.Name(), "panic", r, "stack", string(debug.Stack()))
			a.settle()
		}
	}()

	switch {
	case it.agenda != nil:
		a.attach(it.agenda)
	case it.segment != nil:
		if err := a.handleSegment(ctx, *it.segment); err != nil {
			slog.Error("analyst failed to process segment", "agent", a.Name(), "error", err)
		}
	}
}

func (a *Analyst) attach(info *AgendaInfo) {
	a.mu.Lock()
	a.agenda = info
	a.history = append(a.history, genx.SystemTurn(info.Prompt()))
	a.mu.Unlock()
	a.state.CompareAndSwap(int32(AwaitingContext), int32(Ready))
	slog.Info("agenda attached", "agent", a.Name(), "title", info.Title, "items", len(info.Items()))
}

func (a *Analyst) handleSegment(ctx context.Context, seg TranscriptSegment) error {
	if strings.TrimSpace(seg.Text) == "" {
		if a.State() == AwaitingContext {
			slog.Info("waiting for agenda or transcript before processing", "agent", a.Name())
		}
		return nil
	}

	a.mu.Lock()
	a.history = append(a.history, genx.UserTurn(seg.Text))
	history := slices.Clone(a.history)
	a.mu.Unlock()

	a.state.Store(int32(Processing))
	defer a.settle()

	res, err := a.agent.Run(ctx, a.runner, history, &ToolContext{
		Emitter:   a.emitter,
		Segment:   seg,
		WordCount: seg.WordCount(),
	})
	if err != nil {
		return err
	}
	slog.Debug("analyst output", "agent", a.Name(), "output", res.FinalOutput)

	a.mu.Lock()
	a.history = res.History
	a.mu.Unlock()
	return nil
}

// settle moves the analyst back to Ready, or to AwaitingContext if it
// still has nothing to work with.
func (a *Analyst) settle() {
	a.mu.Lock()
	empty := a.agenda == nil && len(a.history) == 0
	a.mu.Unlock()
	if empty {
		a.state.Store(int32(AwaitingContext))
	} else {
		a.state.Store(int32(Ready))
	}
}
