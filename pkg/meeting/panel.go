package meeting

import (
	"context"
	"log/slog"
	"sync"
)

// Panel runs the analysts of one connection. Every input is fanned out to
// all of them; delivery only enqueues, so a slow analyst never holds up
// the others or the caller.
type Panel struct {
	analysts []*Analyst

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewPanel starts one goroutine per analyst. They stop when parent is
// done or Stop is called.
func NewPanel(parent context.Context, analysts ...*Analyst) *Panel {
	ctx, cancel := context.WithCancel(parent)
	p := &Panel{analysts: analysts, ctx: ctx, cancel: cancel}
	for _, a := range analysts {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := a.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("analyst stopped", "agent", a.Name(), "error", err)
			}
		}()
	}
	return p
}

func (p *Panel) Analysts() []*Analyst { return p.analysts }

// Deliver enqueues seg on every analyst.
func (p *Panel) Deliver(seg TranscriptSegment) {
	for _, a := range p.analysts {
		if err := a.Enqueue(seg); err != nil {
			slog.Warn("drop segment", "agent", a.Name(), "error", err)
		}
	}
}

// AttachAgenda hands info to every analyst.
func (p *Panel) AttachAgenda(info *AgendaInfo) {
	for _, a := range p.analysts {
		if err := a.AttachAgenda(info); err != nil {
			slog.Warn("drop agenda", "agent", a.Name(), "error", err)
		}
	}
}

// Stop cancels in-flight runs, discards pending items and waits for every
// analyst goroutine to exit.
func (p *Panel) Stop() {
	p.once.Do(func() {
		p.cancel()
		for _, a := range p.analysts {
			a.Close()
		}
	})
	p.wg.Wait()
}
