package composer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Conceptual-Machines/magda-lsystem-go/lily"
	"github.com/Conceptual-Machines/magda-lsystem-go/metrics"
)

// Renderer engraves LilyPond source. *lily.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context, source, stem string) (*lily.Output, error)
}

// RenderTask is one background render
type RenderTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	out    *lily.Output
	err    error
}

// Done is closed when the render has finished
func (t *RenderTask) Done() <-chan struct{} {
	return t.done
}

// Poll returns the result without blocking. finished is false while the render runs.
func (t *RenderTask) Poll() (out *lily.Output, finished bool, err error) {
	select {
	case <-t.done:
		return t.out, true, t.err
	default:
		return nil, false, nil
	}
}

// Wait blocks until the render finishes or ctx is done
func (t *RenderTask) Wait(ctx context.Context) (*lily.Output, error) {
	select {
	case <-t.done:
		return t.out, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel stops the render
func (t *RenderTask) Cancel() {
	t.cancel()
}

// Regenerator re-renders in the background, keeping at most one render running. Starting a
// new render cancels the previous one.
type Regenerator struct {
	renderer Renderer

	// Metrics and Sentry are optional
	Metrics *metrics.Collector
	Sentry  *metrics.SentryMetrics

	mu      sync.Mutex
	current *RenderTask
}

// NewRegenerator creates a regenerator rendering with r
func NewRegenerator(r Renderer) *Regenerator {
	return &Regenerator{renderer: r}
}

// Start renders source in a new goroutine after cancelling the unfinished previous render
func (g *Regenerator) Start(ctx context.Context, source, stem string) *RenderTask {
	ctx, cancel := context.WithCancel(ctx)
	task := &RenderTask{cancel: cancel, done: make(chan struct{})}

	g.mu.Lock()
	if g.current != nil {
		g.current.cancel()
	}
	g.current = task
	g.mu.Unlock()

	go func() {
		defer close(task.done)
		defer cancel()

		start := time.Now()
		out, err := g.renderer.Render(ctx, source, stem)
		elapsed := time.Since(start)
		task.out, task.err = out, err

		if errors.Is(err, context.Canceled) {
			log.Printf("⏹️  Render of %s superseded", stem)
			return
		}
		if err != nil {
			log.Printf("❌ Render of %s failed: %v", stem, err)
		}
		cached := out != nil && out.Cached
		if g.Metrics != nil {
			g.Metrics.ObserveCache(cached)
			if !cached {
				g.Metrics.ObserveRender("lilypond", elapsed, err)
			}
		}
		if g.Sentry != nil {
			g.Sentry.RecordRender(ctx, "lilypond", elapsed, cached, err)
		}
	}()
	return task
}

// Current returns the most recently started render, or nil
func (g *Regenerator) Current() *RenderTask {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}
