package composer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Conceptual-Machines/magda-lsystem-go/lily"
	"github.com/Conceptual-Machines/magda-lsystem-go/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRenderer renders "slow" until its context is cancelled and everything else at once
type blockingRenderer struct {
	started chan string
}

func (r *blockingRenderer) Render(ctx context.Context, source, stem string) (*lily.Output, error) {
	if r.started != nil {
		r.started <- stem
	}
	if source == "slow" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if source == "broken" {
		return nil, errors.New("lilypond exploded")
	}
	return &lily.Output{Pages: []string{stem + ".png"}, MIDI: stem + ".midi"}, nil
}

func TestRegeneratorRenders(t *testing.T) {
	g := NewRegenerator(&blockingRenderer{})
	g.Metrics = metrics.NewCollector(prometheus.NewRegistry())
	g.Sentry = metrics.NewSentryMetrics()

	task := g.Start(context.Background(), "fast", "score")
	out, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"score.png"}, out.Pages)

	polled, finished, err := task.Poll()
	assert.True(t, finished)
	assert.NoError(t, err)
	assert.Same(t, out, polled)
	assert.Same(t, task, g.Current())
}

func TestRegeneratorCancelsPrevious(t *testing.T) {
	started := make(chan string, 2)
	g := NewRegenerator(&blockingRenderer{started: started})

	first := g.Start(context.Background(), "slow", "first")
	assert.Equal(t, "first", <-started)

	_, finished, _ := first.Poll()
	assert.False(t, finished)

	second := g.Start(context.Background(), "fast", "second")

	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("first render was not cancelled")
	}
	_, err := first.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)

	out, err := second.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second.midi", out.MIDI)
}

func TestRegeneratorReportsFailure(t *testing.T) {
	g := NewRegenerator(&blockingRenderer{})
	_, err := g.Start(context.Background(), "broken", "x").Wait(context.Background())
	assert.EqualError(t, err, "lilypond exploded")
}

func TestRenderTaskWaitHonoursContext(t *testing.T) {
	g := NewRegenerator(&blockingRenderer{})
	task := g.Start(context.Background(), "slow", "x")
	defer task.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
