package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveStep([]byte("FF+"), 12)
	c.ObserveStep([]byte("F"), 20)
	c.ObserveCache(true)
	c.ObserveCache(false)
	c.ObserveCache(false)
	c.ObserveRender("lilypond", time.Second, nil)
	c.ObserveProposal("openai", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.steps))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.rulesApplied.WithLabelValues("F")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rulesApplied.WithLabelValues("+")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.renderCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.renderCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.proposals.WithLabelValues("openai", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.renderDuration))
}

func TestCollectorsAreIndependent(t *testing.T) {
	// a fresh registry per collector must not panic on duplicate registration
	assert.NotPanics(t, func() {
		NewCollector(prometheus.NewRegistry())
		NewCollector(prometheus.NewRegistry())
	})
}

func TestSentryMetricsWithoutClient(t *testing.T) {
	m := NewSentryMetrics()
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordGeneration(ctx, 3, 5, 120, time.Millisecond)
		m.RecordRender(ctx, "lilypond", time.Second, true, nil)
		m.RecordRender(ctx, "lilypond", time.Second, false, errors.New("failed"))
		m.RecordProposal(ctx, "gemini", 2, time.Second, false)
		m.RecordTokenUsage(ctx, "gpt-5", 10, 20)
	})
}
