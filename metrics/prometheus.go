package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus series for generation and rendering
type Collector struct {
	steps          prometheus.Counter
	rulesApplied   *prometheus.CounterVec
	wordLength     prometheus.Histogram
	renderDuration *prometheus.HistogramVec
	renderCache    *prometheus.CounterVec
	proposals      *prometheus.CounterVec
}

// NewCollector registers the series on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		steps: f.NewCounter(prometheus.CounterOpts{
			Name: "lsystem_steps_total",
			Help: "Rewrite passes performed",
		}),
		rulesApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lsystem_rules_applied_total",
			Help: "Rule applications by rewritten symbol",
		}, []string{"symbol"}),
		wordLength: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lsystem_word_length",
			Help:    "Length of the word after each pass",
			Buckets: prometheus.ExponentialBuckets(8, 4, 8),
		}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lsystem_render_duration_seconds",
			Help:    "External tool run time",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tool", "result"}),
		renderCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lsystem_render_cache_total",
			Help: "Render cache lookups by result",
		}, []string{"result"}),
		proposals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lsystem_llm_proposals_total",
			Help: "LLM grammar proposals by provider and result",
		}, []string{"provider", "result"}),
	}
}

// ObserveStep records one pass: the context character of every applied rule and the new word length
func (c *Collector) ObserveStep(contextChars []byte, wordLen int) {
	c.steps.Inc()
	for _, ch := range contextChars {
		c.rulesApplied.WithLabelValues(string(ch)).Inc()
	}
	c.wordLength.Observe(float64(wordLen))
}

// ObserveRender records a tool run
func (c *Collector) ObserveRender(tool string, d time.Duration, err error) {
	c.renderDuration.WithLabelValues(tool, result(err)).Observe(d.Seconds())
}

// ObserveCache records a render cache lookup
func (c *Collector) ObserveCache(hit bool) {
	if hit {
		c.renderCache.WithLabelValues("hit").Inc()
		return
	}
	c.renderCache.WithLabelValues("miss").Inc()
}

// ObserveProposal records an LLM proposal attempt
func (c *Collector) ObserveProposal(provider string, err error) {
	c.proposals.WithLabelValues(provider, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
