package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request types used as the "type" label.
const (
	TypeChat      = "chat"
	TypeSummarize = "summarize"
	TypeTranslate = "translate"
	TypeImage     = "image"
	TypeSTT       = "stt"
	TypeTTS       = "tts"
	TypeCommit    = "commit"
	TypePRPolish  = "pr_polish"
	TypeRAG       = "rag"
)

// Metrics holds the model call collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	latency      *prometheus.HistogramVec
	requests     *prometheus.CounterVec
	errors       *prometheus.CounterVec
	promptChars  *prometheus.SummaryVec
	promptTokens *prometheus.SummaryVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_latency_seconds",
			Help:    "Latency of model backed requests.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Model backed requests by type.",
		}, []string{"type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_errors_total",
			Help: "Failed model backed requests by type.",
		}, []string{"type"}),
		promptChars: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "ai_prompt_chars",
			Help:       "Prompt size in characters.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"type"}),
		promptTokens: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "ai_prompt_tokens",
			Help:       "Estimated prompt size in tokens.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		m.latency, m.requests, m.errors, m.promptChars, m.promptTokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one finished request of the given type.
func (m *Metrics) Observe(typ string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(typ).Inc()
	m.latency.WithLabelValues(typ).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errors.WithLabelValues(typ).Inc()
	}
}

// ObservePrompt records the size of a prompt sent to the model.
func (m *Metrics) ObservePrompt(typ string, chars, tokens int) {
	if m == nil {
		return
	}
	m.promptChars.WithLabelValues(typ).Observe(float64(chars))
	if tokens > 0 {
		m.promptTokens.WithLabelValues(typ).Observe(float64(tokens))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
