// Package observe provides observability primitives for the resolution
// service: OpenTelemetry metrics, tracing helpers, and HTTP middleware.
//
// Metrics are recorded through the OpenTelemetry Metrics API with a
// Prometheus exporter bridge (see [InitProvider]) so they can be scraped
// via the standard /metrics endpoint. Tests should construct their own
// [Metrics] with a private meter provider to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for all resolution metrics.
const meterName = "github.com/iTherapyLLC/innervoice"

// Metrics holds the OTel metric instruments for the resolution pipeline.
// All fields are safe for concurrent use.
type Metrics struct {
	// ResolveDuration tracks end-to-end utterance resolution latency in
	// seconds. Attribute: stage ("grammar", "arbiter", "conversation").
	ResolveDuration metric.Float64Histogram

	// GrammarMatches counts deterministic grammar hits. Attribute: rule.
	GrammarMatches metric.Int64Counter

	// ArbiterCalls counts arbiter escalations. Attribute: status
	// ("resolved", "failed", "error").
	ArbiterCalls metric.Int64Counter

	// ArbiterConfidence records the confidence the arbiter reported on
	// successful resolutions.
	ArbiterConfidence metric.Float64Histogram

	// FallbackResponses counts conversational fallback replies, including
	// degradations to the fixed apology. Attribute: outcome ("completion",
	// "apology").
	FallbackResponses metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time in seconds.
	// Attributes: method, route, status.
	HTTPRequestDuration metric.Float64Histogram
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide [Metrics] built from the global meter
// provider. The first call creates the instruments.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			// Instrument creation only fails on malformed names, which
			// would be a programming error caught by any test run.
			panic(err)
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// NewMetrics creates all instruments on the given provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.ResolveDuration, err = meter.Float64Histogram(
		"innervoice.resolve.duration",
		metric.WithDescription("End-to-end utterance resolution latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.GrammarMatches, err = meter.Int64Counter(
		"innervoice.grammar.matches",
		metric.WithDescription("Deterministic grammar rule hits"),
	); err != nil {
		return nil, err
	}

	if m.ArbiterCalls, err = meter.Int64Counter(
		"innervoice.arbiter.calls",
		metric.WithDescription("Arbiter escalations by outcome"),
	); err != nil {
		return nil, err
	}

	if m.ArbiterConfidence, err = meter.Float64Histogram(
		"innervoice.arbiter.confidence",
		metric.WithDescription("Confidence reported on arbiter resolutions"),
	); err != nil {
		return nil, err
	}

	if m.FallbackResponses, err = meter.Int64Counter(
		"innervoice.fallback.responses",
		metric.WithDescription("Conversational fallback replies by outcome"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"innervoice.http.request.duration",
		metric.WithDescription("HTTP request processing time"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordGrammarMatch increments the grammar hit counter for a rule.
func (m *Metrics) RecordGrammarMatch(ctx context.Context, rule string) {
	m.GrammarMatches.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

// RecordArbiter records one arbiter call outcome; confidence is only
// recorded for resolved calls.
func (m *Metrics) RecordArbiter(ctx context.Context, status string, confidence float64) {
	m.ArbiterCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	if status == "resolved" {
		m.ArbiterConfidence.Record(ctx, confidence)
	}
}

// RecordResolve records end-to-end latency for the stage that produced the
// response.
func (m *Metrics) RecordResolve(ctx context.Context, stage string, seconds float64) {
	m.ResolveDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordFallback counts one conversational fallback reply.
func (m *Metrics) RecordFallback(ctx context.Context, outcome string) {
	m.FallbackResponses.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
