package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	dto "github.com/prometheus/client_model/go"
)

// Stage labels.
const (
	StageThumbnail = "thumbnail"
	StageWrite     = "table_write"
	StageRead      = "table_read"
	StageRender    = "render"
	StageSend      = "email_send"
)

const itemsMetric = "upload_pipeline_items_total"

// Outcomes records per-item results of the upload and digest handlers.
type Outcomes struct {
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	gatherer prometheus.Gatherer
	pushURL  string
}

// Option configures Outcomes.
type Option func(*Outcomes)

// WithPushgateway makes Export push the registry to the Pushgateway at url.
// An empty url disables pushing.
func WithPushgateway(url string) Option {
	return func(o *Outcomes) {
		o.pushURL = url
	}
}

// NewOutcomes registers the outcome metrics on the provided registry.
func NewOutcomes(reg *prometheus.Registry, opts ...Option) *Outcomes {
	if reg == nil {
		return &Outcomes{}
	}
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: itemsMetric,
		Help: "Per-item outcomes of upload processing and digest delivery.",
	}, []string{"handler", "stage", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upload_pipeline_invocation_duration_seconds",
		Help:    "Duration of handler invocations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"handler"})
	reg.MustRegister(items, duration)

	o := &Outcomes{
		items:    items,
		duration: duration,
		gatherer: reg,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Record counts one item outcome. result is "ok" or an error code.
func (o *Outcomes) Record(handler, stage, result string) {
	if o == nil || o.items == nil {
		return
	}
	o.items.WithLabelValues(normalizeLabel(handler), normalizeLabel(stage), normalizeLabel(result)).Inc()
}

// ObserveDuration records the duration of one invocation.
func (o *Outcomes) ObserveDuration(handler string, duration time.Duration) {
	if o == nil || o.duration == nil {
		return
	}
	o.duration.WithLabelValues(normalizeLabel(handler)).Observe(duration.Seconds())
}

// Export gathers the registry and returns the item counts of handler keyed by
// "stage.result". Counts are cumulative for the process. With a Pushgateway
// configured the registry is also pushed under job=handler; the counts are
// returned even when the push fails.
func (o *Outcomes) Export(ctx context.Context, handler string) (map[string]float64, error) {
	if o == nil || o.gatherer == nil {
		return nil, nil
	}
	handler = normalizeLabel(handler)

	families, err := o.gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	counts := itemCounts(families, handler)

	if o.pushURL != "" {
		if err := push.New(o.pushURL, handler).Gatherer(o.gatherer).PushContext(ctx); err != nil {
			return counts, fmt.Errorf("push metrics: %w", err)
		}
	}
	return counts, nil
}

func itemCounts(families []*dto.MetricFamily, handler string) map[string]float64 {
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != itemsMetric {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["handler"] != handler {
				continue
			}
			counts[labels["stage"]+"."+labels["result"]] = metric.GetCounter().GetValue()
		}
	}
	return counts
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
