// Package metrics counts what an ingestion batch did and writes the counts as
// a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "ccsg"

// Batch holds the metrics of one batch on a private registry, so that
// several batches in one process never collide.
type Batch struct {
	registry *prometheus.Registry

	// Records counts processed records by kind, status and reason.
	Records *prometheus.CounterVec

	// TriplesAdded counts triples new to the work graph.
	TriplesAdded prometheus.Counter

	// Duration is the wall time of the last batch in seconds.
	Duration prometheus.Gauge

	// LastRun is the Unix time the last batch finished.
	LastRun prometheus.Gauge
}

// NewBatch creates and registers the batch metrics.
func NewBatch() *Batch {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Batch{
		registry: reg,
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Citation records processed, by entry kind, status and failure reason.",
		}, []string{"kind", "status", "reason"}),
		TriplesAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ingest",
			Name:      "triples_added_total",
			Help:      "Triples added to the work graph.",
		}),
		Duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "ingest",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of the last batch.",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "ingest",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch finished.",
		}),
	}
}

// RecordOutcome counts one record.
func (b *Batch) RecordOutcome(kind, status, reason string) {
	if kind == "" {
		kind = "unknown"
	}
	if reason == "" {
		reason = "none"
	}
	b.Records.WithLabelValues(kind, status, reason).Inc()
}

// AddTriples counts triples written for a record.
func (b *Batch) AddTriples(n int) {
	b.TriplesAdded.Add(float64(n))
}

// Finish records when the batch ended and how long it took.
func (b *Batch) Finish(started, finished time.Time) {
	b.Duration.Set(finished.Sub(started).Seconds())
	b.LastRun.Set(float64(finished.Unix()))
}

// Registry exposes the metrics for gathering.
func (b *Batch) Registry() *prometheus.Registry {
	return b.registry
}

// WriteTextfile writes the metrics in the text exposition format, replacing
// path atomically.
func (b *Batch) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, b.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
