package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promEventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "ingest",
		Name:      "events_processed_total",
	})
	promSyncBatches = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "ingest",
		Name:      "sync_batches_total",
	})
	promCheckpoint = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "ingest",
		Name:      "checkpoint_id",
	})
	promIndexersTouched = promauto.NewGauge(prometheus.GaugeOpts{
		Subsystem: "ingest",
		Name:      "indexers_touched",
	})
)

// observeBatch records one committed sync batch.
func observeBatch(events, indexers int, checkpointID int64) {
	promEventsProcessed.Add(float64(events))
	promSyncBatches.Inc()
	promCheckpoint.Set(float64(checkpointID))
	promIndexersTouched.Set(float64(indexers))
}
