package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/stabrig/rigview/internal/engine"

func meter() metric.Meter {
	return otel.GetMeterProvider().Meter(instrumentationName)
}

// registerMetrics wires the pending-queue depth gauge. The queue is the only
// engine state other threads write, so it is the one worth watching.
func (e *Engine) registerMetrics() error {
	m := meter()
	_, err := m.Int64ObservableGauge(
		"engine.pending.depth",
		metric.WithDescription("Batches enqueued and not yet drained by a tick"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(e.pending.Len()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("creating pending depth gauge: %w", err)
	}
	return nil
}
