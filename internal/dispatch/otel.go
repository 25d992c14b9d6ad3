package dispatch

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/stabrig/rigview/internal/dispatch"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
