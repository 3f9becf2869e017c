package orders

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type placementMetrics struct {
	placements metric.Int64Counter
	duration   metric.Float64Histogram
}

func newPlacementMetrics(meter metric.Meter) (*placementMetrics, error) {
	placements, err := meter.Int64Counter("orders.placements",
		metric.WithDescription("Order placement attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("orders.placement.duration",
		metric.WithDescription("Order placement latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &placementMetrics{placements: placements, duration: duration}, nil
}

func (m *placementMetrics) record(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.placements.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
