package encounter

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/cyborstrike/combatcore/internal/encounter"

type metrics struct {
	shots    metric.Int64Counter
	hits     metric.Int64Counter
	kills    metric.Int64Counter
	missions metric.Int64Counter
}

// newMetrics uses the global OTel meter, a no-op unless a provider is set.
func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)
	if out.shots, err = m.Int64Counter("encounter.shots.fired",
		metric.WithDescription("Successful weapon discharges")); err != nil {
		return nil, fmt.Errorf("creating shots counter: %w", err)
	}
	if out.hits, err = m.Int64Counter("encounter.hits",
		metric.WithDescription("Damage events resolved")); err != nil {
		return nil, fmt.Errorf("creating hits counter: %w", err)
	}
	if out.kills, err = m.Int64Counter("encounter.kills",
		metric.WithDescription("Entities defeated")); err != nil {
		return nil, fmt.Errorf("creating kills counter: %w", err)
	}
	if out.missions, err = m.Int64Counter("encounter.missions.ended",
		metric.WithDescription("Mission attempts ended, by outcome")); err != nil {
		return nil, fmt.Errorf("creating missions counter: %w", err)
	}
	return &out, nil
}
