package objective

import (
	"context"

	"github.com/OCAP2/objectives/pkg/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/objectives/internal/objective"

type metrics struct {
	added       metric.Int64Counter
	transitions metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)

	added, err := m.Int64Counter(
		"objectives.added",
		metric.WithDescription("Total objectives created"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := m.Int64Counter(
		"objectives.transitions",
		metric.WithDescription("Objective state transitions by resulting state"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{added: added, transitions: transitions}, nil
}

func (m *metrics) recordAdd(o *core.Objective) {
	if m == nil {
		return
	}
	m.added.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("category", o.Category.String())))
}

func (m *metrics) recordTransition(o *core.Objective) {
	if m == nil {
		return
	}
	m.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("state", o.State.String()),
		attribute.String("category", o.Category.String()),
	))
}
