package executor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"newtown/kernel/task"
)

var noopMeter metric.Meter = noop.NewMeterProvider().Meter("newtown/kernel/executor")

type instruments struct {
	polls       metric.Int64Counter
	completions metric.Int64Counter
	kills       metric.Int64Counter
	idleHalts   metric.Int64Counter
}

// newInstruments never fails: an instrument the meter rejects is replaced by
// a no-op one.
func newInstruments(m metric.Meter, reg *task.Registry) instruments {
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			c, _ = noopMeter.Int64Counter(name)
		}
		return c
	}
	_, _ = m.Int64ObservableGauge("newtown.executor.tasks",
		metric.WithDescription("Live tasks."),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(reg.Len()))
			return nil
		}),
	)
	return instruments{
		polls:       counter("newtown.executor.polls", "Task polls."),
		completions: counter("newtown.executor.completions", "Tasks that ran to completion."),
		kills:       counter("newtown.executor.kills", "Tasks removed by a kill request."),
		idleHalts:   counter("newtown.executor.idle_halts", "Times the CPU was halted with nothing ready."),
	}
}
