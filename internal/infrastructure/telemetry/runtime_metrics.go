package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RuntimeMetrics implements the actor runtime's metrics sink on OpenTelemetry.
// Activations and evictions feed a gauge of resident actors per type; command
// latency lands in a histogram labeled by actor type, command type, and outcome.
type RuntimeMetrics struct {
	logger *zap.Logger

	activationsTotal *Counter
	evictionsTotal   *Counter
	commandsTotal    *Counter
	rejectionsTotal  *Counter
	commandDuration  *Histogram
}

// NewRuntimeMetrics creates actor runtime metrics on the given meter
func NewRuntimeMetrics(meter metric.Meter, logger *zap.Logger) (*RuntimeMetrics, error) {
	activations, err := NewCounter(meter,
		"actor.activations.total", "Total actor activations", "{activation}")
	if err != nil {
		return nil, err
	}
	evictions, err := NewCounter(meter,
		"actor.evictions.total", "Total actor evictions", "{eviction}")
	if err != nil {
		return nil, err
	}
	commands, err := NewCounter(meter,
		"actor.commands.total", "Total commands processed", "{command}")
	if err != nil {
		return nil, err
	}
	rejections, err := NewCounter(meter,
		"actor.mailbox.rejections.total", "Commands rejected by a full mailbox", "{command}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "actor.command.duration",
		Description: "Command processing latency",
		Unit:        "s",
		Boundaries:  []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		logger:           logger,
		activationsTotal: activations,
		evictionsTotal:   evictions,
		commandsTotal:    commands,
		rejectionsTotal:  rejections,
		commandDuration:  duration,
	}, nil
}

// ActorActivated records one actor activation
func (m *RuntimeMetrics) ActorActivated(actorType string) {
	m.activationsTotal.Inc(context.Background(), AttrActorType.String(actorType))
}

// ActorEvicted records one idle eviction
func (m *RuntimeMetrics) ActorEvicted(actorType string) {
	m.evictionsTotal.Inc(context.Background(), AttrActorType.String(actorType))
}

// CommandProcessed records a processed command with its latency and outcome
func (m *RuntimeMetrics) CommandProcessed(actorType, commandType string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := []attribute.KeyValue{
		AttrActorType.String(actorType),
		AttrCommandType.String(commandType),
		AttrOutcome.String(outcome),
	}
	ctx := context.Background()
	m.commandsTotal.Inc(ctx, attrs...)
	m.commandDuration.RecordDuration(ctx, elapsed, attrs...)
}

// MailboxRejected records a command bounced by a full mailbox
func (m *RuntimeMetrics) MailboxRejected(actorType string) {
	m.rejectionsTotal.Inc(context.Background(), AttrActorType.String(actorType))
}
