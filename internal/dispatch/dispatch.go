// Package dispatch routes one inbound batch of category payloads to the
// registered per-category handlers and summarizes the outcome. A batch is
// fire-and-forget from the producer's perspective: application is best-effort
// and partial, one category's failure never blocks its siblings, and exactly
// one acknowledgement summary is produced per batch.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrNoEffect is returned by a handler that found nothing actionable in its
// payload. Recorded in the summary as "no-op" rather than a fault.
var ErrNoEffect = errors.New("no effect")

// HandlerFunc applies one category's raw payload.
type HandlerFunc func(payload map[string]any) error

// Logger is the small pluggable logging surface the dispatcher needs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Summary acknowledges one batch. Immutable after Apply returns.
type Summary struct {
	Timestamp time.Time         `json:"timestamp"`
	Applied   []string          `json:"applied,omitempty"`
	Failed    map[string]string `json:"failed,omitempty"`
	Unknown   []string          `json:"unknown,omitempty"`
}

// Dispatcher routes batches to registered category handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger
	clock    func() time.Time

	applied metric.Int64Counter
	failed  metric.Int64Counter
	unknown metric.Int64Counter
}

// New creates a Dispatcher with the given logger. Metrics come from the
// global OTel meter (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		clock:    time.Now,
	}

	m := meter()
	var err error

	d.applied, err = m.Int64Counter(
		"dispatch.categories.applied",
		metric.WithDescription("Category payloads applied successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating applied counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatch.categories.failed",
		metric.WithDescription("Category payloads that failed or had no effect"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.unknown, err = m.Int64Counter(
		"dispatch.categories.unknown",
		metric.WithDescription("Batch keys with no registered handler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unknown counter: %w", err)
	}

	return d, nil
}

// SetClock overrides the summary timestamp source. Tests only.
func (d *Dispatcher) SetClock(clock func() time.Time) {
	d.clock = clock
}

// Register adds a handler for the given batch key.
func (d *Dispatcher) Register(key string, h HandlerFunc) {
	d.handlers[key] = h
}

// HasHandler reports whether a handler is registered for key.
func (d *Dispatcher) HasHandler(key string) bool {
	_, ok := d.handlers[key]
	return ok
}

// Apply processes one inbound batch and always returns a Summary, even when
// every category fails. A non-map envelope rejects the whole batch.
func (d *Dispatcher) Apply(batch any) Summary {
	summary := Summary{
		Timestamp: d.clock(),
		Failed:    make(map[string]string),
	}

	envelope, ok := batch.(map[string]any)
	if !ok {
		summary.Failed["root"] = "invalid-payload"
		d.logger.Error("rejected malformed batch envelope")
		return summary
	}

	// Stable ordering keeps summaries and logs deterministic.
	names := make([]string, 0, len(envelope))
	for name := range envelope {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		h, ok := d.handlers[name]
		if !ok {
			summary.Unknown = append(summary.Unknown, name)
			d.unknown.Add(ctx, 1, metric.WithAttributes(attribute.String("key", name)))
			d.logger.Debug("no handler for batch key", "key", name)
			continue
		}

		payload, _ := envelope[name].(map[string]any)
		err := d.invoke(h, payload, envelope[name])
		attrs := metric.WithAttributes(attribute.String("category", name))

		switch {
		case err == nil:
			summary.Applied = append(summary.Applied, name)
			d.applied.Add(ctx, 1, attrs)
		case errors.Is(err, ErrNoEffect):
			summary.Failed[name] = "no-op"
			d.failed.Add(ctx, 1, attrs)
		default:
			summary.Failed[name] = err.Error()
			d.failed.Add(ctx, 1, attrs)
			d.logger.Error("category handler failed", "category", name, "error", err)
		}
	}

	return summary
}

// invoke runs a handler inside the fault boundary. A panic is captured and
// reported like any other handler error so sibling categories still execute.
func (d *Dispatcher) invoke(h HandlerFunc, payload map[string]any, raw any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	if payload == nil && raw != nil {
		return fmt.Errorf("payload is not a map")
	}
	return h(payload)
}
