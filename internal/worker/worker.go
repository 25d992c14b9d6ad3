// Package worker moves session recording off the scheduler thread. The
// scheduler enqueues records between ticks; a single writer goroutine drains
// them into the storage backend on its own cadence, so a slow database never
// stretches a tick.
package worker

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/stabrig/rigview/internal/model"
	"github.com/stabrig/rigview/internal/queue"
	"github.com/stabrig/rigview/internal/storage"
)

// DefaultFlushInterval is the writer cadence when none is configured.
const DefaultFlushInterval = 500 * time.Millisecond

// Manager owns the write queues and the writer goroutine.
type Manager struct {
	backend storage.Backend
	log     *slog.Logger

	batches *queue.Queue[*model.BatchRecord]
	samples *queue.Queue[*model.DOFSample]
	traces  *queue.Queue[*model.FrameTrace]

	flushInterval time.Duration
	lastWriteNs   atomic.Int64

	stop chan struct{}
	done chan struct{}
}

// NewManager creates a worker manager. Start must be called to begin writing.
func NewManager(backend storage.Backend, log *slog.Logger, flushInterval time.Duration) *Manager {
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Manager{
		backend:       backend,
		log:           log,
		batches:       queue.New[*model.BatchRecord](),
		samples:       queue.New[*model.DOFSample](),
		traces:        queue.New[*model.FrameTrace](),
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// EnqueueBatch queues one batch record for persistence.
func (m *Manager) EnqueueBatch(rec *model.BatchRecord) {
	m.batches.Push(rec)
}

// EnqueueSample queues one motion sample for persistence.
func (m *Manager) EnqueueSample(s *model.DOFSample) {
	m.samples.Push(s)
}

// EnqueueTrace queues one trace segment for persistence.
func (m *Manager) EnqueueTrace(t *model.FrameTrace) {
	m.traces.Push(t)
}

// QueueDepth reports the records awaiting the next write cycle.
func (m *Manager) QueueDepth() int {
	return m.batches.Len() + m.samples.Len() + m.traces.Len()
}

// LastWriteDuration reports how long the most recent write cycle took.
func (m *Manager) LastWriteDuration() time.Duration {
	return time.Duration(m.lastWriteNs.Load())
}

// Start launches the writer goroutine.
func (m *Manager) Start() {
	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				m.flush()
				return
			case <-ticker.C:
				m.flush()
			}
		}
	}()
}

// Stop drains the queues one final time and waits for the writer to exit.
// Enqueue calls after Stop are lost.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Manager) flush() {
	start := time.Now()
	wrote := false

	for _, rec := range m.batches.Drain() {
		wrote = true
		if err := m.backend.RecordBatch(rec); err != nil {
			m.log.Error("could not record batch", "error", err)
		}
	}
	for _, s := range m.samples.Drain() {
		wrote = true
		if err := m.backend.RecordDOFSample(s); err != nil {
			m.log.Error("could not record motion sample", "error", err)
		}
	}
	for _, tr := range m.traces.Drain() {
		wrote = true
		if err := m.backend.RecordFrameTrace(tr); err != nil {
			m.log.Error("could not record frame trace", "error", err)
		}
	}

	if wrote {
		m.lastWriteNs.Store(int64(time.Since(start)))
	}
}
