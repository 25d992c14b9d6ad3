// Package memory implements the recorder backend with in-process slices.
// Used when no database is configured and as the test double for the
// recording pipeline.
package memory

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/stabrig/rigview/internal/model"
)

// ErrNoSession is returned when recording is attempted before StartSession.
var ErrNoSession = errors.New("no active session")

// Backend stores recorded data in memory.
type Backend struct {
	mu sync.Mutex

	session *model.Session
	batches []model.BatchRecord
	samples []model.DOFSample
	traces  []model.FrameTrace

	nextID uint
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{nextID: 1}
}

// Init is a no-op for the memory backend.
func (b *Backend) Init() error {
	return nil
}

// Close is a no-op for the memory backend.
func (b *Backend) Close() error {
	return nil
}

// StartSession begins a session, assigning its ID.
func (b *Backend) StartSession(s *model.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s.ID = b.nextID
	b.nextID++
	b.session = s
	return nil
}

// EndSession stamps the active session's end time.
func (b *Backend) EndSession(endedAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	b.session.EndedAt = sql.NullTime{Time: endedAt, Valid: true}
	return nil
}

// RecordBatch stores one batch record.
func (b *Backend) RecordBatch(rec *model.BatchRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	rec.ID = b.nextID
	b.nextID++
	rec.SessionID = b.session.ID
	b.batches = append(b.batches, *rec)
	return nil
}

// RecordDOFSample stores one motion sample.
func (b *Backend) RecordDOFSample(s *model.DOFSample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	s.ID = b.nextID
	b.nextID++
	s.SessionID = b.session.ID
	b.samples = append(b.samples, *s)
	return nil
}

// RecordFrameTrace stores one trace segment.
func (b *Backend) RecordFrameTrace(t *model.FrameTrace) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	t.ID = b.nextID
	b.nextID++
	t.SessionID = b.session.ID
	b.traces = append(b.traces, *t)
	return nil
}

// Session returns the active session, or nil.
func (b *Backend) Session() *model.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

// Batches returns a copy of the recorded batch records.
func (b *Backend) Batches() []model.BatchRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.BatchRecord(nil), b.batches...)
}

// Samples returns a copy of the recorded motion samples.
func (b *Backend) Samples() []model.DOFSample {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.DOFSample(nil), b.samples...)
}

// Traces returns a copy of the recorded trace segments.
func (b *Backend) Traces() []model.FrameTrace {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.FrameTrace(nil), b.traces...)
}
