// Package storage defines the session recorder interface and its factory.
// Recording is an optional collaborator: the engine core never touches it,
// the scheduler feeds it from published snapshots and batch summaries.
package storage

import (
	"time"

	"github.com/stabrig/rigview/internal/model"
)

// Backend is the interface all recorder implementations satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *model.Session) error
	EndSession(endedAt time.Time) error

	// Recording
	RecordBatch(b *model.BatchRecord) error
	RecordDOFSample(s *model.DOFSample) error
	RecordFrameTrace(t *model.FrameTrace) error
}
