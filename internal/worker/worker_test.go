package worker

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stabrig/rigview/internal/model"
	"github.com/stabrig/rigview/internal/storage/memory"
)

func startedBackend(t *testing.T) *memory.Backend {
	t.Helper()
	b := memory.New()
	require.NoError(t, b.StartSession(&model.Session{SessionID: "test", StartedAt: time.Now()}))
	return b
}

func TestStopDrainsQueues(t *testing.T) {
	b := startedBackend(t)
	m := NewManager(b, slog.New(slog.DiscardHandler), time.Hour) // only the final flush runs
	m.Start()

	m.EnqueueBatch(&model.BatchRecord{Timestamp: time.Now()})
	m.EnqueueSample(&model.DOFSample{Time: time.Now(), Heave: 0.01})
	m.EnqueueSample(&model.DOFSample{Time: time.Now(), Heave: 0.02})
	m.EnqueueTrace(&model.FrameTrace{Samples: 2})
	assert.Equal(t, 4, m.QueueDepth())

	m.Stop()

	assert.Equal(t, 0, m.QueueDepth())
	assert.Len(t, b.Batches(), 1)
	assert.Len(t, b.Samples(), 2)
	assert.Len(t, b.Traces(), 1)
	assert.Greater(t, m.LastWriteDuration(), time.Duration(0))
}

func TestPeriodicFlush(t *testing.T) {
	b := startedBackend(t)
	m := NewManager(b, slog.New(slog.DiscardHandler), 10*time.Millisecond)
	m.Start()
	defer m.Stop()

	m.EnqueueSample(&model.DOFSample{Time: time.Now()})

	deadline := time.Now().Add(2 * time.Second)
	for len(b.Samples()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sample was never flushed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRecordErrorsAreLoggedNotFatal(t *testing.T) {
	// No StartSession, so every record fails with ErrNoSession.
	b := memory.New()
	m := NewManager(b, slog.New(slog.DiscardHandler), time.Hour)
	m.Start()

	m.EnqueueBatch(&model.BatchRecord{})
	m.Stop()

	assert.Empty(t, b.Batches())
	assert.Equal(t, 0, m.QueueDepth())
}
