package gormdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/stabrig/rigview/internal/model"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := NewSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSessionLifecycle(t *testing.T) {
	b := openTestBackend(t)

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	sess := &model.Session{
		SessionID: "6f1c2a34-9be2-4c3d-8e11-0a53a1a7b001",
		StartedAt: started,
		Config:    datatypes.JSON([]byte(`{"scheduler":{"tickMs":16}}`)),
	}
	require.NoError(t, b.StartSession(sess))
	assert.NotZero(t, sess.ID)

	require.NoError(t, b.RecordBatch(&model.BatchRecord{
		Timestamp: started.Add(time.Second),
		Payload:   datatypes.JSON([]byte(`{"leverAngles":{"fl":0.2}}`)),
		Applied:   datatypes.JSON([]byte(`["leverAngles"]`)),
	}))
	require.NoError(t, b.RecordDOFSample(&model.DOFSample{
		Time:    started.Add(time.Second),
		LeverFL: 0.2,
		Running: true,
	}))
	require.NoError(t, b.RecordFrameTrace(&model.FrameTrace{
		StartedAt: started,
		EndedAt:   started.Add(2 * time.Second),
		Samples:   120,
		Geometry:  []byte{0x01, 0x02},
	}))

	require.NoError(t, b.EndSession(started.Add(3*time.Second)))

	var got model.Session
	require.NoError(t, b.db.First(&got, sess.ID).Error)
	assert.True(t, got.EndedAt.Valid)

	var batches, samples, traces int64
	require.NoError(t, b.db.Model(&model.BatchRecord{}).Where("session_id = ?", sess.ID).Count(&batches).Error)
	require.NoError(t, b.db.Model(&model.DOFSample{}).Where("session_id = ?", sess.ID).Count(&samples).Error)
	require.NoError(t, b.db.Model(&model.FrameTrace{}).Where("session_id = ?", sess.ID).Count(&traces).Error)
	assert.EqualValues(t, 1, batches)
	assert.EqualValues(t, 1, samples)
	assert.EqualValues(t, 1, traces)
}

func TestRecordWithoutSession(t *testing.T) {
	b := openTestBackend(t)

	assert.ErrorIs(t, b.RecordDOFSample(&model.DOFSample{}), ErrNoSession)
	assert.ErrorIs(t, b.RecordBatch(&model.BatchRecord{}), ErrNoSession)
	assert.ErrorIs(t, b.EndSession(time.Now()), ErrNoSession)
}
