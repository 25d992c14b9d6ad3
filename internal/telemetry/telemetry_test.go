package telemetry

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stabrig/rigview/internal/config"
	"github.com/stabrig/rigview/internal/dispatch"
	"github.com/stabrig/rigview/internal/engine"
)

var t0 = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func TestSnapshotPoint(t *testing.T) {
	snap := &engine.Snapshot{
		At:             t0,
		LeverAngles:    engine.Corners{FL: 0.2, FR: -0.1},
		Frame:          engine.FramePose{Heave: 0.01, Roll: 0.02, Pitch: 0.03},
		Running:        true,
		FallbackActive: true,
	}

	p := SnapshotPoint("sess-1", snap)
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	assert.True(t, strings.HasPrefix(line, "dof_sample,session=sess-1 "))
	assert.Contains(t, line, "lever_fl=0.2")
	assert.Contains(t, line, "lever_fr=-0.1")
	assert.Contains(t, line, "heave=0.01")
	assert.Contains(t, line, "fallback_active=true")
}

func TestSummaryPoint(t *testing.T) {
	s := dispatch.Summary{
		Timestamp: t0,
		Applied:   []string{"geometry", "lighting"},
		Failed:    map[string]string{"camera": "no-op"},
		Unknown:   []string{"bogus"},
	}

	p := SummaryPoint("sess-1", s)
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	assert.True(t, strings.HasPrefix(line, "batch_summary,session=sess-1 "))
	assert.Contains(t, line, "applied=2i")
	assert.Contains(t, line, "failed=1i")
	assert.Contains(t, line, "unknown=1i")
}

func TestWritePoint_BackupFallback(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "backup.lp.gz")

	// No Connect call: the manager is invalid, so wire the backup writer
	// the way a failed ping would.
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), backup)
	file, err := os.OpenFile(backup, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	m.BackupWriter = gzip.NewWriter(file)

	snap := &engine.Snapshot{At: t0, LeverAngles: engine.Corners{FL: 0.5}}
	require.NoError(t, m.WritePoint(context.Background(), BucketMotion, SnapshotPoint("s", snap)))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	buf := make([]byte, 4096)
	n, _ := zr.Read(buf)

	assert.Contains(t, string(buf[:n]), "dof_sample")
	assert.Contains(t, string(buf[:n]), "lever_fl=0.5")
}

func TestWritePoint_NoSinkErrors(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), "")
	snap := &engine.Snapshot{At: t0}

	err := m.WritePoint(context.Background(), BucketMotion, SnapshotPoint("s", snap))
	assert.Error(t, err)
}

func TestConnect_DisabledErrors(t *testing.T) {
	m := NewManager(config.InfluxConfig{Enabled: false}, zerolog.Nop(), "")
	assert.Error(t, m.Connect())
}
