// Command rigview runs the update synchronization and motion smoothing
// service for the stabilizer rig front-end. It receives update batches over
// UDP, applies them on a fixed scheduler tick, and publishes smoothed motion
// snapshots while recording the session.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stabrig/rigview/internal/api"
	"github.com/stabrig/rigview/internal/config"
	"github.com/stabrig/rigview/internal/dispatch"
	"github.com/stabrig/rigview/internal/engine"
	"github.com/stabrig/rigview/internal/feed"
	"github.com/stabrig/rigview/internal/logging"
	"github.com/stabrig/rigview/internal/model"
	"github.com/stabrig/rigview/internal/monitor"
	"github.com/stabrig/rigview/internal/motion"
	intOtel "github.com/stabrig/rigview/internal/otel"
	"github.com/stabrig/rigview/internal/storage"
	"github.com/stabrig/rigview/internal/telemetry"
	"github.com/stabrig/rigview/internal/trace"
	"github.com/stabrig/rigview/internal/worker"
)

// Version can be overridden at build time via ldflags.
var Version = "0.1.0"

const appName = "rigview"

const (
	// sampleInterval paces DOF sample recording; ticks run much faster.
	sampleInterval = 250 * time.Millisecond

	// traceFlushInterval bounds how much phase-space trace one segment holds.
	traceFlushInterval = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rigview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	sessionStart := time.Now()
	sessionID := uuid.NewString()

	if err := config.Load("."); err != nil {
		fmt.Fprintf(os.Stderr, "rigview: config load failed, using defaults: %v\n", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, appName, sessionStart)
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	otelCfg := config.Otel()
	otelProvider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  appName,
		BatchTimeout: 5 * time.Second,
		LogWriter:    logFile,
		Endpoint:     otelCfg.OtlpEndpoint,
	})
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}

	// The engine is created after logging, so the context provider closes
	// over the variable and starts stamping attributes once it exists.
	var eng *engine.Engine
	rigContext := func() []slog.Attr {
		attrs := []slog.Attr{slog.String("session", sessionID)}
		if eng != nil {
			snap := eng.Snapshot()
			attrs = append(attrs,
				slog.Bool("running", snap.Running),
				slog.Bool("fallbackActive", snap.FallbackActive),
			)
		}
		return attrs
	}

	graylogCfg := config.Graylog()
	gelfAddr := ""
	if graylogCfg.Enabled {
		gelfAddr = graylogCfg.Address
	}

	slogMgr := logging.NewSlogManager()
	if err := slogMgr.Setup(logging.SetupOptions{
		File:        logFile,
		Level:       config.GetString("logLevel"),
		Provider:    otelProvider.LoggerProvider(),
		GelfAddress: gelfAddr,
		Context:     rigContext,
	}); err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	logger := slogMgr.Logger()
	logger.Info("rigview starting", "version", Version, "session", sessionID, "log", logPath)

	zlog := zerolog.New(logFile).With().Timestamp().Str("session", sessionID).Logger()

	engCfg := engineConfig(logger)
	eng, err = engine.New(engine.Options{
		Config:      &engCfg,
		Log:         logger,
		DispatchLog: logging.NewDispatcherLogger(zlog),
	})
	if err != nil {
		return fmt.Errorf("engine setup: %w", err)
	}

	storageCfg := config.Storage()
	backend, err := storage.NewBackend(storageCfg)
	if err != nil {
		return fmt.Errorf("storage setup: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer backend.Close()

	if err := backend.StartSession(&model.Session{
		SessionID: sessionID,
		StartedAt: sessionStart,
		Config:    effectiveConfig(),
	}); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	logger.Info("session recording started", "backend", storageCfg.Backend)

	writer := worker.NewManager(backend, logger, 0)
	writer.Start()

	influxCfg := config.Influx()
	var tele *telemetry.Manager
	if influxCfg.Enabled {
		backupPath := filepath.Join(logsDir,
			fmt.Sprintf("%s.telemetry.%s.lp.gz", appName, sessionStart.Format("20060102_150405")))
		tele = telemetry.NewManager(influxCfg, zlog, backupPath)
		if err := tele.Connect(); err != nil {
			logger.Error("telemetry disabled", "error", err)
			tele = nil
		}
	}

	apiCfg := config.Api()
	frontend := api.New(apiCfg.ServerUrl, apiCfg.ApiKey)
	if err := frontend.Healthcheck(); err != nil {
		logger.Info("front-end is offline", "url", apiCfg.ServerUrl)
	} else {
		logger.Info("front-end is online", "url", apiCfg.ServerUrl)
	}

	statusMon := monitor.NewService(monitor.Dependencies{
		Engine:     eng,
		Worker:     writer,
		SessionID:  sessionID,
		StatusPath: filepath.Join(logsDir, "status.json"),
		Interval:   time.Second,
	})
	if err := statusMon.Start(); err != nil {
		logger.Error("status monitor failed to start", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feedCfg := config.Feed()
	if feedCfg.Enabled {
		sink := &recordingSink{
			engine:    eng,
			writer:    writer,
			telemetry: tele,
			sessionID: sessionID,
			log:       logger,
		}
		listener := feed.NewListener(feed.Config{ListenAddr: feedCfg.ListenAddr}, sink, zlog)
		go func() {
			if err := listener.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("feed listener stopped", "error", err)
				stop()
			}
		}()
	}

	runScheduler(ctx, eng, writer, tele, sessionID, sessionStart, logger)

	logger.Info("shutting down")
	statusMon.Stop()
	writer.Stop()
	if err := backend.EndSession(time.Now()); err != nil {
		logger.Error("could not close session record", "error", err)
	}
	if tele != nil {
		if err := tele.Close(); err != nil {
			logger.Error("could not flush telemetry", "error", err)
		}
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := slogMgr.Flush(flushCtx); err != nil {
		logger.Error("could not flush logs", "error", err)
	}
	if err := otelProvider.Shutdown(flushCtx); err != nil {
		logger.Error("otel shutdown failed", "error", err)
	}
	return nil
}

// runScheduler drives the fixed-rate tick loop until the context is
// cancelled. Every engine mutation happens here, on this goroutine.
func runScheduler(
	ctx context.Context,
	eng *engine.Engine,
	writer *worker.Manager,
	tele *telemetry.Manager,
	sessionID string,
	sessionStart time.Time,
	logger *slog.Logger,
) {
	tickMs := config.GetInt("scheduler.tickMs")
	if tickMs <= 0 {
		tickMs = 16
	}
	ticker := time.NewTicker(time.Duration(tickMs) * time.Millisecond)
	defer ticker.Stop()
	logger.Info("scheduler running", "tickMs", tickMs)

	tracer := trace.NewRecorder(sessionStart, 0)
	traceStart := sessionStart
	var lastSample, lastTraceFlush time.Time

	flushTrace := func(end time.Time) {
		wkb, err := tracer.WKB()
		if err != nil {
			return // fewer than two samples, nothing to keep
		}
		writer.EnqueueTrace(&model.FrameTrace{
			StartedAt: traceStart,
			EndedAt:   end,
			Samples:   tracer.Len(),
			Geometry:  wkb,
		})
		tracer.Reset(end)
		traceStart = end
	}

	for {
		select {
		case <-ctx.Done():
			flushTrace(time.Now())
			return
		case now := <-ticker.C:
			eng.Tick(now)
			snap := eng.Snapshot()
			tracer.Add(snap.Frame.Roll, snap.Frame.Pitch, snap.Frame.Heave, now)

			if tele != nil {
				if err := tele.WritePoint(ctx, telemetry.BucketMotion,
					telemetry.SnapshotPoint(sessionID, snap)); err != nil {
					logger.Debug("telemetry write failed", "error", err)
				}
			}

			if now.Sub(lastSample) >= sampleInterval {
				lastSample = now
				writer.EnqueueSample(dofSample(snap))
			}
			if now.Sub(lastTraceFlush) >= traceFlushInterval {
				lastTraceFlush = now
				flushTrace(now)
			}
		}
	}
}

// recordingSink wraps the engine's queue so every acknowledged batch is also
// persisted and counted before the summary travels back to the producer.
type recordingSink struct {
	engine    *engine.Engine
	writer    *worker.Manager
	telemetry *telemetry.Manager
	sessionID string
	log       *slog.Logger
}

func (s *recordingSink) Enqueue(batch any, ack func(dispatch.Summary)) {
	s.engine.Enqueue(batch, func(summary dispatch.Summary) {
		s.writer.EnqueueBatch(batchRecord(batch, summary))
		if s.telemetry != nil {
			if err := s.telemetry.WritePoint(context.Background(), telemetry.BucketBatches,
				telemetry.SummaryPoint(s.sessionID, summary)); err != nil {
				s.log.Debug("telemetry write failed", "error", err)
			}
		}
		if ack != nil {
			ack(summary)
		}
	})
}

func engineConfig(logger *slog.Logger) engine.Config {
	sm := config.Smoothing()
	easing, err := motion.EasingByName(sm.Easing)
	if err != nil {
		logger.Warn("unknown easing in config, using default", "easing", sm.Easing)
		easing, _ = motion.EasingByName(motion.EasingOutCubic)
	}

	osc := config.Oscillator()
	return engine.Config{
		Motion: motion.Config{
			Enabled:        sm.Enabled,
			Duration:       time.Duration(sm.DurationMs) * time.Millisecond,
			AngularSnapDeg: sm.AngularSnapDeg,
			LinearSnapM:    sm.LinearSnapM,
			Easing:         easing,
		},
		LivenessExpiry: time.Duration(config.Liveness().ExpiryMs) * time.Millisecond,
		AmplitudeDeg:   osc.AmplitudeDeg,
		FrequencyHz:    osc.FrequencyHz,
	}
}

// effectiveConfig snapshots the motion-relevant settings for the session
// record. Credentials never land in the database.
func effectiveConfig() []byte {
	body, err := json.Marshal(map[string]any{
		"smoothing":  config.Smoothing(),
		"liveness":   config.Liveness(),
		"oscillator": config.Oscillator(),
		"feed":       config.Feed(),
		"scheduler":  map[string]int{"tickMs": config.GetInt("scheduler.tickMs")},
	})
	if err != nil {
		return nil
	}
	return body
}

func batchRecord(batch any, summary dispatch.Summary) *model.BatchRecord {
	marshal := func(v any) []byte {
		body, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return body
	}
	return &model.BatchRecord{
		Timestamp: summary.Timestamp,
		Payload:   marshal(batch),
		Applied:   marshal(summary.Applied),
		Failed:    marshal(summary.Failed),
		Unknown:   marshal(summary.Unknown),
	}
}

func dofSample(snap *engine.Snapshot) *model.DOFSample {
	return &model.DOFSample{
		Time:           snap.At,
		LeverFL:        snap.LeverAngles.FL,
		LeverFR:        snap.LeverAngles.FR,
		LeverRL:        snap.LeverAngles.RL,
		LeverRR:        snap.LeverAngles.RR,
		PistonFL:       snap.PistonPositions.FL,
		PistonFR:       snap.PistonPositions.FR,
		PistonRL:       snap.PistonPositions.RL,
		PistonRR:       snap.PistonPositions.RR,
		Heave:          snap.Frame.Heave,
		Roll:           snap.Frame.Roll,
		Pitch:          snap.Frame.Pitch,
		Running:        snap.Running,
		FallbackActive: snap.FallbackActive,
	}
}
