// Package engine composes the synchronization core: the category state store,
// the batch dispatcher, the motion smoother, and the liveness/fallback
// controller, all owned by a single Engine with exactly one writer (the
// scheduler thread). Producer threads hand batches off through Enqueue; every
// mutation happens inside ApplyBatch or Tick.
package engine

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/stabrig/rigview/internal/dispatch"
	"github.com/stabrig/rigview/internal/keys"
	"github.com/stabrig/rigview/internal/liveness"
	"github.com/stabrig/rigview/internal/motion"
	"github.com/stabrig/rigview/internal/queue"
	"github.com/stabrig/rigview/internal/scene"
	"github.com/stabrig/rigview/internal/state"
)

// corner names in DOF table order.
var corners = [4]string{"fl", "fr", "rl", "rr"}

// Per-corner lever liveness slices. The coarse DomainLevers flag stays
// alongside; fallback synthesis is decided corner by corner so a partial
// payload takes only the corners it names out of fallback.
var leverCornerDomains = [4]liveness.Domain{
	"levers.fl", "levers.fr", "levers.rl", "levers.rr",
}

// Corners is a flat per-corner value set published to the renderer.
type Corners struct {
	FL float64 `json:"fl"`
	FR float64 `json:"fr"`
	RL float64 `json:"rl"`
	RR float64 `json:"rr"`
}

// FramePose is the frame motion published to the renderer.
type FramePose struct {
	Heave float64 `json:"heave"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// Snapshot is the per-tick publication consumed by the renderer. Immutable
// once published; readers hold the pointer, never the Engine.
type Snapshot struct {
	At              time.Time `json:"at"`
	LeverAngles     Corners   `json:"leverAngles"`
	PistonPositions Corners   `json:"pistonPositions"`
	Frame           FramePose `json:"frame"`
	Pressures       Corners   `json:"pressures"`
	Running         bool      `json:"running"`
	FallbackActive  bool      `json:"fallbackActive"`
}

// Config is the construction-time surface of the engine.
type Config struct {
	Motion         motion.Config
	LivenessExpiry time.Duration
	AmplitudeDeg   float64 // fallback oscillator swing
	FrequencyHz    float64 // fallback oscillator rate
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		Motion:         motion.DefaultConfig(),
		LivenessExpiry: liveness.DefaultExpiry,
		AmplitudeDeg:   8,
		FrequencyHz:    0.5,
	}
}

// Options carries the engine's collaborators. A nil Config means defaults.
type Options struct {
	Config      *Config
	Log         *slog.Logger
	DispatchLog dispatch.Logger // nil falls back to a slog adapter over Log
}

type pendingBatch struct {
	payload any
	ack     func(dispatch.Summary)
}

// Engine owns all synchronization state. Not safe for concurrent mutation;
// Enqueue and Snapshot are the only methods other threads may call.
type Engine struct {
	log        *slog.Logger
	store      *state.Store
	dispatcher *dispatch.Dispatcher
	smoother   *motion.Smoother
	liveness   *liveness.Controller
	oscillator *liveness.Oscillator
	resolver   *scene.Resolver
	pending    *queue.Queue[pendingBatch]

	clock   func() time.Time
	running bool

	pressures      [4]float64
	fallbackActive bool
	loggedTokens   map[string]struct{}

	snapshot atomic.Pointer[Snapshot]
}

// New constructs an engine with zeroed DOFs and empty category trees.
func New(opts Options) (*Engine, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	e := &Engine{
		log:          log,
		store:        state.NewStore(),
		smoother:     motion.NewSmoother(cfg.Motion),
		liveness:     liveness.NewController(cfg.LivenessExpiry),
		oscillator:   liveness.NewOscillator(cfg.AmplitudeDeg*math.Pi/180, cfg.FrequencyHz),
		pending:      queue.New[pendingBatch](),
		clock:        time.Now,
		running:      true,
		loggedTokens: make(map[string]struct{}),
	}
	e.resolver = scene.NewResolver(e.store)

	dlog := opts.DispatchLog
	if dlog == nil {
		dlog = slogDispatchLogger{log}
	}
	d, err := dispatch.New(dlog)
	if err != nil {
		return nil, err
	}
	e.dispatcher = d
	e.registerHandlers()

	if err := e.registerMetrics(); err != nil {
		return nil, err
	}

	e.publish(e.clock())
	return e, nil
}

// SetClock overrides the time source for handlers and summaries. Tests only.
func (e *Engine) SetClock(clock func() time.Time) {
	e.clock = clock
	e.dispatcher.SetClock(clock)
}

// registerHandlers wires the 12 category handlers plus the motion sub-domain
// keys, each under its camelCase and snake_case spellings.
func (e *Engine) registerHandlers() {
	for _, cat := range state.Categories {
		switch cat {
		case state.CategoryAnimation:
			e.register(e.handleAnimation, string(cat))
		case state.CategorySimulation:
			e.register(e.handleSimulation, string(cat))
		default:
			e.register(e.categoryHandler(cat), string(cat))
		}
	}

	e.register(e.handleLevers, "leverAngles")
	e.register(e.handlePistons, "pistonPositions", "pistons")
	e.register(e.handleFrame, "frameMotion", "frame")
	e.register(e.handlePressures, "pressures")
}

func (e *Engine) register(h dispatch.HandlerFunc, names ...string) {
	for _, name := range names {
		e.dispatcher.Register(name, h)
		if snake := keys.ToSnake(name); snake != name {
			e.dispatcher.Register(snake, h)
		}
	}
}

// ApplyBatch applies one batch synchronously and returns its summary.
// Scheduler thread only.
func (e *Engine) ApplyBatch(batch any) dispatch.Summary {
	return e.dispatcher.Apply(batch)
}

// Enqueue hands a batch off from a producer thread. The batch is applied at
// the start of the next tick; ack, if non-nil, receives the summary then.
func (e *Engine) Enqueue(batch any, ack func(dispatch.Summary)) {
	e.pending.Push(pendingBatch{payload: batch, ack: ack})
}

// Pending reports the number of batches awaiting the next tick.
func (e *Engine) Pending() int {
	return e.pending.Len()
}

// Tick runs one scheduler step: drain pending batches, expire liveness,
// advance motion and fallback synthesis, publish the snapshot.
func (e *Engine) Tick(now time.Time) {
	for _, pb := range e.pending.Drain() {
		summary := e.dispatcher.Apply(pb.payload)
		if pb.ack != nil {
			pb.ack(summary)
		}
	}

	e.liveness.Expire(now)
	e.smoother.Advance(now)
	e.advanceFallback(now)
	e.publish(now)
}

// Snapshot returns the most recently published state. Safe from any thread.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Category returns the current state tree for a category. Read-only.
func (e *Engine) Category(cat state.Category) (state.StateTree, error) {
	return e.store.Snapshot(cat)
}

// Scene returns the layered render-settings resolver backed by the store.
func (e *Engine) Scene() *scene.Resolver {
	return e.resolver
}

// advanceFallback synthesizes lever motion for corners with no live driver.
// Stopped simulation pins every lever to zero immediately.
func (e *Engine) advanceFallback(now time.Time) {
	if !e.running {
		e.oscillator.Suspend()
		e.fallbackActive = false
		for _, d := range motion.LeverDOFs {
			e.smoother.Force(d, 0)
		}
		return
	}

	anyFree := false
	for _, dom := range leverCornerDomains {
		if !e.liveness.Driven(dom) {
			anyFree = true
			break
		}
	}
	if !anyFree {
		e.oscillator.Suspend()
		e.fallbackActive = false
		return
	}

	e.oscillator.Advance(now)
	e.fallbackActive = true
	for i, d := range motion.LeverDOFs {
		if !e.liveness.Driven(leverCornerDomains[i]) {
			e.smoother.Force(d, e.oscillator.Angle(i))
		}
	}
}

func (e *Engine) publish(now time.Time) {
	snap := &Snapshot{
		At: now,
		LeverAngles: Corners{
			FL: e.smoother.Current(motion.LeverFL),
			FR: e.smoother.Current(motion.LeverFR),
			RL: e.smoother.Current(motion.LeverRL),
			RR: e.smoother.Current(motion.LeverRR),
		},
		PistonPositions: Corners{
			FL: e.smoother.Current(motion.PistonFL),
			FR: e.smoother.Current(motion.PistonFR),
			RL: e.smoother.Current(motion.PistonRL),
			RR: e.smoother.Current(motion.PistonRR),
		},
		Frame: FramePose{
			Heave: e.smoother.Current(motion.FrameHeave),
			Roll:  e.smoother.Current(motion.FrameRoll),
			Pitch: e.smoother.Current(motion.FramePitch),
		},
		Pressures: Corners{
			FL: e.pressures[0],
			FR: e.pressures[1],
			RL: e.pressures[2],
			RR: e.pressures[3],
		},
		Running:        e.running,
		FallbackActive: e.fallbackActive,
	}
	e.snapshot.Store(snap)
}

// logMissingOnce logs a missing-key token once per distinct token, so a
// producer stuck on an old schema can't flood the log.
func (e *Engine) logMissingOnce(token string) {
	if _, seen := e.loggedTokens[token]; seen {
		return
	}
	e.loggedTokens[token] = struct{}{}
	e.log.Debug("payload carried no recognized keys", "token", token)
}

// slogDispatchLogger adapts *slog.Logger to the dispatcher's Logger surface.
type slogDispatchLogger struct {
	l *slog.Logger
}

func (s slogDispatchLogger) Debug(msg string, kv ...any) { s.l.Debug(msg, kv...) }
func (s slogDispatchLogger) Info(msg string, kv ...any)  { s.l.Info(msg, kv...) }
func (s slogDispatchLogger) Error(msg string, kv ...any) { s.l.Error(msg, kv...) }
