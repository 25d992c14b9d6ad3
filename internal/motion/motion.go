// Package motion animates the rig's tracked degrees of freedom. Each DOF
// carries a current and a target value; small target changes interpolate over
// a configured duration while large jumps, explicit immediate flags, or
// globally disabled smoothing assign synchronously. All progression happens on
// the scheduler tick; SetTarget never blocks.
package motion

import (
	"math"
	"time"
)

// Unit distinguishes how snap thresholds are compared.
type Unit int

const (
	// Angular values are radians; snap deltas compare in degrees.
	Angular Unit = iota
	// Linear values are meters; snap deltas compare directly.
	Linear
)

// DOF identifies one tracked degree of freedom.
type DOF string

const (
	LeverFL DOF = "leverFL"
	LeverFR DOF = "leverFR"
	LeverRL DOF = "leverRL"
	LeverRR DOF = "leverRR"

	PistonFL DOF = "pistonFL"
	PistonFR DOF = "pistonFR"
	PistonRL DOF = "pistonRL"
	PistonRR DOF = "pistonRR"

	FrameHeave DOF = "frameHeave"
	FrameRoll  DOF = "frameRoll"
	FramePitch DOF = "framePitch"
)

// LeverDOFs, PistonDOFs and FrameDOFs list the tracked DOFs per sub-domain in
// corner order fl, fr, rl, rr.
var (
	LeverDOFs  = []DOF{LeverFL, LeverFR, LeverRL, LeverRR}
	PistonDOFs = []DOF{PistonFL, PistonFR, PistonRL, PistonRR}
	FrameDOFs  = []DOF{FrameHeave, FrameRoll, FramePitch}
)

// Defaults: angular moves snap at 65 degrees, linear at 5 cm.
const (
	DefaultAngularSnapDeg = 65.0
	DefaultLinearSnapM    = 0.05
	DefaultDuration       = 250 * time.Millisecond
)

// Config controls smoothing behavior for all DOFs.
type Config struct {
	Enabled        bool
	Duration       time.Duration
	AngularSnapDeg float64
	LinearSnapM    float64
	Easing         EasingFunc
}

// DefaultConfig returns the stock thresholds with ease-out-cubic easing.
func DefaultConfig() Config {
	easing, _ := EasingByName(EasingOutCubic)
	return Config{
		Enabled:        true,
		Duration:       DefaultDuration,
		AngularSnapDeg: DefaultAngularSnapDeg,
		LinearSnapM:    DefaultLinearSnapM,
		Easing:         easing,
	}
}

// tracked is the per-DOF animation state. Zero defaults at construction.
type tracked struct {
	unit    Unit
	current float64
	target  float64

	animating bool
	from      float64
	start     time.Time
}

// Smoother owns the tracked DOF table. Not safe for concurrent use; the
// scheduler thread is the single writer by design.
type Smoother struct {
	cfg  Config
	dofs map[DOF]*tracked
}

// NewSmoother creates a smoother tracking all eleven rig DOFs at zero.
func NewSmoother(cfg Config) *Smoother {
	if cfg.Easing == nil {
		cfg.Easing, _ = EasingByName(EasingOutCubic)
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}

	s := &Smoother{cfg: cfg, dofs: make(map[DOF]*tracked, 11)}
	for _, d := range LeverDOFs {
		s.dofs[d] = &tracked{unit: Angular}
	}
	for _, d := range PistonDOFs {
		s.dofs[d] = &tracked{unit: Linear}
	}
	s.dofs[FrameHeave] = &tracked{unit: Linear}
	s.dofs[FrameRoll] = &tracked{unit: Angular}
	s.dofs[FramePitch] = &tracked{unit: Angular}
	return s
}

// SetEnabled toggles smoothing globally. While disabled every SetTarget snaps.
func (s *Smoother) SetEnabled(enabled bool) {
	s.cfg.Enabled = enabled
}

// SetDuration changes the interpolation window for subsequent targets.
// Non-positive durations are ignored.
func (s *Smoother) SetDuration(d time.Duration) {
	if d > 0 {
		s.cfg.Duration = d
	}
}

// SetEasing swaps the easing curve for subsequent interpolation frames.
func (s *Smoother) SetEasing(f EasingFunc) {
	if f != nil {
		s.cfg.Easing = f
	}
}

// SetTarget retargets one DOF. Non-finite values are ignored. The move snaps
// (current = target = raw, no interpolation frame) when immediate is set, the
// delta meets the unit's snap threshold, or smoothing is disabled; otherwise
// it interpolates from the current value over the configured duration.
// Retargeting mid-flight restarts the window from the current value.
func (s *Smoother) SetTarget(dof DOF, raw float64, immediate bool, now time.Time) {
	t, ok := s.dofs[dof]
	if !ok {
		return
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return
	}

	if immediate || !s.cfg.Enabled || s.exceedsSnap(t, raw) {
		t.current = raw
		t.target = raw
		t.animating = false
		return
	}

	t.from = t.current
	t.target = raw
	t.start = now
	t.animating = true
}

// Force assigns a DOF's value directly, bypassing thresholds and smoothing.
// Used by the fallback oscillator, which generates continuous motion itself.
func (s *Smoother) Force(dof DOF, value float64) {
	t, ok := s.dofs[dof]
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	t.current = value
	t.target = value
	t.animating = false
}

// Advance progresses every interpolating DOF toward its target.
func (s *Smoother) Advance(now time.Time) {
	for _, t := range s.dofs {
		if !t.animating {
			continue
		}
		elapsed := now.Sub(t.start)
		if elapsed >= s.cfg.Duration {
			t.current = t.target
			t.animating = false
			continue
		}
		frac := float64(elapsed) / float64(s.cfg.Duration)
		t.current = t.from + (t.target-t.from)*s.cfg.Easing(frac)
	}
}

// Current returns a DOF's present value.
func (s *Smoother) Current(dof DOF) float64 {
	if t, ok := s.dofs[dof]; ok {
		return t.current
	}
	return 0
}

// Target returns a DOF's target value.
func (s *Smoother) Target(dof DOF) float64 {
	if t, ok := s.dofs[dof]; ok {
		return t.target
	}
	return 0
}

// Animating reports whether a DOF is mid-interpolation.
func (s *Smoother) Animating(dof DOF) bool {
	if t, ok := s.dofs[dof]; ok {
		return t.animating
	}
	return false
}

// exceedsSnap reports whether the move from current to raw meets the snap
// threshold. Angular deltas convert to degrees first; thresholds are
// degree-based for angles and meter-based for linear travel.
func (s *Smoother) exceedsSnap(t *tracked, raw float64) bool {
	delta := math.Abs(raw - t.current)
	switch t.unit {
	case Angular:
		return delta*180/math.Pi >= s.cfg.AngularSnapDeg
	default:
		return delta >= s.cfg.LinearSnapM
	}
}
