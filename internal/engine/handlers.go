package engine

import (
	"math"
	"time"

	"github.com/stabrig/rigview/internal/coerce"
	"github.com/stabrig/rigview/internal/dispatch"
	"github.com/stabrig/rigview/internal/keys"
	"github.com/stabrig/rigview/internal/liveness"
	"github.com/stabrig/rigview/internal/motion"
	"github.com/stabrig/rigview/internal/state"
)

// categoryHandler merges one category's payload into the store.
func (e *Engine) categoryHandler(cat state.Category) dispatch.HandlerFunc {
	return func(payload map[string]any) error {
		if len(payload) == 0 {
			return dispatch.ErrNoEffect
		}
		_, err := e.store.Merge(cat, payload)
		return err
	}
}

// handleAnimation merges the animation tree and picks out the oscillator
// settings, the running flag, and any smoothing overrides it carries.
func (e *Engine) handleAnimation(payload map[string]any) error {
	if len(payload) == 0 {
		return dispatch.ErrNoEffect
	}
	if _, err := e.store.Merge(state.CategoryAnimation, payload); err != nil {
		return err
	}

	if v, ok := keys.Resolve(payload, "amplitude"); ok {
		e.oscillator.SetAmplitude(coerce.Number(v, math.NaN()) * math.Pi / 180)
	}
	if v, ok := keys.Resolve(payload, "frequency"); ok {
		e.oscillator.SetFrequency(coerce.Number(v, math.NaN()))
	}
	if v, ok := keys.Resolve(payload, "globalPhase"); ok {
		e.oscillator.SetGlobalPhase(coerce.Number(v, math.NaN()))
	}
	if v, ok := keys.Resolve(payload, "isRunning"); ok {
		e.setRunning(coerce.Bool(v, e.running))
	}

	if v, ok := keys.Resolve(payload, "smoothing"); ok {
		e.smoother.SetEnabled(coerce.Bool(v, true))
	}
	if v, ok := keys.Resolve(payload, "smoothingDurationMs"); ok {
		ms := coerce.Number(v, 0)
		e.smoother.SetDuration(time.Duration(ms) * time.Millisecond)
	}
	if v, ok := keys.Resolve(payload, "easing"); ok {
		if f, err := motion.EasingByName(coerce.String(v, "")); err == nil {
			e.smoother.SetEasing(f)
		} else {
			e.logMissingOnce("animation.easing." + coerce.String(v, "?"))
		}
	}
	return nil
}

// handleSimulation merges the simulation tree and unpacks motion payloads the
// producer nests there instead of sending as top-level batch keys.
func (e *Engine) handleSimulation(payload map[string]any) error {
	if len(payload) == 0 {
		return dispatch.ErrNoEffect
	}
	if _, err := e.store.Merge(state.CategorySimulation, payload); err != nil {
		return err
	}

	if v, ok := keys.Resolve(payload, "isRunning"); ok {
		e.setRunning(coerce.Bool(v, e.running))
	}

	nested := []struct {
		names []string
		apply dispatch.HandlerFunc
	}{
		{[]string{"leverAngles"}, e.handleLevers},
		{[]string{"pistonPositions", "pistons"}, e.handlePistons},
		{[]string{"frameMotion", "frame"}, e.handleFrame},
		{[]string{"pressures"}, e.handlePressures},
	}
	for _, n := range nested {
		for _, name := range n.names {
			raw, ok := keys.Resolve(payload, name)
			if !ok {
				continue
			}
			if m, ok := raw.(map[string]any); ok {
				// Nested motion errors are value-level; the simulation
				// merge itself already succeeded.
				_ = n.apply(m)
			}
			break
		}
	}
	return nil
}

// handleLevers retargets the lever corners named in the payload and marks
// them externally driven. Corners the payload omits stay on their previous
// driver, so a partial payload pulls only its own corners out of fallback.
func (e *Engine) handleLevers(payload map[string]any) error {
	if len(payload) == 0 {
		return dispatch.ErrNoEffect
	}
	now := e.clock()
	immediate := e.immediateFlag(payload)

	applied := false
	for i, corner := range corners {
		v, ok := keys.Resolve(payload, corner)
		if !ok {
			continue
		}
		e.smoother.SetTarget(motion.LeverDOFs[i], coerce.Number(v, math.NaN()), immediate, now)
		e.liveness.Touch(leverCornerDomains[i], now)
		applied = true
	}
	if !applied {
		e.logMissingOnce("leverAngles")
		return dispatch.ErrNoEffect
	}
	e.liveness.Touch(liveness.DomainLevers, now)
	return nil
}

// handlePistons retargets the piston corners named in the payload.
func (e *Engine) handlePistons(payload map[string]any) error {
	if len(payload) == 0 {
		return dispatch.ErrNoEffect
	}
	now := e.clock()
	immediate := e.immediateFlag(payload)

	applied := false
	for i, corner := range corners {
		v, ok := keys.Resolve(payload, corner)
		if !ok {
			continue
		}
		e.smoother.SetTarget(motion.PistonDOFs[i], coerce.Number(v, math.NaN()), immediate, now)
		applied = true
	}
	if !applied {
		e.logMissingOnce("pistonPositions")
		return dispatch.ErrNoEffect
	}
	e.liveness.Touch(liveness.DomainPistons, now)
	return nil
}

// handleFrame retargets heave, roll, and pitch.
func (e *Engine) handleFrame(payload map[string]any) error {
	if len(payload) == 0 {
		return dispatch.ErrNoEffect
	}
	now := e.clock()
	immediate := e.immediateFlag(payload)

	axes := []struct {
		name string
		dof  motion.DOF
	}{
		{"heave", motion.FrameHeave},
		{"roll", motion.FrameRoll},
		{"pitch", motion.FramePitch},
	}
	applied := false
	for _, axis := range axes {
		v, ok := keys.Resolve(payload, axis.name)
		if !ok {
			continue
		}
		e.smoother.SetTarget(axis.dof, coerce.Number(v, math.NaN()), immediate, now)
		applied = true
	}
	if !applied {
		e.logMissingOnce("frameMotion")
		return dispatch.ErrNoEffect
	}
	e.liveness.Touch(liveness.DomainFrame, now)
	return nil
}

// handlePressures records the latest corner pressures. Not smoothed; the
// gauges read the raw values.
func (e *Engine) handlePressures(payload map[string]any) error {
	if len(payload) == 0 {
		return dispatch.ErrNoEffect
	}
	now := e.clock()

	applied := false
	for i, corner := range corners {
		v, ok := keys.Resolve(payload, corner)
		if !ok {
			continue
		}
		e.pressures[i] = coerce.Number(v, e.pressures[i])
		applied = true
	}
	if !applied {
		e.logMissingOnce("pressures")
		return dispatch.ErrNoEffect
	}
	e.liveness.Touch(liveness.DomainPressures, now)
	return nil
}

// setRunning flips the simulation running state. Stopping pins every lever to
// zero immediately, without interpolation.
func (e *Engine) setRunning(running bool) {
	if e.running == running {
		return
	}
	e.running = running
	if !running {
		for _, d := range motion.LeverDOFs {
			e.smoother.Force(d, 0)
		}
		e.log.Info("simulation stopped, levers pinned to zero")
	} else {
		e.log.Info("simulation running")
	}
}

func (e *Engine) immediateFlag(payload map[string]any) bool {
	v, ok := keys.Resolve(payload, "immediate")
	if !ok {
		return false
	}
	return coerce.Bool(v, false)
}
