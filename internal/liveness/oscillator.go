package liveness

import (
	"math"
	"time"
)

// CornerPhaseOffsets stagger the four lever corners so fallback motion reads
// as a rocking rig rather than four levers in lockstep. Order: fl, fr, rl, rr.
var CornerPhaseOffsets = [4]float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}

// Oscillator synthesizes periodic lever motion while the lever sub-domain is
// not externally driven. Phase accumulates only while the oscillator is
// advanced, and is preserved across mode switches: handing control to the
// external driver and back never resets phase, so the boundary introduces no
// angle discontinuity beyond one tick's worth of motion.
type Oscillator struct {
	amplitude float64 // radians
	frequency float64 // Hz

	globalPhase float64
	phase       float64
	lastAdvance time.Time
	anchored    bool
}

// NewOscillator creates an oscillator with the given amplitude (radians) and
// frequency (Hz).
func NewOscillator(amplitude, frequency float64) *Oscillator {
	return &Oscillator{amplitude: amplitude, frequency: frequency}
}

// SetAmplitude updates the synthesized swing, in radians.
func (o *Oscillator) SetAmplitude(amplitude float64) {
	if !math.IsNaN(amplitude) && !math.IsInf(amplitude, 0) {
		o.amplitude = amplitude
	}
}

// SetFrequency updates the cycle rate, in Hz. Takes effect on the next
// advance; phase is unaffected, so a rate change is also jump-free.
func (o *Oscillator) SetFrequency(frequency float64) {
	if !math.IsNaN(frequency) && !math.IsInf(frequency, 0) && frequency >= 0 {
		o.frequency = frequency
	}
}

// SetGlobalPhase applies a producer-supplied phase offset, in radians.
func (o *Oscillator) SetGlobalPhase(phase float64) {
	if !math.IsNaN(phase) && !math.IsInf(phase, 0) {
		o.globalPhase = phase
	}
}

// Suspend marks the oscillator inactive. The accumulated phase is retained;
// the next Advance re-anchors its clock base so the elapsed silent period
// contributes no phase. This is the phase-continuity guarantee.
func (o *Oscillator) Suspend() {
	o.anchored = false
}

// Advance accumulates phase for the interval since the previous advance.
// The first advance after construction or Suspend only anchors the clock.
func (o *Oscillator) Advance(now time.Time) {
	if !o.anchored {
		o.lastAdvance = now
		o.anchored = true
		return
	}
	dt := now.Sub(o.lastAdvance).Seconds()
	if dt > 0 {
		o.phase += 2 * math.Pi * o.frequency * dt
		// Wrap to keep precision over long sessions.
		if o.phase > 2*math.Pi {
			o.phase = math.Mod(o.phase, 2*math.Pi)
		}
	}
	o.lastAdvance = now
}

// Angle returns the synthetic lever angle for corner i (0=fl 1=fr 2=rl 3=rr)
// at the current phase.
func (o *Oscillator) Angle(corner int) float64 {
	if corner < 0 || corner >= len(CornerPhaseOffsets) {
		return 0
	}
	return o.amplitude * math.Sin(o.phase+o.globalPhase+CornerPhaseOffsets[corner])
}

// Phase returns the accumulated phase, for diagnostics and tests.
func (o *Oscillator) Phase() float64 {
	return o.phase
}
