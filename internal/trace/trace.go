// Package trace accumulates the frame's motion through its phase space and
// renders it as geometry for diagnostics. Each sample is one XYZM coordinate:
// roll, pitch, heave, and the measure axis carrying seconds since the session
// start, so a recorded trace can be replayed or plotted directly from WKT.
package trace

import (
	"errors"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrTooShort is returned when a trace has fewer than two samples; a
// LineString needs at least two points.
var ErrTooShort = errors.New("trace needs at least two samples")

// DefaultMaxSamples bounds memory for long sessions. One sample per tick at
// 60 Hz is about 4.5 minutes of trace.
const DefaultMaxSamples = 16384

// Recorder collects frame phase-space samples. Scheduler thread only.
type Recorder struct {
	start      time.Time
	maxSamples int
	coords     []float64 // flat XYZM: roll, pitch, heave, seconds
}

// NewRecorder creates a recorder anchored at the session start time.
// maxSamples <= 0 selects the default bound.
func NewRecorder(start time.Time, maxSamples int) *Recorder {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Recorder{start: start, maxSamples: maxSamples}
}

// Add appends one sample. Once the bound is reached, the oldest sample is
// dropped so the trace always covers the most recent window.
func (r *Recorder) Add(roll, pitch, heave float64, at time.Time) {
	if r.Len() >= r.maxSamples {
		r.coords = r.coords[4:]
	}
	r.coords = append(r.coords, roll, pitch, heave, at.Sub(r.start).Seconds())
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int {
	return len(r.coords) / 4
}

// Reset drops all samples and re-anchors the measure axis.
func (r *Recorder) Reset(start time.Time) {
	r.start = start
	r.coords = r.coords[:0]
}

// LineString renders the trace as an XYZM LineString.
func (r *Recorder) LineString() (geom.LineString, error) {
	if r.Len() < 2 {
		return geom.LineString{}, ErrTooShort
	}
	seq := geom.NewSequence(r.coords, geom.DimXYZM)
	return geom.NewLineString(seq), nil
}

// WKT renders the trace in well-known text for recording.
func (r *Recorder) WKT() (string, error) {
	ls, err := r.LineString()
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}

// WKB renders the trace in well-known binary for compact storage.
func (r *Recorder) WKB() ([]byte, error) {
	ls, err := r.LineString()
	if err != nil {
		return nil, err
	}
	return ls.AsBinary(), nil
}
