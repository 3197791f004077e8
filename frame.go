// Package plumestat computes phase-locked statistics for a
// periodically forced plume from time-resolved simulation output:
// phase-binned ensemble averages, vorticity-sign conditional
// concentration statistics, plume widths and centerline profiles.
package plumestat

import "math"

// Frame is one time sample of the run. X, Y and every entry of Fields
// share the same length and point ordering; frames are immutable once
// loaded.
type Frame struct {
	Index  int
	Time   float64 // seconds
	Phase  float64 // forcing phase, radians in [0, 2π)
	X, Y   []float64
	Fields map[string][]float64
}

// NumPoints returns the size of the shared point set.
func (f *Frame) NumPoints() int { return len(f.X) }

// Run is a time-ordered collection of frames sharing one point set.
// The collection is immutable after Load returns, so the statistics
// routines may all run concurrently over the same Run.
type Run struct {
	Frames    []*Frame
	Requested int // frames asked for; len(Frames) may be smaller
	Frequency float64
	DtOutput  float64
}

// Partial reports whether loading stopped short of the requested frame
// count. A partial run is an expected operational state, not a failure.
func (r *Run) Partial() bool { return len(r.Frames) < r.Requested }

// Phase returns the forcing phase of frame idx under uniform, gap-free
// temporal sampling: (2π·frequency·idx·dtOutput) mod 2π.
func Phase(frequency, dtOutput float64, idx int) float64 {
	return math.Mod(2*math.Pi*frequency*float64(idx)*dtOutput, 2*math.Pi)
}
