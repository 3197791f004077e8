package plumestat

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PhaseAverage is the ensemble average over one phase bin [Lo, Hi).
// Fields is nil and Count zero for a bin no frame fell into: an empty
// bin is reported as-is so the caller can tell it apart from a true
// zero field.
type PhaseAverage struct {
	Lo, Hi float64
	Count  int
	Fields map[string][]float64
}

// Empty reports whether no frames fell into the bin.
func (p *PhaseAverage) Empty() bool { return p.Count == 0 }

// PhaseAverages partitions [0, 2π) into numBins equal half-open
// intervals and, for every field present in the frames, computes the
// arithmetic mean over the frames whose phase falls in each bin. The
// averaged fields are laid out at the run's shared point set. Bins
// never double count: the per-bin counts sum to the number of frames.
func PhaseAverages(run *Run, numBins int) ([]PhaseAverage, error) {
	if numBins <= 0 {
		return nil, &InvalidParameterError{Param: "numBins", Msg: "must be positive"}
	}
	if run == nil || len(run.Frames) == 0 {
		return nil, ErrNoFrames
	}

	width := 2 * math.Pi / float64(numBins)
	avgs := make([]PhaseAverage, numBins)
	for i := range avgs {
		avgs[i].Lo = float64(i) * width
		avgs[i].Hi = float64(i+1) * width
	}

	for _, frame := range run.Frames {
		bin := int(math.Floor(frame.Phase / width))
		if bin >= numBins {
			// A sample exactly at 2π belongs to the last bin, not a
			// nonexistent next one. Phase's modulo keeps this from
			// occurring, but the boundary is absorbed regardless.
			bin = numBins - 1
		}
		a := &avgs[bin]
		if a.Fields == nil {
			a.Fields = make(map[string][]float64, len(frame.Fields))
		}
		for name, vals := range frame.Fields {
			sum := a.Fields[name]
			if sum == nil {
				sum = make([]float64, len(vals))
				a.Fields[name] = sum
			}
			floats.Add(sum, vals)
		}
		a.Count++
	}

	for i := range avgs {
		if avgs[i].Count == 0 {
			continue
		}
		for _, sum := range avgs[i].Fields {
			floats.Scale(1/float64(avgs[i].Count), sum)
		}
	}
	return avgs, nil
}
