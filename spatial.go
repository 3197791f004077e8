package plumestat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// minBandPoints is the fewest in-band samples accepted for a width
	// estimate.
	minBandPoints = 10
	// minWeightSum guards the weighted moments against an effectively
	// unweighted band.
	minWeightSum = 1e-10
)

// Width is the plume width estimate for one frame. OK is false when too
// few points fell inside the measurement band, or the concentration
// weights there were negligible, to estimate a weighted variance;
// Sigma is meaningless in that case and must not be read as zero.
type Width struct {
	Time  float64
	Sigma float64
	OK    bool
}

// PlumeWidths estimates, for each frame in frame order, the
// concentration-weighted cross-stream spread sqrt(Σw(y−μ)²/Σw) over the
// points with |x − x0| < tolerance. This is a one-sided spatial moment
// estimate at a fixed station, not a profile fit. The variance is the
// weight-normalized second moment: the weights are concentrations, not
// repeat counts, so no n−1 style correction applies.
func PlumeWidths(run *Run, field string, x0, tolerance float64) ([]Width, error) {
	if tolerance <= 0 {
		return nil, &InvalidParameterError{Param: "tolerance", Msg: "must be positive"}
	}
	if run == nil {
		return nil, ErrNoFrames
	}
	if len(run.Frames) > 0 && run.Frames[0].Fields[field] == nil {
		return nil, &InvalidParameterError{Param: "field", Msg: fmt.Sprintf("run has no field %q", field)}
	}
	widths := make([]Width, len(run.Frames))
	for i, frame := range run.Frames {
		widths[i] = frameWidth(frame, field, x0, tolerance)
	}
	return widths, nil
}

func frameWidth(frame *Frame, field string, x0, tol float64) Width {
	w := Width{Time: frame.Time}
	conc := frame.Fields[field]

	var ys, weights []float64
	for i, x := range frame.X {
		if math.Abs(x-x0) < tol {
			ys = append(ys, frame.Y[i])
			weights = append(weights, conc[i])
		}
	}
	if len(ys) < minBandPoints {
		return w
	}
	wsum := floats.Sum(weights)
	if wsum < minWeightSum {
		return w
	}

	mean := stat.Mean(ys, weights)
	var m2 float64
	for i, y := range ys {
		d := y - mean
		m2 += weights[i] * d * d
	}
	w.Sigma = math.Sqrt(m2 / wsum)
	w.OK = true
	return w
}

// CenterlinePoint pairs a streamwise coordinate with the concentration
// sampled there.
type CenterlinePoint struct {
	X float64
	C float64
}

// Centerline returns the (x, concentration) samples of one frame within
// tolerance of yCenter, sorted ascending by x. The result is exactly
// the scattered samples that satisfy the band filter; no interpolation
// onto a regular grid is performed, so the spacing may be non-uniform.
func Centerline(frame *Frame, field string, yCenter, tolerance float64) ([]CenterlinePoint, error) {
	if tolerance <= 0 {
		return nil, &InvalidParameterError{Param: "tolerance", Msg: "must be positive"}
	}
	if frame == nil {
		return nil, ErrNoFrames
	}
	conc := frame.Fields[field]
	if conc == nil {
		return nil, &InvalidParameterError{Param: "field", Msg: fmt.Sprintf("frame has no field %q", field)}
	}

	var pts []CenterlinePoint
	for i, y := range frame.Y {
		if math.Abs(y-yCenter) < tolerance {
			pts = append(pts, CenterlinePoint{X: frame.X[i], C: conc[i]})
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return pts, nil
}

// WidthSummary reduces a width series to statistics over its defined
// entries.
type WidthSummary struct {
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Defined int     `json:"defined"`
}

// SummarizeWidths summarizes the defined entries of a width series,
// skipping undefined ones. ErrNoSamples is returned when every entry is
// undefined.
func SummarizeWidths(widths []Width) (WidthSummary, error) {
	var vals []float64
	for _, w := range widths {
		if w.OK {
			vals = append(vals, w.Sigma)
		}
	}
	if len(vals) == 0 {
		return WidthSummary{}, ErrNoSamples
	}
	return WidthSummary{
		Mean:    stat.Mean(vals, nil),
		Std:     stat.PopStdDev(vals, nil),
		Min:     floats.Min(vals),
		Max:     floats.Max(vals),
		Defined: len(vals),
	}, nil
}
