package plumestat

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// VortexConditional holds concentration statistics conditioned on the
// sign of the vorticity field, pooled over every point of every frame.
// A class with no members reports a zero mean and zero fraction; the
// fractions of a non-empty pool sum to one.
type VortexConditional struct {
	MeanPositive     float64 `json:"C_positive_vortex"`  // <C | ω > τ>
	MeanNegative     float64 `json:"C_negative_vortex"`  // <C | ω < -τ>
	MeanIrrotational float64 `json:"C_irrotational"`     // <C | |ω| ≤ τ>
	FracPositive     float64 `json:"fraction_positive"`
	FracNegative     float64 `json:"fraction_negative"`
	FracIrrotational float64 `json:"fraction_irrotational"`
	Threshold        float64 `json:"vorticity_threshold"`
	Samples          int     `json:"samples"`
}

// ConditionalStats pools the concentration and vorticity fields across
// all frames, ignoring frame boundaries, and partitions the samples by
// vorticity sign against the threshold τ = 0.1·std(ω). The threshold is
// recomputed from the pooled sample on every call, so the partition is
// invariant to the overall magnitude of the vorticity field. The
// population standard deviation is used: the pool is the whole
// population of interest, not a draw from a larger one.
func ConditionalStats(run *Run, concentration, vorticity string) (VortexConditional, error) {
	if run == nil || len(run.Frames) == 0 {
		return VortexConditional{}, ErrNoFrames
	}

	var conc, vort []float64
	for _, frame := range run.Frames {
		c, okC := frame.Fields[concentration]
		w, okW := frame.Fields[vorticity]
		if !okC || !okW {
			return VortexConditional{}, &InvalidParameterError{
				Param: "field",
				Msg:   fmt.Sprintf("frame %d is missing %q or %q", frame.Index, concentration, vorticity),
			}
		}
		conc = append(conc, c...)
		vort = append(vort, w...)
	}
	if len(vort) == 0 {
		return VortexConditional{}, ErrNoSamples
	}

	tau := 0.1 * stat.PopStdDev(vort, nil)

	var pos, neg, irr []float64
	for i, w := range vort {
		switch {
		case w > tau:
			pos = append(pos, conc[i])
		case w < -tau:
			neg = append(neg, conc[i])
		default:
			irr = append(irr, conc[i])
		}
	}

	n := float64(len(vort))
	vc := VortexConditional{Threshold: tau, Samples: len(vort)}
	if len(pos) > 0 {
		vc.MeanPositive = stat.Mean(pos, nil)
		vc.FracPositive = float64(len(pos)) / n
	}
	if len(neg) > 0 {
		vc.MeanNegative = stat.Mean(neg, nil)
		vc.FracNegative = float64(len(neg)) / n
	}
	if len(irr) > 0 {
		vc.MeanIrrotational = stat.Mean(irr, nil)
		vc.FracIrrotational = float64(len(irr)) / n
	}
	return vc, nil
}
