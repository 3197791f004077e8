package plumestat

import (
	"errors"
	"math"
	"sort"
	"testing"
)

// bandFrame places n points at streamwise station x0 with the given
// cross-stream coordinates and concentrations, plus a few points far
// outside the band.
func bandFrame(x0 float64, ys, conc []float64) *Frame {
	f := &Frame{Fields: map[string][]float64{}}
	for i := range ys {
		f.X = append(f.X, x0)
		f.Y = append(f.Y, ys[i])
	}
	c := append([]float64{}, conc...)
	// Out-of-band points that must not influence the moment.
	for i := 0; i < 3; i++ {
		f.X = append(f.X, x0+5)
		f.Y = append(f.Y, 100)
		c = append(c, 1e6)
	}
	f.Fields["Concentration"] = c
	return f
}

func widthRun(frames ...*Frame) *Run {
	return &Run{Frames: frames, Requested: len(frames)}
}

func TestPlumeWidthEqualWeights(t *testing.T) {
	// 20 equally weighted points with y in {-2,-1,0,1,2}: the width is
	// the population standard deviation sqrt(2).
	var ys, conc []float64
	for i := 0; i < 4; i++ {
		ys = append(ys, -2, -1, 0, 1, 2)
		conc = append(conc, 1, 1, 1, 1, 1)
	}
	widths, err := PlumeWidths(widthRun(bandFrame(2, ys, conc)), "Concentration", 2, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(widths) != 1 {
		t.Fatalf("got %d widths, want 1", len(widths))
	}
	if !widths[0].OK {
		t.Fatal("width should be defined")
	}
	if math.Abs(widths[0].Sigma-math.Sqrt(2)) > 1e-12 {
		t.Errorf("sigma: got %v, want %v", widths[0].Sigma, math.Sqrt(2))
	}
}

func TestPlumeWidthWeighted(t *testing.T) {
	// Pairs y=0 (weight 3) and y=2 (weight 1): mean 0.5, second moment
	// (3·0.25 + 1·2.25)/4 = 0.75.
	var ys, conc []float64
	for i := 0; i < 8; i++ {
		ys = append(ys, 0, 2)
		conc = append(conc, 3, 1)
	}
	widths, err := PlumeWidths(widthRun(bandFrame(2, ys, conc)), "Concentration", 2, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !widths[0].OK {
		t.Fatal("width should be defined")
	}
	if math.Abs(widths[0].Sigma-math.Sqrt(0.75)) > 1e-12 {
		t.Errorf("sigma: got %v, want %v", widths[0].Sigma, math.Sqrt(0.75))
	}
}

func TestPlumeWidthTooFewPoints(t *testing.T) {
	ys := []float64{-1, 0, 1}
	conc := []float64{1, 1, 1}
	widths, err := PlumeWidths(widthRun(bandFrame(2, ys, conc)), "Concentration", 2, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if widths[0].OK {
		t.Error("width must be undefined with fewer than 10 in-band points")
	}
	if math.IsNaN(widths[0].Sigma) {
		t.Error("undefined width must not carry NaN")
	}
}

func TestPlumeWidthNegligibleWeights(t *testing.T) {
	var ys, conc []float64
	for i := 0; i < 12; i++ {
		ys = append(ys, float64(i))
		conc = append(conc, 0)
	}
	widths, err := PlumeWidths(widthRun(bandFrame(2, ys, conc)), "Concentration", 2, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if widths[0].OK {
		t.Error("width must be undefined when the weight sum is negligible")
	}
}

func TestPlumeWidthFrameOrder(t *testing.T) {
	good := bandFrame(2, []float64{-2, -1, 0, 1, 2, -2, -1, 0, 1, 2}, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	good.Time = 0
	sparse := bandFrame(2, []float64{0}, []float64{1})
	sparse.Time = 0.04
	widths, err := PlumeWidths(widthRun(good, sparse), "Concentration", 2, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(widths) != 2 {
		t.Fatalf("got %d widths, want 2", len(widths))
	}
	if !widths[0].OK || widths[1].OK {
		t.Errorf("defined flags: got %v %v, want true false", widths[0].OK, widths[1].OK)
	}
	if widths[0].Time != 0 || widths[1].Time != 0.04 {
		t.Errorf("times out of order: %v %v", widths[0].Time, widths[1].Time)
	}
}

func TestCenterline(t *testing.T) {
	f := &Frame{
		X: []float64{3, 1, 2, 0.5, 4},
		Y: []float64{0.05, -0.05, 0.01, 2.0, 0.0},
		Fields: map[string][]float64{
			"Concentration": {30, 10, 20, 99, 40},
		},
	}
	pts, err := Centerline(f, "Concentration", 0, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 4 {
		t.Fatalf("got %d points, want 4 (band filter)", len(pts))
	}
	if !sort.SliceIsSorted(pts, func(i, j int) bool { return pts[i].X < pts[j].X }) {
		t.Errorf("points not sorted by x: %+v", pts)
	}
	wantX := []float64{1, 2, 3, 4}
	wantC := []float64{10, 20, 30, 40}
	for i := range pts {
		if pts[i].X != wantX[i] || pts[i].C != wantC[i] {
			t.Errorf("point %d: got (%v, %v), want (%v, %v)", i, pts[i].X, pts[i].C, wantX[i], wantC[i])
		}
	}
}

func TestCenterlineMissingField(t *testing.T) {
	f := &Frame{X: []float64{0}, Y: []float64{0}, Fields: map[string][]float64{}}
	_, err := Centerline(f, "Concentration", 0, 0.1)
	var perr *InvalidParameterError
	if !errors.As(err, &perr) {
		t.Errorf("got %v, want InvalidParameterError", err)
	}
}

func TestSummarizeWidths(t *testing.T) {
	widths := []Width{
		{Time: 0, Sigma: 1, OK: true},
		{Time: 1, OK: false},
		{Time: 2, Sigma: 3, OK: true},
	}
	sum, err := SummarizeWidths(widths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Defined != 2 {
		t.Errorf("defined: got %d, want 2", sum.Defined)
	}
	if sum.Mean != 2 || sum.Min != 1 || sum.Max != 3 {
		t.Errorf("summary: got %+v", sum)
	}
	if math.Abs(sum.Std-1) > 1e-12 {
		t.Errorf("std: got %v, want 1", sum.Std)
	}

	if _, err := SummarizeWidths([]Width{{OK: false}}); !errors.Is(err, ErrNoSamples) {
		t.Errorf("all undefined: got %v, want ErrNoSamples", err)
	}
}
