package plumestat

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// WritePhaseFields writes one tab-delimited table per non-empty phase
// bin into dir, columns x, y, then each field in name order. It returns
// the indices of bins skipped because no frames fell into them; the
// caller decides how loudly to report those.
func WritePhaseFields(dir string, run *Run, avgs []PhaseAverage) ([]int, error) {
	if run == nil || len(run.Frames) == 0 {
		return nil, ErrNoFrames
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	ref := run.Frames[0]
	var empty []int
	for i := range avgs {
		if avgs[i].Empty() {
			empty = append(empty, i)
			continue
		}
		name := filepath.Join(dir, fmt.Sprintf("phase_avg_%02d.dat", i))
		if err := writeFieldTable(name, ref.X, ref.Y, avgs[i].Fields); err != nil {
			return nil, err
		}
	}
	return empty, nil
}

func writeFieldTable(path string, x, y []float64, fields map[string][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	// The heading row is quoted by hand; csv.Writer would escape the
	// quote characters.
	head := make([]byte, 0)
	head = append(head, `"x"`+"\t"+`"y"`...)
	for _, name := range names {
		head = append(head, '\t', '"')
		head = append(head, name...)
		head = append(head, '"')
	}
	head = append(head, '\n')
	if _, err := file.Write(head); err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	writer.Comma = '\t'
	record := make([]string, 2+len(names))
	for i := range x {
		record[0] = strconv.FormatFloat(x[i], 'e', 16, 64)
		record[1] = strconv.FormatFloat(y[i], 'e', 16, 64)
		for j, name := range names {
			record[2+j] = strconv.FormatFloat(fields[name][i], 'e', 16, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteWidthSeries writes the time-ordered width table. Undefined
// widths are written as the literal "undefined" so they cannot be
// mistaken for a measured zero.
func WriteWidthSeries(w io.Writer, widths []Width) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write([]string{"time", "width"}); err != nil {
		return err
	}
	for _, wd := range widths {
		sigma := "undefined"
		if wd.OK {
			sigma = strconv.FormatFloat(wd.Sigma, 'e', 16, 64)
		}
		if err := writer.Write([]string{strconv.FormatFloat(wd.Time, 'e', 16, 64), sigma}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCenterline writes the centerline samples as a tab-delimited
// (x, C) table.
func WriteCenterline(w io.Writer, pts []CenterlinePoint) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write([]string{"x", "C"}); err != nil {
		return err
	}
	for _, pt := range pts {
		rec := []string{
			strconv.FormatFloat(pt.X, 'e', 16, 64),
			strconv.FormatFloat(pt.C, 'e', 16, 64),
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// RunStats is the summary record handed off to the reporting layer.
type RunStats struct {
	Frequency       float64            `json:"frequency"`
	DtOutput        float64            `json:"dt_output"`
	FramesLoaded    int                `json:"frames_loaded"`
	FramesRequested int                `json:"frames_requested"`
	Conditional     *VortexConditional `json:"conditional_statistics,omitempty"`
	Width           *WidthSummary      `json:"plume_width,omitempty"`
}

// WriteStats marshals the run statistics as indented JSON.
func WriteStats(w io.Writer, stats RunStats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
