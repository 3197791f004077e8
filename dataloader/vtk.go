package dataloader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ScalarField is one scalar field recovered from a legacy ASCII VTK
// export. Values has length Nx*Ny in row-major order (x varies
// fastest), matching the grid implied by the DIMENSIONS line.
type ScalarField struct {
	Nx, Ny  int
	Origin  [2]float64
	Spacing [2]float64
	Values  []float64
}

// At returns the value at column i, row j.
func (s *ScalarField) At(i, j int) float64 {
	return s.Values[j*s.Nx+i]
}

// ParseError is returned when an export is present but does not contain
// a recoverable scalar grid. Stage identifies which parse strategy gave
// up: "dimensions", "scalars" or "reshape".
type ParseError struct {
	Path  string
	Line  int // 1-based, 0 when no single line is at fault
	Stage string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("dataloader: %s: line %d: %s: %s", e.Path, e.Line, e.Stage, e.Msg)
	}
	return fmt.Sprintf("dataloader: %s: %s: %s", e.Path, e.Stage, e.Msg)
}

// ReadScalarFile opens path and parses it as an ASCII VTK scalar
// export. A missing file is reported by the wrapped os error, so
// callers can test for fs.ErrNotExist.
func ReadScalarFile(path string) (*ScalarField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataloader: %w", err)
	}
	defer file.Close()
	return ParseScalar(file, path)
}

// ParseScalar recovers a 2-D scalar grid from the text of one export.
// The format is human-authored and drifts between tool versions, so the
// parse is layered: the DIMENSIONS line is mandatory, then values are
// collected from the first SCALARS block, then from the block following
// a POINT_DATA declaration if the first pass found nothing. Stray
// annotation lines inside a data block are skipped, not fatal.
func ParseScalar(r io.Reader, path string) (*ScalarField, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("dataloader: reading %s: %w", path, err)
	}

	nx, ny, dimLine, err := findDimensions(lines, path)
	if err != nil {
		return nil, err
	}

	origin, spacing := findGeometry(lines, nx, ny)

	values := collectScalars(lines)
	if len(values) == 0 {
		values = collectPointData(lines)
	}
	if len(values) == 0 {
		return nil, &ParseError{Path: path, Stage: "scalars", Msg: "no scalar data found"}
	}

	want := nx * ny
	if len(values) < want {
		return nil, &ParseError{
			Path:  path,
			Line:  dimLine,
			Stage: "reshape",
			Msg:   fmt.Sprintf("have %d values, grid needs %d", len(values), want),
		}
	}
	// Trailing tokens beyond the grid are discarded.
	return &ScalarField{
		Nx:      nx,
		Ny:      ny,
		Origin:  origin,
		Spacing: spacing,
		Values:  values[:want:want],
	}, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<22)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// findDimensions locates the mandatory DIMENSIONS line and returns the
// grid shape. There is no recovery for a missing or mangled line: the
// rest of the file cannot be shaped without it.
func findDimensions(lines []string, path string) (nx, ny, lineNum int, err error) {
	for i, line := range lines {
		if !strings.Contains(line, "DIMENSIONS") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return 0, 0, 0, &ParseError{Path: path, Line: i + 1, Stage: "dimensions", Msg: "fewer than two sizes on DIMENSIONS line"}
		}
		a, errA := strconv.Atoi(fields[1])
		b, errB := strconv.Atoi(fields[2])
		if errA != nil || errB != nil || a <= 0 || b <= 0 {
			return 0, 0, 0, &ParseError{Path: path, Line: i + 1, Stage: "dimensions", Msg: "sizes are not positive integers"}
		}
		return a, b, i + 1, nil
	}
	return 0, 0, 0, &ParseError{Path: path, Stage: "dimensions", Msg: "no DIMENSIONS line"}
}

// findGeometry reads the optional ORIGIN and SPACING lines. Exports
// that omit them get unit-domain coordinates, evenly spaced over [0,1]
// along each axis.
func findGeometry(lines []string, nx, ny int) (origin, spacing [2]float64) {
	haveSpacing := false
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		switch fields[0] {
		case "ORIGIN":
			x, errX := strconv.ParseFloat(fields[1], 64)
			y, errY := strconv.ParseFloat(fields[2], 64)
			if errX == nil && errY == nil {
				origin = [2]float64{x, y}
			}
		case "SPACING":
			dx, errX := strconv.ParseFloat(fields[1], 64)
			dy, errY := strconv.ParseFloat(fields[2], 64)
			if errX == nil && errY == nil {
				spacing = [2]float64{dx, dy}
				haveSpacing = true
			}
		}
	}
	if !haveSpacing {
		spacing = [2]float64{unitSpacing(nx), unitSpacing(ny)}
	}
	return origin, spacing
}

func unitSpacing(n int) float64 {
	if n < 2 {
		return 1
	}
	return 1 / float64(n-1)
}

// collectScalars gathers the value stream following the first SCALARS
// marker. Exactly one LOOKUP_TABLE legend line after the marker is
// skipped; any other unparsable line inside the block is dropped.
func collectScalars(lines []string) []float64 {
	var vals []float64
	reading := false
	skipLookup := false
	for _, line := range lines {
		if !reading && strings.Contains(line, "SCALARS") {
			reading = true
			skipLookup = true
			continue
		}
		if !reading {
			continue
		}
		if skipLookup && strings.Contains(line, "LOOKUP_TABLE") {
			skipLookup = false
			continue
		}
		row, ok := parseFloats(line)
		if !ok {
			continue
		}
		skipLookup = false
		vals = append(vals, row...)
	}
	return vals
}

// collectPointData is the fallback for exports whose SCALARS block
// carries nothing usable: find the POINT_DATA count, then the nearest
// SCALARS marker after it, and collect until the declared number of
// points is reached.
func collectPointData(lines []string) []float64 {
	for i, line := range lines {
		if !strings.Contains(line, "POINT_DATA") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n <= 0 {
			return nil
		}
		for j := i; j < len(lines); j++ {
			if !strings.Contains(lines[j], "SCALARS") {
				continue
			}
			var vals []float64
			// j+2 skips the marker and its legend line.
			for k := j + 2; k < len(lines); k++ {
				row, ok := parseFloats(lines[k])
				if !ok {
					continue
				}
				vals = append(vals, row...)
				if len(vals) >= n {
					return vals
				}
			}
			return vals
		}
		return nil
	}
	return nil
}

func parseFloats(line string) ([]float64, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	row := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}
