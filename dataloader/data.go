// Package dataloader reads scalar fields for plumestat from the
// visualization exports written during a simulation run.
package dataloader

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
)

var identityFunc func([]float64) (float64, error) = func(d []float64) (float64, error) {
	if len(d) != 1 {
		return math.NaN(), fmt.Errorf("length of data is not 1")
	}
	return d[0], nil
}

// FieldTransformer says which export files hold the inputs for a field
// and how to derive the field value at each point from them.
type FieldTransformer struct {
	Files       []string                         // export files needed, one scalar each
	Transformer func([]float64) (float64, error) // derives the value from the file values
}

// Format reads the fields of one frame from its dump directory.
type Format interface {
	Fieldmap(fieldname string) *FieldTransformer
	ReadFrame(dir string, fields []string) (*FrameData, error)
}

// FrameData is the raw content of one frame: the shared point set and
// every requested field aligned index-for-index with it.
type FrameData struct {
	Nx, Ny int
	X, Y   []float64
	Fields map[string][]float64
}

var vizMap map[string]*FieldTransformer = map[string]*FieldTransformer{
	"XVelocity": &FieldTransformer{
		Files:       []string{"U_x.vtk"},
		Transformer: identityFunc,
	},
	"YVelocity": &FieldTransformer{
		Files:       []string{"U_y.vtk"},
		Transformer: identityFunc,
	},
	"Vorticity": &FieldTransformer{
		Files:       []string{"Omega.vtk"},
		Transformer: identityFunc,
	},
	"Concentration": &FieldTransformer{
		Files:       []string{"C.vtk"},
		Transformer: identityFunc,
	},
	"Speed": &FieldTransformer{
		Files: []string{"U_x.vtk", "U_y.vtk"},
		Transformer: func(d []float64) (float64, error) {
			if len(d) != 2 {
				return math.NaN(), fmt.Errorf("wrong number of inputs")
			}
			return math.Hypot(d[0], d[1]), nil
		},
	},
}

// VisItDump is the per-frame directory layout written by the solver's
// visualization dump routine: one legacy ASCII VTK file per field.
type VisItDump struct{}

// Fieldmap specifies which export files are needed to get fieldname.
func (v VisItDump) Fieldmap(fieldname string) *FieldTransformer {
	return vizMap[fieldname]
}

// ReadFrame loads the requested fields from one frame directory. Every
// file in the directory must agree on grid dimensions; the point
// coordinates are synthesized from the first file's origin and spacing.
func (v VisItDump) ReadFrame(dir string, fields []string) (*FrameData, error) {
	// First, find which files are needed for each field.
	transformers := make([]*FieldTransformer, len(fields))
	for i, field := range fields {
		transformers[i] = v.Fieldmap(field)
		if transformers[i] == nil {
			return nil, fmt.Errorf("dataloader: unknown field %v", field)
		}
	}

	// Next, find all the unique files and read each once.
	m := make(map[string]bool)
	for _, transformer := range transformers {
		for _, name := range transformer.Files {
			m[name] = true
		}
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	grids := make(map[string]*ScalarField, len(names))
	var ref *ScalarField
	for _, name := range names {
		grid, err := ReadScalarFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if ref == nil {
			ref = grid
		} else if grid.Nx != ref.Nx || grid.Ny != ref.Ny {
			return nil, fmt.Errorf("dataloader: %s: grid %dx%d does not match %dx%d",
				name, grid.Nx, grid.Ny, ref.Nx, ref.Ny)
		}
		grids[name] = grid
	}

	n := ref.Nx * ref.Ny
	fd := &FrameData{
		Nx:     ref.Nx,
		Ny:     ref.Ny,
		X:      make([]float64, n),
		Y:      make([]float64, n),
		Fields: make(map[string][]float64, len(fields)),
	}
	for j := 0; j < ref.Ny; j++ {
		for i := 0; i < ref.Nx; i++ {
			idx := j*ref.Nx + i
			fd.X[idx] = ref.Origin[0] + float64(i)*ref.Spacing[0]
			fd.Y[idx] = ref.Origin[1] + float64(j)*ref.Spacing[1]
		}
	}

	// Transform the file values into the requested fields.
	for j, transformer := range transformers {
		sources := make([][]float64, len(transformer.Files))
		for k, name := range transformer.Files {
			sources[k] = grids[name].Values
		}
		out := make([]float64, n)
		tmp := make([]float64, len(sources))
		for i := 0; i < n; i++ {
			for k := range sources {
				tmp[k] = sources[k][i]
			}
			value, err := transformer.Transformer(tmp)
			if err != nil {
				return nil, fmt.Errorf("dataloader: transforming %s: %w", fields[j], err)
			}
			out[i] = value
		}
		fd.Fields[fields[j]] = out
	}
	return fd, nil
}
