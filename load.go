package plumestat

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/btracey/plumestat/dataloader"
)

// FrameStore loads frames from a visualization dump directory and
// assigns each its forcing phase from the run parameters.
type FrameStore struct {
	Dir       string
	Format    dataloader.Format
	Frequency float64 // forcing frequency (Hz)
	DtOutput  float64 // time between output frames (s)

	logger *zap.SugaredLogger
}

// NewFrameStore validates the run parameters and returns a store. A nil
// logger is replaced with a no-op logger.
func NewFrameStore(dir string, format dataloader.Format, frequency, dtOutput float64, logger *zap.SugaredLogger) (*FrameStore, error) {
	if frequency <= 0 {
		return nil, &InvalidParameterError{Param: "frequency", Msg: "must be positive"}
	}
	if dtOutput <= 0 {
		return nil, &InvalidParameterError{Param: "dtOutput", Msg: "must be positive"}
	}
	if format == nil {
		return nil, &InvalidParameterError{Param: "format", Msg: "must not be nil"}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FrameStore{
		Dir:       dir,
		Format:    format,
		Frequency: frequency,
		DtOutput:  dtOutput,
		logger:    logger,
	}, nil
}

// FrameDir returns the dump directory of frame idx.
func (s *FrameStore) FrameDir(idx int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("visit_dump_%04d", idx))
}

// Load reads up to count sequential frames, fanning the file reads out
// across goroutines and reassembling the results in ascending index
// order before phases are assigned. Loading stops at the first missing
// frame directory and returns the shorter run: partial runs are an
// expected operational state. A missing or malformed file inside a
// frame directory that does exist aborts the load with a
// FrameLoadError. Zero loaded frames is a valid, non-error outcome.
func (s *FrameStore) Load(count int, fields []string) (*Run, error) {
	if count < 0 {
		return nil, &InvalidParameterError{Param: "count", Msg: "must be non-negative"}
	}

	// Probe for the directories up front so the fan-out below only
	// touches frames that exist.
	avail := count
	for i := 0; i < count; i++ {
		if _, err := os.Stat(s.FrameDir(i)); err != nil {
			avail = i
			break
		}
	}
	if avail < count {
		s.logger.Warnw("frame directory missing, truncating run",
			"frame", avail, "requested", count)
	}

	data := make([]*dataloader.FrameData, avail)
	errs := make([]error, avail)
	wg := &sync.WaitGroup{}
	for i := 0; i < avail; i++ {
		wg.Add(1)
		go func(i int) {
			data[i], errs[i] = s.Format.ReadFrame(s.FrameDir(i), fields)
			wg.Done()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &FrameLoadError{Index: i, Dir: s.FrameDir(i), Err: err}
		}
	}

	run := &Run{
		Frames:    make([]*Frame, avail),
		Requested: count,
		Frequency: s.Frequency,
		DtOutput:  s.DtOutput,
	}
	for i, d := range data {
		if i > 0 && len(d.X) != len(data[0].X) {
			return nil, &FrameLoadError{
				Index: i,
				Dir:   s.FrameDir(i),
				Err:   fmt.Errorf("frame has %d points, run has %d", len(d.X), len(data[0].X)),
			}
		}
		run.Frames[i] = &Frame{
			Index:  i,
			Time:   float64(i) * s.DtOutput,
			Phase:  Phase(s.Frequency, s.DtOutput, i),
			X:      d.X,
			Y:      d.Y,
			Fields: d.Fields,
		}
	}
	s.logger.Infow("frames loaded", "count", avail, "requested", count)
	return run, nil
}
