package plumestat

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFrames is returned when an aggregate is requested over a run
	// with no loaded frames. An empty run is a valid load outcome, so
	// downstream callers must report "no data" rather than crash.
	ErrNoFrames = errors.New("plumestat: no frames loaded")

	// ErrNoSamples is returned when an aggregate has zero qualifying
	// samples.
	ErrNoSamples = errors.New("plumestat: no qualifying samples")
)

// InvalidParameterError reports a run parameter outside its valid
// range.
type InvalidParameterError struct {
	Param string
	Msg   string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("plumestat: invalid %s: %s", e.Param, e.Msg)
}

// FrameLoadError marks the frame whose exports could not be read or
// parsed. A frame directory that exists but holds bad files aborts the
// whole load: a half-parsed frame would silently corrupt every average
// computed after it.
type FrameLoadError struct {
	Index int
	Dir   string
	Err   error
}

func (e *FrameLoadError) Error() string {
	return fmt.Sprintf("plumestat: frame %d (%s): %v", e.Index, e.Dir, e.Err)
}

func (e *FrameLoadError) Unwrap() error { return e.Err }
