package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Frequency != 0.5 || s.DtOutput != 0.04 {
		t.Errorf("timing defaults: got %v Hz, %v s", s.Frequency, s.DtOutput)
	}
	if s.NumFrames != 200 || s.NumPhaseBins != 8 {
		t.Errorf("count defaults: got %d frames, %d bins", s.NumFrames, s.NumPhaseBins)
	}
	if s.XLocation != 2.0 || s.YCenter != 0.0 || s.Tolerance != 0.1 {
		t.Errorf("band defaults: got x=%v y=%v tol=%v", s.XLocation, s.YCenter, s.Tolerance)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "frequency: 1.25\nnum_frames: 10\ndata_dir: /tmp/run7\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Frequency != 1.25 {
		t.Errorf("frequency: got %v, want 1.25", s.Frequency)
	}
	if s.NumFrames != 10 {
		t.Errorf("num_frames: got %d, want 10", s.NumFrames)
	}
	if s.DataDir != "/tmp/run7" {
		t.Errorf("data_dir: got %q", s.DataDir)
	}
	// Unset keys keep their defaults.
	if s.NumPhaseBins != 8 {
		t.Errorf("num_phase_bins: got %d, want default 8", s.NumPhaseBins)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Settings {
		s, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	for _, test := range []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty data_dir", func(s *Settings) { s.DataDir = "" }},
		{"zero frequency", func(s *Settings) { s.Frequency = 0 }},
		{"negative dt", func(s *Settings) { s.DtOutput = -0.1 }},
		{"zero frames", func(s *Settings) { s.NumFrames = 0 }},
		{"zero bins", func(s *Settings) { s.NumPhaseBins = 0 }},
		{"zero tolerance", func(s *Settings) { s.Tolerance = 0 }},
	} {
		s := base()
		test.mutate(s)
		if err := s.Validate(); err == nil {
			t.Errorf("%s: expected validation error", test.name)
		}
	}
}
