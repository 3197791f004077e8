// Package settings loads the run parameters for a plumestat analysis.
package settings

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds every run parameter consumed by the analysis core.
// The tolerance band for the width and centerline selects is a plain
// length, deliberately not derived from the grid spacing; on a
// non-uniform grid the effective sample count per frame changes with
// it, so it stays an explicit knob.
type Settings struct {
	DataDir      string  `mapstructure:"data_dir"`       // visualization dump directory
	OutputDir    string  `mapstructure:"output_dir"`     // where artifacts are written
	Frequency    float64 `mapstructure:"frequency"`      // forcing frequency (Hz)
	DtOutput     float64 `mapstructure:"dt_output"`      // time between output frames (s)
	NumFrames    int     `mapstructure:"num_frames"`     // frames to attempt to load
	NumPhaseBins int     `mapstructure:"num_phase_bins"` // phase bins over [0, 2π)
	XLocation    float64 `mapstructure:"x_location"`     // width measurement station
	YCenter      float64 `mapstructure:"y_center"`       // centerline y-coordinate
	Tolerance    float64 `mapstructure:"tolerance"`      // band half-width (length units)
}

// Load reads settings from an optional config file with environment
// overrides (prefix PLUMESTAT). An empty path uses defaults and the
// environment only.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PLUMESTAT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("settings: failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("settings: failed to unmarshal config: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "viz_odor_plume")
	v.SetDefault("output_dir", "plume_output")
	v.SetDefault("frequency", 0.5)
	v.SetDefault("dt_output", 0.04)
	v.SetDefault("num_frames", 200)
	v.SetDefault("num_phase_bins", 8)
	v.SetDefault("x_location", 2.0)
	v.SetDefault("y_center", 0.0)
	v.SetDefault("tolerance", 0.1)
}

// Validate checks that the run parameters are usable.
func (s *Settings) Validate() error {
	if s.DataDir == "" {
		return fmt.Errorf("settings: data_dir is required")
	}
	if s.Frequency <= 0 {
		return fmt.Errorf("settings: frequency must be positive")
	}
	if s.DtOutput <= 0 {
		return fmt.Errorf("settings: dt_output must be positive")
	}
	if s.NumFrames < 1 {
		return fmt.Errorf("settings: num_frames must be at least 1")
	}
	if s.NumPhaseBins < 1 {
		return fmt.Errorf("settings: num_phase_bins must be at least 1")
	}
	if s.Tolerance <= 0 {
		return fmt.Errorf("settings: tolerance must be positive")
	}
	return nil
}
