package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/btracey/plumestat"
	"github.com/btracey/plumestat/dataloader"
	"github.com/btracey/plumestat/settings"
)

func main() {
	var cfgFile string
	flag.StringVar(&cfgFile, "config", "", "run parameter file (defaults apply when empty)")
	var debug bool
	flag.BoolVar(&debug, "debug", false, "turn on debugging output")
	var doprofile bool
	flag.BoolVar(&doprofile, "profile", false, "should the analysis be profiled")
	flag.Parse()

	if doprofile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	logger, err := newLogger(debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := analyze(cfgFile, logger.Sugar()); err != nil {
		logger.Sugar().Fatalw("analysis failed", "error", err)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func analyze(cfgFile string, log *zap.SugaredLogger) error {
	set, err := settings.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := set.Validate(); err != nil {
		return err
	}

	store, err := plumestat.NewFrameStore(set.DataDir, dataloader.VisItDump{}, set.Frequency, set.DtOutput, log)
	if err != nil {
		return err
	}

	fields := []string{"Concentration", "Vorticity"}
	run, err := store.Load(set.NumFrames, fields)
	if err != nil {
		return err
	}
	if len(run.Frames) == 0 {
		log.Warnw("no frames loaded, nothing to analyze", "data_dir", set.DataDir)
		return nil
	}
	if run.Partial() {
		log.Warnw("partial run", "loaded", len(run.Frames), "requested", set.NumFrames)
	}

	if err := os.MkdirAll(set.OutputDir, 0700); err != nil {
		return err
	}

	avgs, err := plumestat.PhaseAverages(run, set.NumPhaseBins)
	if err != nil {
		return err
	}
	empty, err := plumestat.WritePhaseFields(filepath.Join(set.OutputDir, "phase_resolved"), run, avgs)
	if err != nil {
		return err
	}
	for _, bin := range empty {
		log.Warnw("no frames in phase bin", "bin", bin, "phase_lo", avgs[bin].Lo)
	}

	stats := plumestat.RunStats{
		Frequency:       set.Frequency,
		DtOutput:        set.DtOutput,
		FramesLoaded:    len(run.Frames),
		FramesRequested: set.NumFrames,
	}

	cond, err := plumestat.ConditionalStats(run, "Concentration", "Vorticity")
	switch {
	case errors.Is(err, plumestat.ErrNoSamples):
		log.Warnw("conditional statistics: no data")
	case err != nil:
		return err
	default:
		stats.Conditional = &cond
		log.Infow("conditional statistics",
			"mean_positive", cond.MeanPositive,
			"mean_negative", cond.MeanNegative,
			"mean_irrotational", cond.MeanIrrotational,
			"threshold", cond.Threshold)
	}

	widths, err := plumestat.PlumeWidths(run, "Concentration", set.XLocation, set.Tolerance)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(set.OutputDir, "plume_width.dat"), func(w io.Writer) error {
		return plumestat.WriteWidthSeries(w, widths)
	}); err != nil {
		return err
	}
	summary, err := plumestat.SummarizeWidths(widths)
	switch {
	case errors.Is(err, plumestat.ErrNoSamples):
		log.Warnw("plume width: no defined estimates", "station", set.XLocation)
	case err != nil:
		return err
	default:
		stats.Width = &summary
		log.Infow("plume width", "mean", summary.Mean, "std", summary.Std, "defined", summary.Defined)
	}

	// Centerline from the middle frame, the usual representative sample.
	mid := run.Frames[len(run.Frames)/2]
	line, err := plumestat.Centerline(mid, "Concentration", set.YCenter, set.Tolerance)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(set.OutputDir, "centerline.dat"), func(w io.Writer) error {
		return plumestat.WriteCenterline(w, line)
	}); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(set.OutputDir, "plume_stats.json"), func(w io.Writer) error {
		return plumestat.WriteStats(w, stats)
	}); err != nil {
		return err
	}

	log.Infow("analysis complete", "output_dir", set.OutputDir)
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
