package pipeline

import (
	"fmt"

	"github.com/ornl-neutronimaging/tpx3reduce/cluster"
	"github.com/ornl-neutronimaging/tpx3reduce/fit"
)

// Config holds the pipeline's tunables (spec.md §6's configuration table).
// The zero value is not valid; start from DefaultConfig.
type Config struct {
	ABSRadius            int
	ABSMinClusterSize    int
	ABSSpiderTimeRangeNs int64
	ABSNumSlots          int

	PeakFitter            fit.Name
	SuperResolutionFactor float64
	WeightedByToT         bool

	// PulseRateHz enables the bad-TOF diagnostic when > 0 (spec.md §6).
	PulseRateHz float64

	// Workers is the size of the worker pool stage 3 runs on. 0 means
	// single-threaded (stage 3 runs inline on the calling goroutine).
	Workers int
}

// DefaultConfig returns the pipeline defaults from spec.md §6.
func DefaultConfig() Config {
	return Config{
		ABSRadius:             5,
		ABSMinClusterSize:     1,
		ABSSpiderTimeRangeNs:  75,
		ABSNumSlots:           cluster.DefaultSlots,
		PeakFitter:            fit.NameCentroid,
		SuperResolutionFactor: 1.0,
		WeightedByToT:         true,
		PulseRateHz:           0,
		Workers:               0,
	}
}

// ConfigError reports an invalid pipeline configuration (spec.md §7): it is
// fatal at construction, never surfaced mid-run.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pipeline: invalid config field %q: %s", e.Field, e.Reason)
}

// Validate checks cfg for the configuration errors spec.md §7 calls out.
func (cfg Config) Validate() error {
	switch cfg.PeakFitter {
	case fit.NameCentroid, fit.NameFastGaussian:
	default:
		return &ConfigError{Field: "PeakFitter", Reason: fmt.Sprintf("unknown peak fitter %q", cfg.PeakFitter)}
	}

	if cfg.ABSNumSlots <= 0 {
		return &ConfigError{Field: "ABSNumSlots", Reason: "must be positive"}
	}

	return nil
}

func (cfg Config) clusterConfig() cluster.Config {
	return cluster.Config{
		Radius:            cfg.ABSRadius,
		MinClusterSize:    cfg.ABSMinClusterSize,
		SpiderTimeRangeNs: cfg.ABSSpiderTimeRangeNs,
		NumSlots:          cfg.ABSNumSlots,
	}
}
