package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	"github.com/ornl-neutronimaging/tpx3reduce/fit"
	"github.com/ornl-neutronimaging/tpx3reduce/pipeline"
	"github.com/ornl-neutronimaging/tpx3reduce/search"
	"github.com/ornl-neutronimaging/tpx3reduce/source"
)

// reduce handles the reduction of a single TPX3 capture, writing a JSON
// summary (events + diagnostics) alongside the capture.
func reduce(tpxURI, configURI, outdirURI string, inMemory bool, cfg pipeline.Config) error {
	log.Println("Processing TPX3:", tpxURI)

	src, err := source.Open(tpxURI, configURI, inMemory)
	if err != nil {
		return err
	}
	defer src.Close()

	codec := source.NoOpCodec{}
	raw, err := source.ReadAll(src, codec)
	if err != nil {
		return err
	}

	driver, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	result, err := driver.Run(raw, 0)
	if err != nil {
		return err
	}

	dir, file := filepath.Split(tpxURI)
	if outdirURI == "" {
		outdirURI = dir
	}

	outURI := filepath.Join(outdirURI, file+"-events.json")
	jsn, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outURI, jsn, 0o644); err != nil {
		return err
	}

	log.Printf("Finished %s: %d events, %d hits, %d batches (%d truncated)\n",
		tpxURI, len(result.Events), result.Stats.Hits, result.Stats.Batches, result.Stats.Truncated)

	return nil
}

// reduceTrawl searches uri for *.tpx3 captures and reduces each one,
// spreading work across a fixed pool of 2*NumCPU workers.
func reduceTrawl(uri, configURI, outdirURI string, inMemory bool, cfg pipeline.Config) error {
	log.Println("Searching uri:", uri)
	items := search.FindTPX3(uri, configURI)
	log.Println("Number of TPX3 captures to process:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, name := range items {
		item := name
		pool.Submit(func() {
			if err := reduce(item, configURI, outdirURI, inMemory, cfg); err != nil {
				log.Printf("error reducing %s: %v\n", item, err)
			}
		})
	}

	return nil
}

func configFromFlags(c *cli.Context) pipeline.Config {
	cfg := pipeline.DefaultConfig()

	if c.IsSet("abs-radius") {
		cfg.ABSRadius = c.Int("abs-radius")
	}
	if c.IsSet("abs-min-cluster-size") {
		cfg.ABSMinClusterSize = c.Int("abs-min-cluster-size")
	}
	if c.IsSet("abs-spider-time-range") {
		cfg.ABSSpiderTimeRangeNs = c.Int64("abs-spider-time-range")
	}
	if c.IsSet("peak-fitter") {
		cfg.PeakFitter = fit.Name(c.String("peak-fitter"))
	}
	if c.IsSet("super-resolution") {
		cfg.SuperResolutionFactor = c.Float64("super-resolution")
	}
	if c.IsSet("pulse-rate-hz") {
		cfg.PulseRateHz = c.Float64("pulse-rate-hz")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}

	return cfg
}

var pipelineFlags = []cli.Flag{
	&cli.IntFlag{Name: "abs-radius", Usage: "ABS feather radius, in pixels."},
	&cli.IntFlag{Name: "abs-min-cluster-size", Usage: "Drop ABS clusters below this size."},
	&cli.Int64Flag{Name: "abs-spider-time-range", Usage: "ABS time window, in nanoseconds."},
	&cli.StringFlag{Name: "peak-fitter", Usage: `"centroid" or "fast_gaussian".`},
	&cli.Float64Flag{Name: "super-resolution", Usage: "Coordinate multiplier applied by the peak fitter."},
	&cli.Float64Flag{Name: "pulse-rate-hz", Usage: "Enables the bad-TOF diagnostic at this pulse rate."},
	&cli.IntFlag{Name: "workers", Usage: "Worker pool size for the per-batch decode/cluster/fit stage; 0 = single-threaded."},
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:  "reduce",
				Usage: "Reduce a single TPX3 capture into neutron events.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "tpx-uri", Usage: "URI or pathname to a TPX3 capture."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.BoolFlag{Name: "in-memory", Usage: "Read the entire capture into memory before processing."},
				}, pipelineFlags...),
				Action: func(cCtx *cli.Context) error {
					tpxURI := cCtx.String("tpx-uri")
					if tpxURI == "" {
						return errors.New("tpx-uri is required")
					}
					cfg := configFromFlags(cCtx)
					if err := cfg.Validate(); err != nil {
						return err
					}
					return reduce(tpxURI, cCtx.String("config-uri"), cCtx.String("outdir-uri"), cCtx.Bool("in-memory"), cfg)
				},
			},
			{
				Name:  "reduce-trawl",
				Usage: "Reduce every TPX3 capture found recursively under a URI.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing TPX3 captures."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.BoolFlag{Name: "in-memory", Usage: "Read each capture fully into memory before processing."},
				}, pipelineFlags...),
				Action: func(cCtx *cli.Context) error {
					cfg := configFromFlags(cCtx)
					if err := cfg.Validate(); err != nil {
						return err
					}
					return reduceTrawl(cCtx.String("uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"), cCtx.Bool("in-memory"), cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(fmt.Errorf("tpx3reduce: %w", err))
	}
}
