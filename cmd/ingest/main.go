// Command ingest preprocesses raw inspection and review tables into the processed
// document collections the API server loads.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/config"
	logpkg "github.com/saferbites/saferbites/internal/logger"
	"github.com/saferbites/saferbites/internal/usecase/ingest"
)

func main() {
	var (
		inspections = flag.String("inspections", "data/inspections_raw.csv", "raw inspection table (csv, tsv, parquet)")
		reviews     = flag.String("reviews", "data/reviews_raw.csv", "raw review table (csv, tsv, parquet)")
		seed        = flag.Uint64("seed", 42, "seed for assigning unlabeled reviews to establishments")
		minLen      = flag.Int("min-sentence-length", ingest.DefaultMinSentenceLength, "drop shorter review sentences")
	)
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	logger, err := logpkg.New(env, logpkg.Options{Level: cfg.Logging.Level, Service: cfg.Tracing.ServiceName})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := ingest.New(ingest.Config{
		TagDelimiter:      cfg.Data.TagDelimiter,
		MinSentenceLength: *minLen,
		Seed:              *seed,
	}, logger)

	stats, err := p.Run(ctx, ingest.Paths{
		Inspections:   *inspections,
		Reviews:       *reviews,
		ViolationsOut: cfg.Data.ViolationsPath,
		ReviewsOut:    cfg.Data.ReviewsPath,
	})
	if err != nil {
		logger.Error("ingest failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("ingest complete",
		zap.Int("violations", stats.Violations),
		zap.Int("reviews", stats.Reviews),
		zap.Int("establishments", stats.Establishments),
		zap.Int("skipped", stats.Skipped),
	)
}
