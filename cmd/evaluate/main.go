// Command evaluate scores the search pipeline against labeled queries, and generates
// silver-standard labels from the processed collections.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/app"
	"github.com/saferbites/saferbites/internal/config"
	"github.com/saferbites/saferbites/internal/domain"
	logpkg "github.com/saferbites/saferbites/internal/logger"
	"github.com/saferbites/saferbites/internal/usecase/evaluation"
	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

func main() {
	var (
		labelsPath     = flag.String("labels", "data/labeled_queries.csv", "label file (query,relevant_business_ids)")
		generate       = flag.Bool("generate", false, "generate silver labels into -labels before evaluating")
		labelCap       = flag.Int("label-cap", evaluation.DefaultLabelCap, "max relevant ids per silver label")
		k              = flag.Int("k", evaluation.DefaultK, "rank cutoff")
		reportCSV      = flag.String("report-csv", "", "write the per-query report as CSV")
		reportXLSX     = flag.String("report-xlsx", "", "write the per-query report as XLSX")
		baselinePath   = flag.String("baseline", "", "fail when results drop below this baseline (YAML)")
		recordBaseline = flag.Bool("record-baseline", false, "write the run's means to -baseline instead of checking")
		noRerank       = flag.Bool("no-rerank", false, "evaluate lexical ranking only")
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

	if err := run(context.Background(), cfg, logger, options{
		labelsPath:     *labelsPath,
		generate:       *generate,
		labelCap:       *labelCap,
		k:              *k,
		reportCSV:      *reportCSV,
		reportXLSX:     *reportXLSX,
		baselinePath:   *baselinePath,
		recordBaseline: *recordBaseline,
		noRerank:       *noRerank,
	}); err != nil {
		logger.Error("evaluation failed", zap.Error(err))
		_ = logger.Sync()
		if errors.Is(err, domain.ErrBelowBaseline) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	labelsPath     string
	generate       bool
	labelCap       int
	k              int
	reportCSV      string
	reportXLSX     string
	baselinePath   string
	recordBaseline bool
	noRerank       bool
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, opts options) error {
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.generate {
		labels := evaluation.GenerateSilverLabels(a.Store.All(), evaluation.DefaultQueries, opts.labelCap)
		if err := evaluation.WriteLabels(opts.labelsPath, labels); err != nil {
			return err
		}
		logger.Info("silver labels generated",
			zap.Int("queries", len(labels)), zap.String("path", opts.labelsPath))
	}

	labels, err := evaluation.ReadLabels(opts.labelsPath)
	if err != nil {
		return err
	}

	var searchOpts searchuc.Options
	if opts.noRerank {
		off := false
		searchOpts.Rerank = &off
	}
	report, err := evaluation.NewHarness(a.Search, searchOpts, logger).Run(ctx, labels, opts.k)
	if err != nil {
		return err
	}

	for _, row := range report.Rows {
		logger.Info("query evaluated",
			zap.String("query", row.Query),
			zap.Float64("precision", row.Metrics.Precision),
			zap.Float64("recall", row.Metrics.Recall),
			zap.Float64("ndcg", row.Metrics.NDCG),
			zap.Bool("degraded", row.Degraded),
		)
	}
	logger.Info("evaluation summary",
		zap.Int("queries", len(report.Rows)),
		zap.Int("k", report.K),
		zap.Float64("mean_precision", report.MeanPrecision),
		zap.Float64("mean_recall", report.MeanRecall),
		zap.Float64("mean_ndcg", report.MeanNDCG),
	)

	if opts.reportCSV != "" {
		if err := report.WriteCSV(opts.reportCSV); err != nil {
			return err
		}
	}
	if opts.reportXLSX != "" {
		if err := report.WriteXLSX(opts.reportXLSX); err != nil {
			return err
		}
	}

	if opts.baselinePath == "" {
		return nil
	}
	if opts.recordBaseline {
		return evaluation.WriteBaseline(opts.baselinePath, evaluation.BaselineOf(report))
	}
	baseline, err := evaluation.ReadBaseline(opts.baselinePath)
	if err != nil {
		return err
	}
	return report.CheckBaseline(baseline)
}
