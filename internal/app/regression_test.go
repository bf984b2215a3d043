package app

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/saferbites/saferbites/internal/config"
	"github.com/saferbites/saferbites/internal/usecase/evaluation"
	searchuc "github.com/saferbites/saferbites/internal/usecase/search"
)

// TestRankingRegression runs the lexical pipeline over the labeled fixture corpus and fails
// when mean precision@10 or NDCG@10 falls below the recorded baseline.
func TestRankingRegression(t *testing.T) {
	dir := filepath.Join("testdata", "regression")

	cfg := config.Config{HTTP: config.HTTPConfig{Port: 8080}}
	cfg.Data.ViolationsPath = filepath.Join(dir, "violations.csv")
	cfg.Data.ReviewsPath = filepath.Join(dir, "reviews.csv")
	cfg.ApplyDefaults()

	a, err := Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	labels, err := evaluation.ReadLabels(filepath.Join(dir, "labels.csv"))
	if err != nil {
		t.Fatalf("ReadLabels: %v", err)
	}
	if len(labels) != 4 {
		t.Fatalf("expected 4 labeled queries, got %d", len(labels))
	}
	baseline, err := evaluation.ReadBaseline(filepath.Join(dir, "baseline.yaml"))
	if err != nil {
		t.Fatalf("ReadBaseline: %v", err)
	}

	report, err := evaluation.NewHarness(a.Search, searchuc.Options{}, zap.NewNop()).
		Run(context.Background(), labels, baseline.K)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, row := range report.Rows {
		t.Logf("%-12s retrieved=%v p=%.2f ndcg=%.3f", row.Query, row.Retrieved, row.Metrics.Precision, row.Metrics.NDCG)
	}

	if err := report.CheckBaseline(baseline); err != nil {
		t.Fatalf("ranking regressed: %v", err)
	}
}

func TestRankingRegression_DetectsDrop(t *testing.T) {
	baseline, err := evaluation.ReadBaseline(filepath.Join("testdata", "regression", "baseline.yaml"))
	if err != nil {
		t.Fatalf("ReadBaseline: %v", err)
	}
	worse := evaluation.Report{K: baseline.K, MeanPrecision: baseline.Precision - 0.05, MeanNDCG: baseline.NDCG}
	if err := worse.CheckBaseline(baseline); err == nil {
		t.Fatal("expected a precision drop to be reported")
	}
}
