package evaluation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/saferbites/saferbites/internal/domain"
)

// DefaultTolerance is the allowed drop below a baseline before it counts as a regression.
const DefaultTolerance = 0.001

// Baseline is a recorded evaluation result that later runs must not fall below.
type Baseline struct {
	K         int     `yaml:"k"`
	Precision float64 `yaml:"precision"`
	NDCG      float64 `yaml:"ndcg"`
	Tolerance float64 `yaml:"tolerance"`
}

// BaselineOf records a report as a baseline.
func BaselineOf(r Report) Baseline {
	return Baseline{K: r.K, Precision: r.MeanPrecision, NDCG: r.MeanNDCG, Tolerance: DefaultTolerance}
}

// CheckBaseline returns an error wrapping domain.ErrBelowBaseline when mean precision or
// mean NDCG dropped below the baseline by more than its tolerance.
func (r Report) CheckBaseline(b Baseline) error {
	if b.K > 0 && b.K != r.K {
		return fmt.Errorf("baseline recorded at k=%d, report at k=%d", b.K, r.K)
	}
	tol := b.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	var errs []error
	if r.MeanPrecision < b.Precision-tol {
		errs = append(errs, fmt.Errorf("%w: precision@%d %.4f < %.4f",
			domain.ErrBelowBaseline, r.K, r.MeanPrecision, b.Precision))
	}
	if r.MeanNDCG < b.NDCG-tol {
		errs = append(errs, fmt.Errorf("%w: ndcg@%d %.4f < %.4f",
			domain.ErrBelowBaseline, r.K, r.MeanNDCG, b.NDCG))
	}
	return errors.Join(errs...)
}

// ReadBaseline loads a YAML baseline file.
func ReadBaseline(path string) (Baseline, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Baseline{}, fmt.Errorf("read baseline: %w", err)
	}
	var b Baseline
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Baseline{}, fmt.Errorf("parse baseline: %w", err)
	}
	return b, nil
}

// WriteBaseline saves a baseline as YAML.
func WriteBaseline(path string, b Baseline) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return fmt.Errorf("create dir for baseline: %w", err)
	}
	if err := os.WriteFile(cleanPath, data, 0o644); err != nil {
		return fmt.Errorf("write baseline: %w", err)
	}
	return nil
}
