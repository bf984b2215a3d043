package evaluation

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/saferbites/saferbites/internal/repository/dataset"
)

const (
	sheetQueries = "queries"
	sheetSummary = "summary"
)

func (r Report) header() []string {
	k := strconv.Itoa(r.K)
	return []string{"query", "relevant", "retrieved", "p@" + k, "recall@" + k, "ndcg@" + k, "degraded"}
}

// WriteCSV writes one row per query followed by a MEAN row.
func (r Report) WriteCSV(path string) error {
	rows := make([][]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.Query,
			strconv.Itoa(row.Relevant),
			strings.Join(row.Retrieved, " "),
			formatScore(row.Metrics.Precision),
			formatScore(row.Metrics.Recall),
			formatScore(row.Metrics.NDCG),
			strconv.FormatBool(row.Degraded),
		})
	}
	rows = append(rows, []string{
		"MEAN", "", "",
		formatScore(r.MeanPrecision), formatScore(r.MeanRecall), formatScore(r.MeanNDCG), "",
	})
	if err := dataset.WriteCSV(path, r.header(), rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a per-query sheet and a summary sheet.
func (r Report) WriteXLSX(path string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetQueries); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := setRow(f, sheetQueries, 1, toAny(r.header())); err != nil {
		return err
	}
	for i, row := range r.Rows {
		values := []any{
			row.Query,
			row.Relevant,
			strings.Join(row.Retrieved, " "),
			row.Metrics.Precision,
			row.Metrics.Recall,
			row.Metrics.NDCG,
			row.Degraded,
		}
		if err := setRow(f, sheetQueries, i+2, values); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheetQueries, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(sheetQueries, "A", "A", 36); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	k := strconv.Itoa(r.K)
	summary := [][]any{
		{"metric", "value"},
		{"queries", len(r.Rows)},
		{"mean p@" + k, r.MeanPrecision},
		{"mean recall@" + k, r.MeanRecall},
		{"mean ndcg@" + k, r.MeanNDCG},
	}
	for i, values := range summary {
		if err := setRow(f, sheetSummary, i+1, values); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheetSummary, 1, 1, bold); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
