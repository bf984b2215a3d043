// Package dataset reads tabular collaborator files (CSV, TSV, Parquet) and maps their
// columns onto logical fields through explicit alias lists.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/saferbites/saferbites/internal/domain"
)

// Table is a fully materialized file: header plus string cells.
type Table struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Format is a supported file format.
type Format string

// Format constants.
const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatParquet Format = "parquet"
)

// FormatOf infers the format from the file extension (csv by default).
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return FormatTSV
	case ".parquet", ".pq":
		return FormatParquet
	default:
		return FormatCSV
	}
}

// ReadFile loads a table. Absent or zero-byte files yield an error wrapping domain.ErrMissingData.
func ReadFile(path string) (Table, error) {
	cleanPath := filepath.Clean(path)
	stat, err := os.Stat(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Table{}, fmt.Errorf("%s: %w", cleanPath, domain.ErrMissingData)
		}
		return Table{}, fmt.Errorf("stat %s: %w", cleanPath, err)
	}
	if stat.Size() == 0 {
		return Table{}, fmt.Errorf("%s is empty: %w", cleanPath, domain.ErrMissingData)
	}

	switch FormatOf(cleanPath) {
	case FormatParquet:
		return readParquet(cleanPath)
	case FormatTSV:
		return readDelimited(cleanPath, '\t')
	default:
		return readDelimited(cleanPath, ',')
	}
}

func readDelimited(path string, comma rune) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("%s has no header: %w", path, domain.ErrMissingData)
		}
		return Table{}, fmt.Errorf("read header %s: %w", path, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := Table{Source: path, Columns: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read %s: %w", path, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteCSV writes a header and rows as CSV, creating parent directories.
func WriteCSV(path string, columns []string, rows [][]string) error {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", cleanPath, err)
	}
	f, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", cleanPath, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header %s: %w", cleanPath, err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write rows %s: %w", cleanPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cleanPath, err)
	}
	return nil
}
