package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// readParquet reads a flat parquet file into string cells, one per leaf column.
func readParquet(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return Table{}, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return Table{}, fmt.Errorf("open parquet %s: %w", path, err)
	}

	leaves := pf.Schema().Columns()
	columns := make([]string, len(leaves))
	for i, p := range leaves {
		columns[i] = strings.Join(p, ".")
	}

	t := Table{Source: path, Columns: columns}
	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, len(columns), &t); err != nil {
			return Table{}, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return t, nil
}

func readRowGroup(rg parquet.RowGroup, width int, t *Table) error {
	rows := parquet.NewRowGroupReader(rg)
	buf := make([]parquet.Row, 256)

	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			t.Rows = append(t.Rows, rowToCells(buf[i], width))
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read rows: %w", readErr)
		}
	}
}

// rowToCells flattens a row by column index. Repeated values are joined with ",".
func rowToCells(row parquet.Row, width int) []string {
	cells := make([]string, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= width || v.IsNull() {
			continue
		}
		if cells[col] != "" {
			cells[col] += ","
		}
		cells[col] += v.String()
	}
	return cells
}
