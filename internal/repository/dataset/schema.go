package dataset

import (
	"strings"

	"github.com/saferbites/saferbites/internal/domain"
)

// Field is a logical column with the header names it may appear under, in preference order.
type Field struct {
	Name     string
	Aliases  []string
	Required bool
	Default  string
}

// Schema is an explicit mapping from logical fields to accepted header aliases.
type Schema []Field

// Binding is a schema resolved against one table's header.
type Binding struct {
	index    map[string]int
	defaults map[string]string
}

// Bind resolves every field once. A required field with no matching alias is a
// *domain.SchemaMismatchError. Exact header matches win over case-insensitive ones.
func (s Schema) Bind(t Table) (Binding, error) {
	b := Binding{index: make(map[string]int, len(s)), defaults: make(map[string]string, len(s))}
	for _, f := range s {
		aliases := f.Aliases
		if len(aliases) == 0 {
			aliases = []string{f.Name}
		}
		col := findColumn(t.Columns, aliases)
		if col < 0 {
			if f.Required {
				return Binding{}, domain.NewSchemaMismatch(t.Source, f.Name, aliases)
			}
			b.defaults[f.Name] = f.Default
			continue
		}
		b.index[f.Name] = col
	}
	return b, nil
}

func findColumn(columns, aliases []string) int {
	for _, a := range aliases {
		for i, c := range columns {
			if c == a {
				return i
			}
		}
	}
	for _, a := range aliases {
		for i, c := range columns {
			if strings.EqualFold(c, a) {
				return i
			}
		}
	}
	return -1
}

// Has reports whether the field was found in the header.
func (b Binding) Has(field string) bool {
	_, ok := b.index[field]
	return ok
}

// Get returns the field's cell in row, or the field default when the column is absent
// or the row is short.
func (b Binding) Get(row []string, field string) string {
	col, ok := b.index[field]
	if !ok || col >= len(row) {
		return b.defaults[field]
	}
	return row[col]
}
