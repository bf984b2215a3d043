package document

import (
	"strings"

	domdoc "github.com/saferbites/saferbites/internal/domain/document"
	"github.com/saferbites/saferbites/internal/repository/dataset"
)

// Logical column names of the processed document schema.
const (
	FieldDocID        = "doc_id"
	FieldBusinessID   = "business_id"
	FieldBusinessName = "business_name"
	FieldText         = "text"
	FieldOriginalText = "original_text"
	FieldSource       = "source"
	FieldTags         = "tags"
)

// Columns is the processed document header in write order.
var Columns = []string{
	FieldDocID, FieldBusinessID, FieldBusinessName, FieldText, FieldOriginalText, FieldSource, FieldTags,
}

// DefaultSchema returns the accepted header aliases for each logical field.
func DefaultSchema() dataset.Schema {
	return dataset.Schema{
		{Name: FieldDocID, Aliases: []string{"doc_id", "id"}, Required: true},
		{Name: FieldBusinessID, Aliases: []string{"business_id", "camis", "establishment_id"}, Required: true},
		{Name: FieldBusinessName, Aliases: []string{"business_name", "dba", "name"}, Default: domdoc.UnknownName},
		{Name: FieldText, Aliases: []string{"text", "clean_text", "normalized_text"}, Required: true},
		{Name: FieldOriginalText, Aliases: []string{"original_text", "violation_description", "review", "Review"}},
		{Name: FieldSource, Aliases: []string{"source"}},
		{Name: FieldTags, Aliases: []string{"tags"}},
	}
}

// SchemaWithAliases returns DefaultSchema with the alias lists replaced for the given fields.
// Unknown field names are ignored.
func SchemaWithAliases(overrides map[string][]string) dataset.Schema {
	schema := DefaultSchema()
	for i, f := range schema {
		aliases, ok := overrides[f.Name]
		if !ok || len(aliases) == 0 {
			continue
		}
		cleaned := make([]string, 0, len(aliases))
		for _, a := range aliases {
			if a = strings.TrimSpace(a); a != "" {
				cleaned = append(cleaned, a)
			}
		}
		if len(cleaned) > 0 {
			schema[i].Aliases = cleaned
		}
	}
	return schema
}

// Row renders a document as a processed row in Columns order.
func Row(d domdoc.Document, tagDelimiter string) []string {
	return []string{
		d.ID(),
		d.EstablishmentID(),
		d.EstablishmentName(),
		d.Text(),
		d.OriginalText(),
		string(d.Source()),
		domdoc.JoinTags(d.Tags(), tagDelimiter),
	}
}
