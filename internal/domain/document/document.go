package document

import (
	"fmt"
	"slices"
	"strings"
)

// UnknownName is the display name used when a dataset has no establishment name.
const UnknownName = "Unknown"

// Document is a single pre-processed evidence snippet (immutable value object).
type Document struct {
	id                string
	establishmentID   string
	establishmentName string
	text              string
	originalText      string
	source            Source
	tags              []string
}

// New validates and creates a Document.
// ID and establishment ID are required; an empty name becomes UnknownName.
func New(
	id, establishmentID, establishmentName, text, originalText string,
	source Source, tags []string,
) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if establishmentID == "" {
		return Document{}, fmt.Errorf("document %s: establishment ID is required", id)
	}
	if !source.IsValid() {
		return Document{}, fmt.Errorf("document %s: invalid source %q", id, source)
	}
	if establishmentName == "" {
		establishmentName = UnknownName
	}
	return Document{
		id:                id,
		establishmentID:   establishmentID,
		establishmentName: establishmentName,
		text:              text,
		originalText:      originalText,
		source:            source,
		tags:              slices.Clone(tags),
	}, nil
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// EstablishmentID returns the identifier of the business the snippet is about.
func (d Document) EstablishmentID() string { return d.establishmentID }

// EstablishmentName returns the display name of the business.
func (d Document) EstablishmentName() string { return d.establishmentName }

// Text returns the normalized text used for lexical scoring.
func (d Document) Text() string { return d.text }

// OriginalText returns the text shown to users as evidence.
func (d Document) OriginalText() string { return d.originalText }

// Source returns the provenance of the snippet.
func (d Document) Source() Source { return d.source }

// Tags returns a copy of the category labels.
func (d Document) Tags() []string { return slices.Clone(d.tags) }

// HasTag reports whether the document carries the given category label.
func (d Document) HasTag(tag string) bool { return slices.Contains(d.tags, tag) }

// ParseTags splits a delimiter-joined tag string, dropping blanks and duplicates.
func ParseTags(raw, delimiter string) []string {
	if delimiter == "" {
		delimiter = ","
	}
	var tags []string
	for _, part := range strings.Split(raw, delimiter) {
		tag := strings.TrimSpace(part)
		if tag == "" || slices.Contains(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags is the inverse of ParseTags.
func JoinTags(tags []string, delimiter string) string {
	if delimiter == "" {
		delimiter = ","
	}
	return strings.Join(tags, delimiter)
}
