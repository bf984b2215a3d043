package document

// Source is the provenance of a document.
type Source string

// Source constants.
const (
	Violation Source = "violation"
	Review    Source = "review"
)

// IsValid checks if the source is one of the supported values.
func (s Source) IsValid() bool {
	return s == Violation || s == Review
}
