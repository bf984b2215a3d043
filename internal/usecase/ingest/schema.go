package ingest

import "github.com/saferbites/saferbites/internal/repository/dataset"

// Logical columns of the raw tables.
const (
	FieldCamis       = "camis"
	FieldDBA         = "dba"
	FieldDescription = "violation_description"
	FieldReview      = "review"
	FieldReviewID    = "business_id"
)

// InspectionSchema maps raw inspection headers.
func InspectionSchema() dataset.Schema {
	return dataset.Schema{
		{Name: FieldCamis, Aliases: []string{"camis", "CAMIS", "business_id"}, Required: true},
		{Name: FieldDBA, Aliases: []string{"dba", "DBA", "business_name"}},
		{Name: FieldDescription, Aliases: []string{"violation_description", "VIOLATION DESCRIPTION"}, Required: true},
	}
}

// ReviewSchema maps raw review headers. The establishment column is optional; rows
// without one are assigned by the pipeline's Assigner.
func ReviewSchema() dataset.Schema {
	return dataset.Schema{
		{Name: FieldReview, Aliases: []string{"Review", "Review Text", "review", "text"}, Required: true},
		{Name: FieldReviewID, Aliases: []string{"business_id", "camis"}},
	}
}
