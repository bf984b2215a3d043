package saferbites

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by APIError. Use errors.Is() to check.
var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrRerankUnavailable = errors.New("rerank unavailable")
	ErrTimeout           = errors.New("timeout")
)

// APIError is a non-2xx response of the API.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("saferbites: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps API error codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidQuery:
		return e.Code == "invalid_query"
	case ErrRerankUnavailable:
		return e.Code == "rerank_unavailable"
	case ErrTimeout:
		return e.Code == "timeout"
	default:
		return false
	}
}
