package rerank

import (
	"context"

	"github.com/saferbites/saferbites/internal/domain"
)

// Embedder vectorizes text. Implementations that also satisfy domain.BatchEmbedder
// are called once per query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
