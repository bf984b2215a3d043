package aggregate

import (
	"strings"

	"github.com/saferbites/saferbites/internal/domain/search/hit"
	"github.com/saferbites/saferbites/internal/domain/text"
)

// Booster returns the multiplier applied to a hit's effective score.
type Booster interface {
	Boost(queryTokens []string, h hit.Hit) float64
}

// NoBoost leaves every score unchanged.
type NoBoost struct{}

// Boost returns 1.
func (NoBoost) Boost([]string, hit.Hit) float64 { return 1 }

// DefaultTagBoost is the multiplier used by TagBooster when none is configured.
const DefaultTagBoost = 1.5

// TagBooster multiplies the score of hits whose tags the query refers to, either by the
// tag name itself or by a token containing one of the tag category's keywords.
type TagBooster struct {
	factor   float64
	keywords map[string][]string
}

// NewTagBooster creates a TagBooster. factor <= 0 uses DefaultTagBoost.
func NewTagBooster(factor float64, categories []text.Category) *TagBooster {
	if factor <= 0 {
		factor = DefaultTagBoost
	}
	if categories == nil {
		categories = text.DefaultCategories()
	}
	keywords := make(map[string][]string, len(categories))
	for _, c := range categories {
		keywords[c.Name] = c.Keywords
	}
	return &TagBooster{factor: factor, keywords: keywords}
}

// Boost returns the factor when any query token matches one of the hit's tags.
func (b *TagBooster) Boost(queryTokens []string, h hit.Hit) float64 {
	for _, tag := range h.Document().Tags() {
		for _, tok := range queryTokens {
			if tok == strings.ToLower(tag) || b.isKeyword(tag, tok) {
				return b.factor
			}
		}
	}
	return 1
}

func (b *TagBooster) isKeyword(tag, token string) bool {
	for _, kw := range b.keywords[tag] {
		if strings.Contains(token, kw) {
			return true
		}
	}
	return false
}
