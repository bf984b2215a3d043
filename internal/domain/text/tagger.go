package text

import "strings"

// Category is a named group of keywords. A keyword matches as a substring, so stems
// like "refrigerat" cover every inflection.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultCategories are the food-safety categories used to tag documents.
func DefaultCategories() []Category {
	return []Category{
		{Name: "pests", Keywords: []string{
			"rodent", "mouse", "mice", "roach", "insect", "rat", "fly", "flies", "vermin", "pest",
		}},
		{Name: "temperature", Keywords: []string{
			"cold", "hot", "temp", "thermometer", "degree", "cooling", "holding", "refrigerat",
		}},
		{Name: "contamination", Keywords: []string{
			"raw", "contam", "sanitize", "cross", "glove", "hand", "clean", "wash",
		}},
	}
}

// Tagger assigns category labels by keyword membership.
type Tagger struct {
	categories []Category
}

// NewTagger creates a tagger. Nil categories fall back to DefaultCategories.
func NewTagger(categories []Category) *Tagger {
	if categories == nil {
		categories = DefaultCategories()
	}
	return &Tagger{categories: categories}
}

// Tag returns every category with at least one keyword contained in text, in category order.
// Text is expected to be normalized already.
func (t *Tagger) Tag(text string) []string {
	var tags []string
	for _, c := range t.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, c.Name)
				break
			}
		}
	}
	return tags
}

// Categories returns the configured categories.
func (t *Tagger) Categories() []Category { return t.categories }
