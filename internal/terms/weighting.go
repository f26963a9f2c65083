package terms

import (
	"github.com/Aman-CERP/relterms/internal/hooks"
)

// Default source weights. A title word counts as much as 80 body words.
const (
	DefaultTitleWeight    = 80
	DefaultTagWeight      = 10
	DefaultCategoryWeight = 20
)

// Weights sets how many times a term from each source is counted.
type Weights struct {
	Title    int
	Tag      int
	Category int
}

// DefaultWeights returns the default title/tag/category weights.
func DefaultWeights() Weights {
	return Weights{
		Title:    DefaultTitleWeight,
		Tag:      DefaultTagWeight,
		Category: DefaultCategoryWeight,
	}
}

// Filtered returns w after the weight hooks registered in r have run.
func (w Weights) Filtered(r *hooks.Registry) Weights {
	return Weights{
		Title:    hooks.Apply(r, hooks.WeightTitle, w.Title),
		Tag:      hooks.Apply(r, hooks.WeightTag, w.Tag),
		Category: hooks.Apply(r, hooks.WeightCategory, w.Category),
	}
}

// Sources are the texts combined into one document's term bag.
type Sources struct {
	Content    *Bag
	Title      string
	Tags       []string
	Categories []string
}

// Merge combines the sources into one bag: content terms first, then the
// title, then every tag, then every category, each split on spaces and
// counted with its source weight.
func Merge(src Sources, w Weights) *Bag {
	bag := &Bag{}
	bag.Merge(src.Content)

	bag.AddAll(splitSpaces(src.Title), w.Title)

	for _, tag := range src.Tags {
		bag.AddAll(splitSpaces(tag), w.Tag)
	}
	for _, cat := range src.Categories {
		bag.AddAll(splitSpaces(cat), w.Category)
	}
	return bag
}
