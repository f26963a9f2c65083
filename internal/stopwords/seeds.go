package stopwords

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/de"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/analysis/lang/it"
	"github.com/blevesearch/bleve/v2/analysis/lang/nl"
	"github.com/blevesearch/bleve/v2/analysis/lang/pt"
)

// seedLists are the stop lists bundled with bleve's language analysers,
// keyed by ISO 639-1 language code.
var seedLists = map[string][]byte{
	"de": de.GermanStopWords,
	"en": en.EnglishStopWords,
	"es": es.SpanishStopWords,
	"fr": fr.FrenchStopWords,
	"it": it.ItalianStopWords,
	"nl": nl.DutchStopWords,
	"pt": pt.PortugueseStopWords,
}

// SeedLanguages returns the language codes that have a bundled seed list.
func SeedLanguages() []string {
	langs := make([]string, 0, len(seedLists))
	for lang := range seedLists {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Seed returns the bundled stop list for the language of locale
// ("nl_NL" -> Dutch). The order of the returned words is unspecified.
func Seed(locale string) ([]string, error) {
	lang := strings.ToLower(locale)
	if i := strings.IndexAny(lang, "_-"); i >= 0 {
		lang = lang[:i]
	}

	data, ok := seedLists[lang]
	if !ok {
		return nil, fmt.Errorf("no seed list for locale %q (available: %s)",
			locale, strings.Join(SeedLanguages(), ", "))
	}

	tokens := analysis.NewTokenMap()
	if err := tokens.LoadBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse seed list for %q: %w", lang, err)
	}

	words := make([]string, 0, len(tokens))
	for w := range tokens {
		words = append(words, w)
	}
	return words, nil
}
