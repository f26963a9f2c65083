package stopwords

import (
	"sort"
	"strings"
)

// corruptionMarker shows up when UTF-8 text was decoded as Latin-1 somewhere
// along the way; entries containing it are unusable.
const corruptionMarker = "Ã"

// Tidy prepares a candidate word list for a new locale file: entries with
// the corruption marker are dropped, quote characters are stripped,
// case-insensitive duplicates are removed (first occurrence wins) and the
// result is sorted.
func Tidy(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))

	for _, w := range words {
		if strings.Contains(w, corruptionMarker) {
			continue
		}
		w = strings.TrimSpace(strings.NewReplacer("'", "", `"`, "").Replace(w))
		if w == "" {
			continue
		}

		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}

	sort.Strings(out)
	return out
}

// Render formats words as a YAML flow sequence that can be saved as a
// locale file as-is. Words are expected to have gone through Tidy, so they
// contain no quote characters.
func Render(words []string) string {
	var b strings.Builder
	b.WriteString("[")
	for i, w := range words {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("'")
		b.WriteString(w)
		b.WriteString("'")
	}
	b.WriteString("]\n")
	return b.String()
}
