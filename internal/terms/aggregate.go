package terms

import (
	"sort"
	"unicode/utf8"

	"github.com/Aman-CERP/relterms/internal/stopwords"
)

const (
	// MinTermLength is the shortest term, in characters, that is kept.
	MinTermLength = 2
	// MinOccurrences is the raw weighted count a term needs to be scored.
	MinOccurrences = 3
	// LengthWeight scales the document size in the score denominator.
	LengthWeight = 0.6
)

type termCount struct {
	term  string
	count int
}

// Aggregate counts the normalised terms of bag, drops empty, short and stop
// terms, and scores every term seen at least MinOccurrences times as
//
//	count / (LengthWeight * bag.Total())
//
// bag.Total() includes the dropped terms.
func Aggregate(bag *Bag, stop stopwords.Set) Scores {
	scores := Scores{}
	if bag == nil || bag.Total() == 0 {
		return scores
	}

	counts := countTerms(bag, stop)

	// Stable so equal counts keep first-seen order.
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	denominator := LengthWeight * float64(bag.Total())
	for _, tc := range counts {
		if tc.count < MinOccurrences {
			break // sorted, nothing further qualifies
		}
		scores[tc.term] = float64(tc.count) / denominator
	}
	return scores
}

// countTerms returns per-term counts in first-seen order.
func countTerms(bag *Bag, stop stopwords.Set) []termCount {
	index := make(map[string]int)
	var counts []termCount

	for _, e := range bag.Entries() {
		term := stopwords.Normalize(e.Term)
		if term == "" {
			continue
		}
		if utf8.RuneCountInString(term) < MinTermLength {
			continue
		}
		if stop.Contains(term) {
			continue
		}

		if i, ok := index[term]; ok {
			counts[i].count += e.Count
			continue
		}
		index[term] = len(counts)
		counts = append(counts, termCount{term: term, count: e.Count})
	}
	return counts
}
