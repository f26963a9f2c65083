// Package terms turns documents into weighted term scores.
//
// The pipeline has three steps:
//   - Tokenizer: document markup -> Bag of raw candidate terms
//   - Merge: content, title, tag and category terms combined by weight
//   - Aggregate: counting, filtering and normalising into Scores
//
// Weight is expressed as multiplicity: a title term with weight 80 counts as
// 80 occurrences. A Bag records (term, count) pairs instead of physically
// repeating the term, which gives the same counts and totals.
package terms

import (
	"sort"
	"strings"
)

// Entry is one term added to a Bag with its multiplicity.
type Entry struct {
	Term  string
	Count int
}

// Bag is an ordered multiset of raw terms. The zero value is an empty bag.
type Bag struct {
	entries []Entry
	total   int
}

// Add records count occurrences of term. Non-positive counts are ignored.
func (b *Bag) Add(term string, count int) {
	if count <= 0 {
		return
	}
	b.entries = append(b.entries, Entry{Term: term, Count: count})
	b.total += count
}

// AddAll records count occurrences of every term in terms.
func (b *Bag) AddAll(terms []string, count int) {
	for _, t := range terms {
		b.Add(t, count)
	}
}

// Merge appends all entries of other.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.entries = append(b.entries, other.entries...)
	b.total += other.total
}

// Total returns the number of raw occurrences, i.e. the length of the
// equivalent sequence with duplicates.
func (b *Bag) Total() int {
	return b.total
}

// Entries returns the recorded entries in insertion order.
func (b *Bag) Entries() []Entry {
	return b.entries
}

// Count returns the raw occurrences of term exactly as added.
func (b *Bag) Count(term string) int {
	n := 0
	for _, e := range b.entries {
		if e.Term == term {
			n += e.Count
		}
	}
	return n
}

// Scores maps a normalised term to its relative weight for one document.
type Scores map[string]float64

// Scored is a single term and its weight.
type Scored struct {
	Term   string
	Weight float64
}

// Sorted returns the scores ordered by descending weight, ties by term.
func (s Scores) Sorted() []Scored {
	out := make([]Scored, 0, len(s))
	for term, w := range s {
		out = append(out, Scored{Term: term, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// splitSpaces splits s on single spaces. An empty string yields one empty
// term, matching the raw-count semantics the scores are normalised by.
func splitSpaces(s string) []string {
	return strings.Split(s, " ")
}
