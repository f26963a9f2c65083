//go:build ignore

// Package main generates a synthetic document corpus for benchmarking.
// Usage: go run scripts/generate-corpus.go -docs 1000 -output testdata/bench/docs.yaml
//
// The output is accepted by `relterms import`. Documents link to each other
// so link resolution is exercised too.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	numDocs   = flag.Int("docs", 1000, "Number of documents to generate")
	outputDir = flag.String("output", "testdata/bench/docs.yaml", "Output file")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
	words     = flag.Int("words", 300, "Approximate body length in words")
)

var vocabulary = strings.Fields(`garden tomato soil compost pruning roses seedling
harvest mulch irrigation greenhouse orchard pepper basil lavender fertilizer
trellis perennial annual bulb shade frost drought pollinator beetle aphid
the a and of to in is it for on with as at by from this that`)

var tagPool = []string{"vegetables", "flowers", "tools", "seasonal", "organic", "indoor"}

var categoryPool = []string{"Garden", "Kitchen", "Outdoors", "How-to"}

type doc struct {
	ID         int64    `yaml:"id"`
	Title      string   `yaml:"title"`
	Body       string   `yaml:"body"`
	Status     string   `yaml:"status,omitempty"`
	URL        string   `yaml:"url"`
	Tags       []string `yaml:"tags,omitempty"`
	Categories []string `yaml:"categories,omitempty"`
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	docs := make([]doc, 0, *numDocs)
	for i := 1; i <= *numDocs; i++ {
		docs = append(docs, generate(rng, int64(i)))
	}

	data, err := yaml.Marshal(docs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*outputDir), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputDir, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d documents in %s (%d bytes)\n", len(docs), *outputDir, len(data))
}

func generate(rng *rand.Rand, id int64) doc {
	d := doc{
		ID:    id,
		Title: titleCase(pick(rng, vocabulary)) + " " + pick(rng, vocabulary),
		URL:   fmt.Sprintf("https://example.com/%d", id),
	}

	var b strings.Builder
	b.WriteString("<p>")
	for w := 0; w < *words; w++ {
		switch {
		case w > 0 && w%40 == 0:
			b.WriteString("</p>\n<p>")
		case w > 0:
			b.WriteByte(' ')
		}
		if id > 1 && rng.Intn(100) == 0 {
			target := rng.Int63n(id-1) + 1
			fmt.Fprintf(&b, `<a href="https://example.com/%d">see also</a> `, target)
		}
		b.WriteString(pick(rng, vocabulary))
	}
	b.WriteString("</p>")
	d.Body = b.String()

	for n := rng.Intn(3); n > 0; n-- {
		d.Tags = append(d.Tags, pick(rng, tagPool))
	}
	d.Categories = []string{pick(rng, categoryPool)}
	if rng.Intn(10) == 0 {
		d.Status = "draft"
	}
	return d
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
