package terms

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Aman-CERP/relterms/internal/document"
)

// LinkBoost is how many times each word of a linked document's title is
// added to the linking document.
const LinkBoost = 20

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	anchorRegex     = regexp.MustCompile(`(?is)<a[^>]*href="([^"]+)">[^<]*</a>`)
	moreRegex       = regexp.MustCompile(`(?i)<!--more-->`)
	shortcodeRegex  = regexp.MustCompile(`\[\[?/?[A-Za-z][\w-]*[^\[\]]*\]\]?`)
)

// LinkSource resolves link targets to documents.
// document.Store satisfies it.
type LinkSource interface {
	ResolveURL(ctx context.Context, url string) (int64, bool, error)
	GetDocument(ctx context.Context, id int64) (*document.Document, error)
}

type linkedTitle struct {
	title string
	found bool
}

// Tokenizer extracts raw candidate terms from document bodies.
// It is safe for concurrent use.
type Tokenizer struct {
	links      LinkSource
	cache      *lru.Cache[string, linkedTitle]
	policyPool sync.Pool
	logger     *slog.Logger
}

// NewTokenizer creates a Tokenizer that resolves links through links.
// cacheSize bounds the number of memoised link targets; 0 disables caching.
// Memoised targets are kept until Purge.
func NewTokenizer(links LinkSource, cacheSize int, logger *slog.Logger) *Tokenizer {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tokenizer{
		links:  links,
		logger: logger,
		policyPool: sync.Pool{
			New: func() any {
				return bluemonday.StrictPolicy()
			},
		},
	}

	if cacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		t.cache, _ = lru.New[string, linkedTitle](cacheSize)
	}
	return t
}

// Purge forgets every memoised link target. Callers purge at the start of
// each run so titles and new link targets are read from the store again.
func (t *Tokenizer) Purge() {
	if t.cache != nil {
		t.cache.Purge()
	}
}

// Tokenize returns the body terms of doc followed by the boosted title terms
// of every document it links to. Terms are not yet normalised.
func (t *Tokenizer) Tokenize(ctx context.Context, doc *document.Document) *Bag {
	body := strings.TrimSpace(whitespaceRegex.ReplaceAllString(doc.Body, " "))

	linked := t.linkedTerms(ctx, body)

	body = t.stripMarkup(body)

	bag := &Bag{}
	bag.AddAll(splitSpaces(body), 1)
	bag.Merge(linked)
	return bag
}

// linkedTerms adds LinkBoost occurrences of every title word of each linked
// document found in body.
func (t *Tokenizer) linkedTerms(ctx context.Context, body string) *Bag {
	bag := &Bag{}
	if t.links == nil {
		return bag
	}

	for _, match := range anchorRegex.FindAllStringSubmatch(body, -1) {
		title, ok := t.resolveTitle(ctx, match[1])
		if !ok {
			continue
		}
		bag.AddAll(splitSpaces(title), LinkBoost)
	}
	return bag
}

func (t *Tokenizer) resolveTitle(ctx context.Context, url string) (string, bool) {
	if t.cache != nil {
		if hit, ok := t.cache.Get(url); ok {
			return hit.title, hit.found
		}
	}

	id, ok, err := t.links.ResolveURL(ctx, url)
	if err != nil {
		t.logger.Debug("link_resolve_failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return "", false
	}

	result := linkedTitle{}
	if ok {
		linked, err := t.links.GetDocument(ctx, id)
		switch {
		case err == nil && linked != nil:
			result = linkedTitle{title: linked.Title, found: true}
		case err != nil && !isNotFound(err):
			t.logger.Debug("link_fetch_failed",
				slog.String("url", url),
				slog.Int64("document_id", id),
				slog.String("error", err.Error()))
			return "", false
		}
	}

	if t.cache != nil {
		t.cache.Add(url, result)
	}
	return result.title, result.found
}

// stripMarkup removes the more separator, shortcodes and all tags.
func (t *Tokenizer) stripMarkup(s string) string {
	s = moreRegex.ReplaceAllString(s, "")
	s = shortcodeRegex.ReplaceAllString(s, "")

	policy := t.policyPool.Get().(*bluemonday.Policy)
	s = html.UnescapeString(policy.Sanitize(s))
	t.policyPool.Put(policy)

	return s
}

func isNotFound(err error) bool {
	return errors.Is(err, document.ErrNotFound)
}
