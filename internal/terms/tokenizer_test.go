package terms

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/relterms/internal/document"
)

// fakeLinks resolves URLs from a fixed table and counts lookups.
type fakeLinks struct {
	mu       sync.Mutex
	urls     map[string]int64
	docs     map[int64]*document.Document
	resolves int
	err      error
}

func (f *fakeLinks) ResolveURL(_ context.Context, url string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if f.err != nil {
		return 0, false, f.err
	}
	id, ok := f.urls[url]
	return id, ok, nil
}

func (f *fakeLinks) GetDocument(_ context.Context, id int64) (*document.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	return doc, nil
}

func entryTerms(b *Bag) []string {
	var out []string
	for _, e := range b.Entries() {
		out = append(out, e.Term)
	}
	return out
}

func TestTokenize_SplitsBodyOnSpaces(t *testing.T) {
	// Given: a body with newlines, tabs and padding
	tok := NewTokenizer(nil, 0, nil)
	doc := &document.Document{Body: "  Hello\n\n world\tagain  "}

	// When: tokenizing
	bag := tok.Tokenize(context.Background(), doc)

	// Then: whitespace runs collapse into single separators
	assert.Equal(t, []string{"Hello", "world", "again"}, entryTerms(bag))
	assert.Equal(t, 3, bag.Total())
}

func TestTokenize_StripsMarkup(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		expect []string
	}{
		{
			name:   "tags",
			body:   "<p>golang <strong>rocks</strong></p>",
			expect: []string{"golang", "rocks"},
		},
		{
			name:   "more separator",
			body:   "intro <!--more--> rest",
			expect: []string{"intro", "", "rest"},
		},
		{
			name:   "more separator uppercase",
			body:   "intro<!--MORE-->",
			expect: []string{"intro"},
		},
		{
			name:   "shortcodes",
			body:   `[gallery ids="1,2"] photos [caption]nice[/caption]`,
			expect: []string{"", "photos", "nice"},
		},
		{
			name:   "entities",
			body:   "fish &amp; chips",
			expect: []string{"fish", "&", "chips"},
		},
		{
			name:   "escaped markup becomes literal text",
			body:   "&lt;b&gt;bold",
			expect: []string{"<b>bold"},
		},
		{
			name:   "script content dropped",
			body:   "visible <script>var hidden = 1;</script>",
			expect: []string{"visible", ""},
		},
	}

	tok := NewTokenizer(nil, 0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := tok.Tokenize(context.Background(), &document.Document{Body: tt.body})
			assert.Equal(t, tt.expect, entryTerms(bag))
		})
	}
}

func TestTokenize_EmptyBodyYieldsOneEmptyTerm(t *testing.T) {
	tok := NewTokenizer(nil, 0, nil)

	bag := tok.Tokenize(context.Background(), &document.Document{Body: "<p></p>"})

	assert.Equal(t, []string{""}, entryTerms(bag))
	assert.Equal(t, 1, bag.Total())
}

func TestTokenize_BoostsLinkedTitles(t *testing.T) {
	// Given: a body linking to a known document
	links := &fakeLinks{
		urls: map[string]int64{"https://example.com/go-tips": 7},
		docs: map[int64]*document.Document{7: {ID: 7, Title: "Go Tips"}},
	}
	tok := NewTokenizer(links, 0, nil)
	doc := &document.Document{
		Body: `read <a class="x" href="https://example.com/go-tips">this</a>`,
	}

	// When: tokenizing
	bag := tok.Tokenize(context.Background(), doc)

	// Then: body terms come first, then each title word 20 times
	require.Equal(t, []string{"read", "this", "Go", "Tips"}, entryTerms(bag))
	assert.Equal(t, LinkBoost, bag.Count("Go"))
	assert.Equal(t, LinkBoost, bag.Count("Tips"))
	assert.Equal(t, 2+2*LinkBoost, bag.Total())
}

func TestTokenize_AnchorSpanningLines(t *testing.T) {
	links := &fakeLinks{
		urls: map[string]int64{"/a": 1},
		docs: map[int64]*document.Document{1: {ID: 1, Title: "Linked"}},
	}
	tok := NewTokenizer(links, 0, nil)

	bag := tok.Tokenize(context.Background(), &document.Document{
		Body: "<A\nHREF=\"/a\">x</A>",
	})

	assert.Equal(t, LinkBoost, bag.Count("Linked"))
}

func TestTokenize_IgnoresUnresolvableLinks(t *testing.T) {
	tests := []struct {
		name  string
		links *fakeLinks
		body  string
	}{
		{
			name:  "unknown url",
			links: &fakeLinks{urls: map[string]int64{}},
			body:  `<a href="/nowhere">x</a>`,
		},
		{
			name:  "resolved id without document",
			links: &fakeLinks{urls: map[string]int64{"/gone": 9}},
			body:  `<a href="/gone">x</a>`,
		},
		{
			name:  "resolver error",
			links: &fakeLinks{err: errors.New("boom")},
			body:  `<a href="/a">x</a>`,
		},
		{
			name:  "malformed anchor",
			links: &fakeLinks{urls: map[string]int64{"/a": 1}},
			body:  `<a href='/a'>x</a> <a href="/a"><b>x</b></a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.links.docs == nil {
				tt.links.docs = map[int64]*document.Document{}
			}
			tt.links.docs[1] = &document.Document{ID: 1, Title: "Boosted"}

			bag := NewTokenizer(tt.links, 0, nil).Tokenize(context.Background(),
				&document.Document{Body: tt.body})

			assert.Zero(t, bag.Count("Boosted"))
			for _, e := range bag.Entries() {
				assert.Equal(t, 1, e.Count)
			}
		})
	}
}

func TestTokenize_CachesResolvedLinks(t *testing.T) {
	// Given: a tokenizer with a link cache
	links := &fakeLinks{
		urls: map[string]int64{"/a": 1},
		docs: map[int64]*document.Document{1: {ID: 1, Title: "Cached"}},
	}
	tok := NewTokenizer(links, 16, nil)
	doc := &document.Document{Body: `<a href="/a">x</a> <a href="/a">y</a> <a href="/b">z</a>`}

	// When: tokenizing twice
	first := tok.Tokenize(context.Background(), doc)
	second := tok.Tokenize(context.Background(), doc)

	// Then: every distinct URL is resolved once and results are identical
	assert.Equal(t, 2, links.resolves)
	assert.Equal(t, 2*LinkBoost, first.Count("Cached"))
	assert.Equal(t, first.Entries(), second.Entries())
}

func TestTokenize_DoesNotCacheErrors(t *testing.T) {
	links := &fakeLinks{err: errors.New("temporary")}
	tok := NewTokenizer(links, 16, nil)
	doc := &document.Document{Body: `<a href="/a">x</a>`}

	tok.Tokenize(context.Background(), doc)
	tok.Tokenize(context.Background(), doc)

	assert.Equal(t, 2, links.resolves)
}

func TestTokenize_PurgeRereadsLinkTargets(t *testing.T) {
	// Given: a cached lookup for a URL that has no document yet
	links := &fakeLinks{
		urls: map[string]int64{},
		docs: map[int64]*document.Document{},
	}
	tok := NewTokenizer(links, 16, nil)
	doc := &document.Document{Body: `<a href="/new">x</a>`}
	require.Zero(t, tok.Tokenize(context.Background(), doc).Count("Fresh"))

	// When: the target appears and the cache is purged
	links.mu.Lock()
	links.urls["/new"] = 3
	links.docs[3] = &document.Document{ID: 3, Title: "Fresh"}
	links.mu.Unlock()
	stale := tok.Tokenize(context.Background(), doc)
	tok.Purge()
	fresh := tok.Tokenize(context.Background(), doc)

	// Then: only the purged tokenizer sees the new title
	assert.Zero(t, stale.Count("Fresh"))
	assert.Equal(t, LinkBoost, fresh.Count("Fresh"))
}

func TestTokenize_PurgeWithoutCache(t *testing.T) {
	tok := NewTokenizer(nil, 0, nil)

	assert.NotPanics(t, tok.Purge)
}
