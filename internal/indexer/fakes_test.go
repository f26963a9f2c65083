package indexer

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Aman-CERP/relterms/internal/document"
)

var errInjected = errors.New("injected failure")

// memDocs is an in-memory document and marker store.
type memDocs struct {
	mu         sync.Mutex
	docs       map[int64]*document.Document
	marked     map[int64]bool
	failTags   map[int64]bool
	failMark   map[int64]bool
	failList   bool
	markCalls  int
	fetchCalls int
}

func newMemDocs(docs ...document.Document) *memDocs {
	m := &memDocs{
		docs:     make(map[int64]*document.Document),
		marked:   make(map[int64]bool),
		failTags: make(map[int64]bool),
		failMark: make(map[int64]bool),
	}
	for _, d := range docs {
		d := d
		if d.Type == "" {
			d.Type = document.DefaultType
		}
		if d.Status == "" {
			d.Status = document.StatusPublished
		}
		m.docs[d.ID] = &d
	}
	return m
}

func (m *memDocs) GetDocument(_ context.Context, id int64) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	d, ok := m.docs[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDocs) ResolveURL(_ context.Context, url string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.docs {
		if d.URL != "" && d.URL == url {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (m *memDocs) Tags(_ context.Context, id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTags[id] {
		return nil, errInjected
	}
	if d, ok := m.docs[id]; ok {
		return d.Tags, nil
	}
	return nil, nil
}

func (m *memDocs) Categories(_ context.Context, id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.docs[id]; ok {
		return d.Categories, nil
	}
	return nil, nil
}

func (m *memDocs) ListUnmarkedPublished(_ context.Context, docType string, limit int) ([]document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errInjected
	}

	var out []document.Document
	for id, d := range m.docs {
		if m.marked[id] || d.Status != document.StatusPublished || d.Type != docType {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDocs) IsMarked(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marked[id], nil
}

func (m *memDocs) SetMarked(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	if m.failMark[id] {
		return errInjected
	}
	m.marked[id] = true
	return nil
}

func (m *memDocs) isMarked(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marked[id]
}

// memCache is an in-memory term cache.
type memCache struct {
	mu          sync.Mutex
	rows        map[int64]map[string]float64
	types       map[int64]string
	failReplace map[int64]bool
	replaces    int
}

func newMemCache() *memCache {
	return &memCache{
		rows:        make(map[int64]map[string]float64),
		types:       make(map[int64]string),
		failReplace: make(map[int64]bool),
	}
}

func (c *memCache) Replace(_ context.Context, docID int64, scores map[string]float64, docType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaces++
	if c.failReplace[docID] {
		return errInjected
	}
	cp := make(map[string]float64, len(scores))
	for k, v := range scores {
		cp[k] = v
	}
	c.rows[docID] = cp
	c.types[docID] = docType
	return nil
}

func (c *memCache) DeleteDocument(_ context.Context, docID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rows, docID)
	delete(c.types, docID)
	return nil
}

func (c *memCache) Count(_ context.Context, docType string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, rows := range c.rows {
		if c.types[id] == docType {
			n += len(rows)
		}
	}
	return n, nil
}

func (c *memCache) Terms(_ context.Context, docID int64) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make(map[string]float64, len(c.rows[docID]))
	for k, v := range c.rows[docID] {
		cp[k] = v
	}
	return cp, nil
}

func (c *memCache) has(docID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rows[docID]
	return ok
}

// save stores doc and clears its marker, as the content store does.
func (m *memDocs) save(doc document.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.Type == "" {
		doc.Type = document.DefaultType
	}
	if doc.Status == "" {
		doc.Status = document.StatusPublished
	}
	m.docs[doc.ID] = &doc
	delete(m.marked, doc.ID)
}
