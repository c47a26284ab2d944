package server

import (
	"sort"
	"sync"

	"github.com/CWBudde/futurec-lsp/internal/workspace"
)

// Document represents an open document in the workspace.
type Document struct {
	URI        string
	Text       string
	Version    int
	LanguageID string
}

// DocumentStore manages all open documents.
type DocumentStore struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Set stores or updates a document.
func (ds *DocumentStore) Set(uri string, doc *Document) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = doc
}

// Get retrieves a document by URI.
func (ds *DocumentStore) Get(uri string) (*Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	doc, ok := ds.documents[uri]

	return doc, ok
}

// Delete removes a document from the store.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// List returns all document URIs, sorted.
func (ds *DocumentStore) List() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]string, 0, len(ds.documents))
	for uri := range ds.documents {
		uris = append(uris, uri)
	}

	sort.Strings(uris)

	return uris
}

// Clear removes all documents from the store.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents = make(map[string]*Document)
}

// Corpus merges the open documents with the workspace file cache. An open
// document shadows the file on disk.
type Corpus struct {
	documents *DocumentStore
	files     *workspace.Files
}

// NewCorpus combines documents and files; files may be nil.
func NewCorpus(documents *DocumentStore, files *workspace.Files) *Corpus {
	return &Corpus{documents: documents, files: files}
}

// Text returns the current text of uri.
func (c *Corpus) Text(uri string) (string, bool) {
	if doc, ok := c.documents.Get(uri); ok {
		return doc.Text, true
	}

	if c.files == nil {
		return "", false
	}

	return c.files.Text(uri)
}

// FindAll returns the sorted URIs of every known document matching pattern.
func (c *Corpus) FindAll(pattern string) []string {
	seen := make(map[string]bool)

	var uris []string
	for _, uri := range c.documents.List() {
		if workspace.MatchURI(pattern, uri) {
			seen[uri] = true
			uris = append(uris, uri)
		}
	}

	if c.files != nil {
		for _, uri := range c.files.FindAll(pattern) {
			if !seen[uri] {
				uris = append(uris, uri)
			}
		}
	}

	sort.Strings(uris)

	return uris
}
