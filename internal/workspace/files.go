package workspace

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// Files caches the text of every indexed workspace file. It serves as
// the corpus for documents the editor has not opened.
type Files struct {
	mu    sync.RWMutex
	texts map[string]string
}

// NewFiles creates an empty cache.
func NewFiles() *Files {
	return &Files{texts: make(map[string]string)}
}

// Set stores the text of uri.
func (f *Files) Set(uri, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.texts[uri] = text
}

// Remove forgets uri.
func (f *Files) Remove(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.texts, uri)
}

// RemoveUnder forgets every file below the folder URI and returns them.
func (f *Files) RemoveUnder(folder string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := strings.TrimSuffix(folder, "/") + "/"

	var removed []string
	for uri := range f.texts {
		if strings.HasPrefix(uri, prefix) {
			delete(f.texts, uri)
			removed = append(removed, uri)
		}
	}

	sort.Strings(removed)

	return removed
}

// Text returns the cached text of uri.
func (f *Files) Text(uri string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	text, ok := f.texts[uri]

	return text, ok
}

// FindAll returns the sorted URIs matching pattern.
func (f *Files) FindAll(pattern string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var uris []string
	for uri := range f.texts {
		if MatchURI(pattern, uri) {
			uris = append(uris, uri)
		}
	}

	sort.Strings(uris)

	return uris
}

// Len returns the number of cached files.
func (f *Files) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.texts)
}

// MatchURI reports whether uri matches the glob pattern, either as a whole
// or by its base name. An empty pattern matches everything.
func MatchURI(pattern, uri string) bool {
	if pattern == "" {
		return true
	}

	if ok, _ := path.Match(pattern, uri); ok {
		return true
	}

	ok, _ := path.Match(pattern, path.Base(uri))

	return ok
}
