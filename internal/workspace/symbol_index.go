// Package workspace indexes the script headers, user functions and hook
// markers of every futurec file in the workspace folders.
package workspace

import (
	"sort"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SymbolLocation is one indexed definition.
type SymbolLocation struct {
	Name          string
	Kind          protocol.SymbolKind
	Location      protocol.Location
	ContainerName string // "SCRIPT:7" for functions and hooks
	Detail        string // script name, signature or hook block name
}

// FileInfo stores metadata about an indexed file.
type FileInfo struct {
	URI     string
	Version int32
	Symbols []string
}

// SymbolIndex maps names to their definitions across all indexed files.
// It is safe for concurrent use.
type SymbolIndex struct {
	symbols map[string][]SymbolLocation
	files   map[string]*FileInfo
	mutex   sync.RWMutex
}

// NewSymbolIndex creates an empty index.
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		symbols: make(map[string][]SymbolLocation),
		files:   make(map[string]*FileInfo),
	}
}

// AddSymbol adds one definition.
func (si *SymbolIndex) AddSymbol(name string, kind protocol.SymbolKind, uri string, symbolRange protocol.Range, containerName string, detail string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.add(SymbolLocation{
		Name:          name,
		Kind:          kind,
		Location:      protocol.Location{URI: uri, Range: symbolRange},
		ContainerName: containerName,
		Detail:        detail,
	})
}

func (si *SymbolIndex) add(loc SymbolLocation) {
	uri := loc.Location.URI
	si.symbols[loc.Name] = append(si.symbols[loc.Name], loc)

	fileInfo, exists := si.files[uri]
	if !exists {
		fileInfo = &FileInfo{URI: uri}
		si.files[uri] = fileInfo
	}

	fileInfo.Symbols = append(fileInfo.Symbols, loc.Name)
}

// ReplaceFile swaps all definitions of uri for symbols in one step, so
// readers never see a half indexed file.
func (si *SymbolIndex) ReplaceFile(uri string, symbols []SymbolLocation) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.remove(uri)

	for _, loc := range symbols {
		loc.Location.URI = uri
		si.add(loc)
	}

	if _, ok := si.files[uri]; !ok {
		si.files[uri] = &FileInfo{URI: uri}
	}
}

// FindSymbol returns every definition of name.
func (si *SymbolIndex) FindSymbol(name string) []SymbolLocation {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	locations, exists := si.symbols[name]
	if !exists {
		return nil
	}

	result := make([]SymbolLocation, len(locations))
	copy(result, locations)
	sortLocations(result)

	return result
}

// FindSymbolsByKind returns every definition of the given kind.
func (si *SymbolIndex) FindSymbolsByKind(kind protocol.SymbolKind) []SymbolLocation {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	var result []SymbolLocation
	for _, locations := range si.symbols {
		for _, loc := range locations {
			if loc.Kind == kind {
				result = append(result, loc)
			}
		}
	}

	sortLocations(result)

	return result
}

// FindSymbolsInFile returns the definitions of uri in document order.
func (si *SymbolIndex) FindSymbolsInFile(uri string) []SymbolLocation {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	fileInfo, exists := si.files[uri]
	if !exists {
		return nil
	}

	var result []SymbolLocation
	seen := map[string]bool{}
	for _, symbolName := range fileInfo.Symbols {
		if seen[symbolName] {
			continue
		}
		seen[symbolName] = true

		for _, loc := range si.symbols[symbolName] {
			if loc.Location.URI == uri {
				result = append(result, loc)
			}
		}
	}

	sortLocations(result)

	return result
}

// RemoveFile drops every definition of uri.
func (si *SymbolIndex) RemoveFile(uri string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.remove(uri)
}

func (si *SymbolIndex) remove(uri string) {
	fileInfo, exists := si.files[uri]
	if !exists {
		return
	}

	for _, symbolName := range fileInfo.Symbols {
		var remaining []SymbolLocation
		for _, loc := range si.symbols[symbolName] {
			if loc.Location.URI != uri {
				remaining = append(remaining, loc)
			}
		}

		if len(remaining) > 0 {
			si.symbols[symbolName] = remaining
		} else {
			delete(si.symbols, symbolName)
		}
	}

	delete(si.files, uri)
}

// UpdateFileVersion records the document version an index entry was
// built from.
func (si *SymbolIndex) UpdateFileVersion(uri string, version int32) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	if fileInfo, exists := si.files[uri]; exists {
		fileInfo.Version = version
	}
}

// GetFileCount returns the number of indexed files.
func (si *SymbolIndex) GetFileCount() int {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	return len(si.files)
}

// GetSymbolCount returns the number of distinct names.
func (si *SymbolIndex) GetSymbolCount() int {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	return len(si.symbols)
}

// GetTotalLocationCount returns the number of definitions.
func (si *SymbolIndex) GetTotalLocationCount() int {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	count := 0
	for _, locations := range si.symbols {
		count += len(locations)
	}

	return count
}

// Clear empties the index.
func (si *SymbolIndex) Clear() {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.symbols = make(map[string][]SymbolLocation)
	si.files = make(map[string]*FileInfo)
}

type matchType int

const (
	matchExact matchType = iota
	matchPrefix
	matchSubstring
	matchNone
)

func match(name, queryLower string) matchType {
	nameLower := strings.ToLower(name)

	switch {
	case nameLower == queryLower:
		return matchExact
	case strings.HasPrefix(nameLower, queryLower):
		return matchPrefix
	case strings.Contains(nameLower, queryLower):
		return matchSubstring
	}

	return matchNone
}

// Search returns the definitions whose name contains query, ignoring case.
// Exact matches come first, then prefix matches, then the rest; ties are
// ordered by name. maxResults <= 0 means no limit.
func (si *SymbolIndex) Search(query string, maxResults int) []SymbolLocation {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	queryLower := strings.ToLower(query)

	type ranked struct {
		loc  SymbolLocation
		rank matchType
	}

	var hits []ranked
	for name, locations := range si.symbols {
		rank := match(name, queryLower)
		if rank == matchNone {
			continue
		}

		for _, loc := range locations {
			hits = append(hits, ranked{loc, rank})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}

		return less(hits[i].loc, hits[j].loc)
	})

	if maxResults > 0 && len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	results := make([]SymbolLocation, len(hits))
	for i, h := range hits {
		results[i] = h.loc
	}

	return results
}

func less(a, b SymbolLocation) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}

	if a.Location.URI != b.Location.URI {
		return a.Location.URI < b.Location.URI
	}

	return a.Location.Range.Start.Line < b.Location.Range.Start.Line
}

func sortLocations(locations []SymbolLocation) {
	sort.SliceStable(locations, func(i, j int) bool {
		a, b := locations[i].Location, locations[j].Location
		if a.URI != b.URI {
			return a.URI < b.URI
		}

		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}

		return a.Range.Start.Character < b.Range.Start.Character
	})
}
