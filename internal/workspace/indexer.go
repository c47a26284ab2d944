package workspace

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/spf13/afero"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DefaultExtensions are the file extensions indexed when none are configured.
var DefaultExtensions = []string{".cpp", ".txt", ".fc"}

// Indexer walks workspace folders, caches every script file and indexes
// its symbols.
type Indexer struct {
	fs         afero.Fs
	index      *SymbolIndex
	files      *Files
	extensions []string
	maxDepth   int
	maxFiles   int
	fileCount  int
}

// NewIndexer creates an indexer reading from fs. files may be nil when
// only the symbols are needed.
func NewIndexer(fs afero.Fs, index *SymbolIndex, files *Files, extensions []string) *Indexer {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	return &Indexer{
		fs:         fs,
		index:      index,
		files:      files,
		extensions: extensions,
		maxDepth:   10,
		maxFiles:   10000,
	}
}

// BuildWorkspaceIndex scans the workspace folders.
func (idx *Indexer) BuildWorkspaceIndex(workspaceFolders []protocol.WorkspaceFolder) {
	if len(workspaceFolders) == 0 {
		log.Println("No workspace folders to index")
		return
	}

	log.Printf("Starting workspace indexing for %d folders\n", len(workspaceFolders))

	for _, folder := range workspaceFolders {
		path := URIToPath(folder.URI)
		if path == "" {
			log.Printf("Warning: Could not convert URI to path: %s\n", folder.URI)
			continue
		}

		log.Printf("Indexing workspace folder: %s\n", path)
		idx.indexDirectory(path, 0)
	}

	log.Printf("Workspace indexing complete. Indexed %d files, %d symbols\n",
		idx.fileCount, idx.index.GetTotalLocationCount())
}

// FileCount returns the number of files indexed so far.
func (idx *Indexer) FileCount() int {
	return idx.fileCount
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}

	switch name {
	case "node_modules", "vendor", "bin", "obj", "dist", "build", "out", "__pycache__":
		return true
	}

	return false
}

func (idx *Indexer) wanted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range idx.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}

	return false
}

func (idx *Indexer) indexDirectory(dirPath string, depth int) {
	if depth > idx.maxDepth || idx.fileCount >= idx.maxFiles {
		return
	}

	entries, err := afero.ReadDir(idx.fs, dirPath)
	if err != nil {
		return
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			if !skipDir(entry.Name()) {
				idx.indexDirectory(fullPath, depth+1)
			}

			continue
		}

		if strings.HasPrefix(entry.Name(), ".") || !idx.wanted(entry.Name()) {
			continue
		}

		idx.indexFile(fullPath)
	}
}

func (idx *Indexer) indexFile(filePath string) {
	if idx.fileCount >= idx.maxFiles {
		return
	}

	content, err := afero.ReadFile(idx.fs, filePath)
	if err != nil {
		log.Printf("Warning: Could not read file %s: %v\n", filePath, err)
		return
	}

	text := string(content)
	if !strings.Contains(text, "SCRIPT:") {
		return
	}

	uri := PathToURI(filePath)
	if idx.files != nil {
		idx.files.Set(uri, text)
	}

	IndexText(idx.index, uri, text)

	idx.fileCount++
	if idx.fileCount%100 == 0 {
		log.Printf("Indexed %d files so far...\n", idx.fileCount)
	}
}

// IndexText replaces the index entries of uri with the symbols of text.
func IndexText(index *SymbolIndex, uri, text string) {
	index.ReplaceFile(uri, Symbols(uri, text))
}

// HeaderSymbol is the index name of a script header, e.g. "SCRIPT:7".
func HeaderSymbol(typ script.Type, number int) string {
	return string(typ) + ":" + strconv.Itoa(number)
}

// Symbols extracts the script headers, user functions and hook markers
// of text.
func Symbols(uri, text string) []SymbolLocation {
	lines := document.NewLineIndex(text)
	span := func(start, end int) protocol.Location {
		return protocol.Location{
			URI:   uri,
			Range: protocol.Range{Start: lines.PositionAt(start), End: lines.PositionAt(end)},
		}
	}

	headers := script.Headers(text)
	container := func(offset int) string {
		for _, h := range headers {
			if h.Start <= offset && offset <= h.End {
				return HeaderSymbol(h.Type, h.Number)
			}
		}

		return ""
	}

	var symbols []SymbolLocation

	for _, h := range headers {
		end := h.End
		if nl := strings.IndexByte(text[h.Start:], '\n'); nl >= 0 {
			end = h.Start + nl
		}

		kind := protocol.SymbolKindModule
		if h.Type == script.TypeInsert {
			kind = protocol.SymbolKindEvent
		}

		line := text[h.Start:end]
		start := h.Start + len(line) - len(strings.TrimLeft(line, " \t"))

		symbols = append(symbols, SymbolLocation{
			Name:     HeaderSymbol(h.Type, h.Number),
			Kind:     kind,
			Location: span(start, end),
			Detail:   h.Name,
		})

		if h.Type != script.TypeScript {
			continue
		}

		body := text[end:h.End]
		for _, marker := range hookMarkers(body) {
			start := end + marker[0]
			symbols = append(symbols, SymbolLocation{
				Name:          script.HookName(text[start : end+marker[1]]),
				Kind:          protocol.SymbolKindEvent,
				Location:      span(start, end+marker[1]),
				ContainerName: HeaderSymbol(h.Type, h.Number),
			})
		}
	}

	for _, fn := range script.Functions(text) {
		symbols = append(symbols, SymbolLocation{
			Name:          fn.Name,
			Kind:          protocol.SymbolKindFunction,
			Location:      span(fn.NameStart, fn.NameStart+len(fn.Name)),
			ContainerName: container(fn.Start),
			Detail:        fn.Signature(),
		})
	}

	return symbols
}

func hookMarkers(text string) [][]int {
	var markers [][]int

	offset := 0
	for _, marker := range script.Hooks(text) {
		i := strings.Index(text[offset:], marker)
		if i < 0 {
			continue
		}

		markers = append(markers, []int{offset + i, offset + i + len(marker)})
		offset += i + len(marker)
	}

	return markers
}

// RemoveFolder drops every cached and indexed file below the folder URI.
func RemoveFolder(index *SymbolIndex, files *Files, folder string) {
	for _, uri := range files.RemoveUnder(folder) {
		index.RemoveFile(uri)
	}
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	if after, ok := strings.CutPrefix(uri, "file://"); ok {
		path := after
		// file:///C:/path
		if len(path) > 2 && path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}

		return path
	}

	return uri
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	path = filepath.ToSlash(path)

	if len(path) > 1 && path[1] == ':' {
		return "file:///" + path
	}

	return "file://" + path
}

// IndexWorkspace indexes the workspace folders synchronously.
func IndexWorkspace(fs afero.Fs, index *SymbolIndex, files *Files, workspaceFolders []protocol.WorkspaceFolder, extensions []string) {
	NewIndexer(fs, index, files, extensions).BuildWorkspaceIndex(workspaceFolders)
}

// IndexWorkspaceAsync runs IndexWorkspace in a background goroutine and
// closes done, if given, when it finishes.
func IndexWorkspaceAsync(fs afero.Fs, index *SymbolIndex, files *Files, workspaceFolders []protocol.WorkspaceFolder, extensions []string, done chan<- struct{}) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in workspace indexing: %v\n", r)
			}

			if done != nil {
				close(done)
			}
		}()

		IndexWorkspace(fs, index, files, workspaceFolders, extensions)
	}()
}

// FallbackSearch scans a bounded number of files for symbols matching
// query while the index is still being built.
func FallbackSearch(fs afero.Fs, workspaceFolders []string, query string, maxResults int, extensions []string) []SymbolLocation {
	log.Printf("Warning: Symbol index not ready, using fallback search for query %q\n", query)

	if maxResults <= 0 {
		maxResults = 100
	}

	scratch := NewIndexer(fs, NewSymbolIndex(), nil, extensions)
	filesSearched := 0
	maxFilesToSearch := 50

	for _, folder := range workspaceFolders {
		err := afero.Walk(fs, folder, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if path != folder && skipDir(info.Name()) {
					return filepath.SkipDir
				}

				return nil
			}

			if !scratch.wanted(path) {
				return nil
			}

			if filesSearched >= maxFilesToSearch {
				return filepath.SkipAll
			}

			filesSearched++
			scratch.indexFile(path)

			return nil
		})
		if err != nil {
			log.Printf("Warning: Error walking workspace folder %s: %v\n", folder, err)
		}
	}

	results := scratch.index.Search(query, maxResults)
	log.Printf("Fallback search found %d results from %d files\n", len(results), filesSearched)

	return results
}
