// Package server provides the core LSP server state and management.
package server

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/spf13/afero"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Server holds the state of the LSP server.
type Server struct {
	// documents stores all open documents
	documents *DocumentStore

	// files caches the text of indexed workspace files that are not open
	files *workspace.Files

	// workspaceIndex stores script headers, hooks and user functions of the workspace
	workspaceIndex *workspace.SymbolIndex

	// builtins is the parser-function signature table
	builtins *builtins.Table

	// sessions holds the per-document caches
	sessions *Sessions

	// semanticTokensCache stores previous semantic tokens for delta computation
	semanticTokensCache *SemanticTokensCache

	fs afero.Fs

	workspaceFolders   []string
	clientCapabilities *protocol.ClientCapabilities
	config             *Config

	// indexReady is set once the initial workspace scan finished
	indexReady bool

	mu           sync.RWMutex
	shuttingDown bool
}

// Config holds server configuration options.
type Config struct {
	// MaxProblems limits the number of diagnostics reported per document
	MaxProblems int

	// Trace controls logging verbosity
	Trace string

	// Builtins is the path of the parser-function signature file
	Builtins string

	// Extensions are the file extensions scanned in the workspace
	Extensions []string

	// DiagnoseOnOpen analyzes every script of a document when it is opened
	DiagnoseOnOpen bool
}

// DefaultConfig returns the configuration used before the client sends one.
func DefaultConfig() *Config {
	return &Config{
		MaxProblems:    100,
		Trace:          "off",
		Extensions:     workspace.DefaultExtensions,
		DiagnoseOnOpen: true,
	}
}

// New creates a server reading workspace files from the OS file system.
func New() *Server {
	return NewWithFs(afero.NewOsFs())
}

// NewWithFs creates a server reading workspace files from fs.
func NewWithFs(fs afero.Fs) *Server {
	return &Server{
		documents:           NewDocumentStore(),
		files:               workspace.NewFiles(),
		workspaceIndex:      workspace.NewSymbolIndex(),
		builtins:            builtins.NewTable(),
		sessions:            NewSessions(),
		semanticTokensCache: NewSemanticTokensCache(),
		fs:                  fs,
		config:              DefaultConfig(),
	}
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuttingDown = true
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Files returns the workspace file cache.
func (s *Server) Files() *workspace.Files {
	return s.files
}

// WorkspaceIndex returns the workspace-wide symbol index.
func (s *Server) WorkspaceIndex() *workspace.SymbolIndex {
	return s.workspaceIndex
}

// Builtins returns the parser-function signature table.
func (s *Server) Builtins() *builtins.Table {
	return s.builtins
}

// LoadBuiltins replaces the signature table with the content of the data
// file at path. Notes referring to __BASE__ point to the file's directory.
func (s *Server) LoadBuiltins(path string) error {
	table, err := builtins.LoadFile(s.fs, path, filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("loading builtins: %w", err)
	}

	s.builtins.Replace(table)

	return nil
}

// Sessions returns the per-document session caches.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Fs returns the file system workspace files are read from.
func (s *Server) Fs() afero.Fs {
	return s.fs
}

// Corpus returns the documents visible to include and hook resolution:
// the open documents, then the indexed workspace files.
func (s *Server) Corpus() *Corpus {
	return &Corpus{documents: s.documents, files: s.files}
}

// Config returns a copy of the server configuration.
func (s *Server) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return *s.config
}

// UpdateConfig updates the server configuration atomically.
// The update function is called with the current config under a write lock.
func (s *Server) UpdateConfig(update func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update(s.config)
}

// SetWorkspaceFolders sets the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaceFolders = folders
}

// GetWorkspaceFolders returns the workspace folders.
func (s *Server) GetWorkspaceFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.workspaceFolders
}

// SetIndexReady records whether the initial workspace scan finished.
func (s *Server) SetIndexReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.indexReady = ready
}

// IndexReady reports whether the initial workspace scan finished.
func (s *Server) IndexReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indexReady
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.clientCapabilities
}

// SupportsSnippets returns true if the client supports snippet completions.
func (s *Server) SupportsSnippets() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caps := s.clientCapabilities
	if caps == nil || caps.TextDocument == nil || caps.TextDocument.Completion == nil ||
		caps.TextDocument.Completion.CompletionItem == nil ||
		caps.TextDocument.Completion.CompletionItem.SnippetSupport == nil {
		return false
	}

	return *caps.TextDocument.Completion.CompletionItem.SnippetSupport
}

// SemanticTokensCache returns the semantic tokens cache for delta support.
func (s *Server) SemanticTokensCache() *SemanticTokensCache {
	return s.semanticTokensCache
}
