package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CachedTokens is the last token set sent for a document.
type CachedTokens struct {
	ResultID string
	Tokens   []analysis.SemanticToken
}

// SemanticTokensCache keeps the last token set per document so that a
// following delta request can be answered with edits.
type SemanticTokensCache struct {
	mu     sync.RWMutex
	latest map[protocol.DocumentUri]*CachedTokens
}

// NewSemanticTokensCache creates a new semantic tokens cache.
func NewSemanticTokensCache() *SemanticTokensCache {
	return &SemanticTokensCache{
		latest: make(map[protocol.DocumentUri]*CachedTokens),
	}
}

var resultCounter atomic.Uint64

// GenerateResultID returns a short identifier unique within the process.
func GenerateResultID(uri protocol.DocumentUri, version int) string {
	hash := sha256.New()
	hash.Write([]byte(uri))
	fmt.Fprintf(hash, ":%d:%d", version, resultCounter.Add(1))

	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// Store records tokens as the latest result of uri.
func (c *SemanticTokensCache) Store(uri protocol.DocumentUri, resultID string, tokens []analysis.SemanticToken) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest[uri] = &CachedTokens{ResultID: resultID, Tokens: tokens}
}

// Retrieve returns the cached tokens of uri if resultID is still the
// latest result.
func (c *SemanticTokensCache) Retrieve(uri protocol.DocumentUri, resultID string) (*CachedTokens, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.latest[uri]
	if !ok || cached.ResultID != resultID {
		return nil, false
	}

	return cached, true
}

// GetLatestResultID returns the most recent resultId for a document, or "".
func (c *SemanticTokensCache) GetLatestResultID(uri protocol.DocumentUri) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.latest[uri]; ok {
		return cached.ResultID
	}

	return ""
}

// InvalidateDocument forgets the tokens of uri.
func (c *SemanticTokensCache) InvalidateDocument(uri protocol.DocumentUri) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.latest, uri)
}

// Clear removes all cached tokens from the cache.
func (c *SemanticTokensCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest = make(map[protocol.DocumentUri]*CachedTokens)
}

// Size returns the number of documents with cached tokens.
func (c *SemanticTokensCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.latest)
}
