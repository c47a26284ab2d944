package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CompletionCache keeps the variable completions of the last requested
// line. Completing again on the same line reuses them.
type CompletionCache struct {
	mu    sync.Mutex
	valid bool
	line  uint32
	items []protocol.CompletionItem
}

// Get returns the cached items when they were computed for line.
func (c *CompletionCache) Get(line uint32) ([]protocol.CompletionItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || c.line != line {
		return nil, false
	}

	return c.items, true
}

// Set caches items for line.
func (c *CompletionCache) Set(line uint32, items []protocol.CompletionItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = true
	c.line = line
	c.items = items
}

// Invalidate drops the cached items.
func (c *CompletionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	c.items = nil
}
