// Package script locates futurec scripts inside host documents and resolves
// their includes, hooks and main scripts across the document corpus.
package script

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/CWBudde/futurec-lsp/internal/document"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Type is the header keyword that opened a script.
type Type string

const (
	TypeScript Type = "SCRIPT"
	TypeInsert Type = "INSERTINTOSCRIPT"
	TypeAdd    Type = "ADDTOSCRIPT"
)

// Script is one unit of analysis: the text between a header line and the
// next ENDSCRIPT line.
type Script struct {
	// Text starts right after the header line, so its first line is empty.
	Text string

	Number int

	// Position is the host-document position of Text[0].
	Position protocol.Position

	URI  string
	Type Type
	Name string

	// MainScript is the SCRIPT an INSERTINTOSCRIPT block is spliced into.
	MainScript *Script

	IncludedScripts  []*Script
	HooksForDocument []*Script

	Expansion Expansion
}

// Corpus is the read interface to every document that may hold scripts.
type Corpus interface {
	// FindAll returns the URIs matching pattern, sorted. An empty pattern
	// matches every document.
	FindAll(pattern string) []string

	Text(uri string) (string, bool)
}

var (
	headerPattern = regexp.MustCompile(`(?m)^(SCRIPT|INSERTINTOSCRIPT|ADDTOSCRIPT):([0-9]+),(.*)$`)
	endPattern    = regexp.MustCompile(`(?m)^[ \t]*ENDSCRIPT`)
)

// Included returns the included script with the given number.
func (s *Script) Included(number int) *Script {
	for _, inc := range s.IncludedScripts {
		if inc.Number == number {
			return inc
		}
	}

	return nil
}

// Hook returns the hook block of the current document with the given
// marker name. "//ADDHOOK-1" and "// ADDHOOK-1" name the same hook.
func (s *Script) Hook(name string) *Script {
	name = HookName(name)
	for _, hook := range s.HooksForDocument {
		if HookName(hook.Name) == name {
			return hook
		}
	}

	return nil
}

// HookName strips the comment prefix of a hook marker.
func HookName(marker string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(marker), "//"))
}

// clone copies s and its slices; the sub-scripts are shared.
func (s *Script) clone() *Script {
	c := *s
	c.IncludedScripts = append([]*Script(nil), s.IncludedScripts...)
	c.HooksForDocument = append([]*Script(nil), s.HooksForDocument...)

	return &c
}

// bodyEnd returns the offset of the ENDSCRIPT line following from, or
// len(text) when the script is not terminated.
func bodyEnd(text string, from int) int {
	loc := endPattern.FindStringIndex(text[from:])
	if loc == nil {
		return len(text)
	}

	return from + loc[0]
}

func newScript(text, uri string, header []int) *Script {
	number, _ := strconv.Atoi(text[header[4]:header[5]])
	start := header[1]

	return &Script{
		Text:     text[start:bodyEnd(text, start)],
		Number:   number,
		Position: document.PositionAt(text, start),
		URI:      uri,
		Type:     Type(text[header[2]:header[3]]),
		Name:     strings.TrimSpace(text[header[6]:header[7]]),
	}
}

// ExtractOptions controls how the script under a cursor is sliced.
type ExtractOptions struct {
	// ToCursor cuts the script text at the cursor offset.
	ToCursor bool

	// Inline substitutes includes textually instead of recording them.
	Inline bool

	// Cache keeps the last resolved main script of an INSERTINTOSCRIPT block.
	Cache *MainScriptCache
}

// Extract returns the script enclosing offset in the document uri, or nil
// when the offset is not inside any script.
func Extract(corpus Corpus, uri string, offset int, opts ExtractOptions) *Script {
	text, ok := corpus.Text(uri)
	if !ok {
		return nil
	}

	if offset > len(text) {
		offset = len(text)
	}

	var header []int
	for _, m := range headerPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > offset {
			break
		}
		header = m
	}

	if header == nil {
		return nil
	}

	s := newScript(text, uri, header)
	start := header[1]

	if opts.ToCursor {
		if offset < start {
			offset = start
		}
		s.Text = text[start:offset]
	} else if end := start + len(s.Text); end < len(text) {
		// cursor below the ENDSCRIPT keyword
		if loc := endPattern.FindStringIndex(text[end:]); loc != nil && end+loc[1] < offset {
			return nil
		}
	}

	Expand(s, corpus, opts.Inline)

	if s.Type == TypeInsert {
		s.MainScript = opts.Cache.resolve(corpus, s, text)
	} else {
		opts.Cache.Invalidate()
	}

	return s
}

// All returns every script of the document uri with its includes recorded
// and, for hook blocks, its main script resolved.
func All(corpus Corpus, uri string) []*Script {
	text, ok := corpus.Text(uri)
	if !ok {
		return nil
	}

	var scripts []*Script
	for _, m := range headerPattern.FindAllStringSubmatchIndex(text, -1) {
		s := newScript(text, uri, m)
		Expand(s, corpus, false)

		if s.Type == TypeInsert {
			s.MainScript = resolveMain(corpus, s, text)
		}

		scripts = append(scripts, s)
	}

	return scripts
}

// Header describes one script header line of a document.
type Header struct {
	Type   Type
	Number int
	Name   string
	// Start and End are the offsets of the header line and of its ENDSCRIPT.
	Start, End int
}

// Headers lists the script headers of text in document order.
func Headers(text string) []Header {
	var headers []Header
	for _, m := range headerPattern.FindAllStringSubmatchIndex(text, -1) {
		number, _ := strconv.Atoi(text[m[4]:m[5]])
		headers = append(headers, Header{
			Type:   Type(text[m[2]:m[3]]),
			Number: number,
			Name:   strings.TrimSpace(text[m[6]:m[7]]),
			Start:  m[0],
			End:    bodyEnd(text, m[1]),
		})
	}

	return headers
}

func sortedURIs(corpus Corpus) []string {
	uris := corpus.FindAll("")
	sort.Strings(uris)

	return uris
}
