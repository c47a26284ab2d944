// Package builtins holds the signatures of the parser functions reachable
// through the namespaces S, D, F, H, P and the typed receivers CString,
// CTable, CMoney and CDateTime.
package builtins

import (
	"sort"
	"strings"
	"sync"

	"github.com/muesli/reflow/wordwrap"
)

// Contexts lists the sections a signature table is organised in.
var Contexts = []string{"CString", "CDateTime", "CTable", "CMoney", "H", "D", "F", "P", "S"}

// Parameter is one entry of a parameter list, e.g. "CString strName (required)".
type Parameter struct {
	Label    string
	Required bool
}

// Signature describes one parser function.
type Signature struct {
	Name       string
	Context    string
	ReturnType string
	Parameters []Parameter
	Notes      []string

	// InsertText is the completion snippet.
	InsertText string
}

// Registry looks up parser functions by receiver context and name.
type Registry interface {
	Lookup(context, name string) (*Signature, bool)
}

// NormalizeContext maps receivers with a fixed type to that type.
func NormalizeContext(context string) string {
	switch context {
	case "m_Rec", "m_Rec2":
		return "CTable"
	}

	return context
}

// ParameterList returns the signature's parameter labels joined by ",".
func (s *Signature) ParameterList() string {
	labels := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		labels[i] = p.Label
	}

	return strings.Join(labels, ",")
}

// Label is the signature-help label, "<return type> <name>".
func (s *Signature) Label() string {
	return s.ReturnType + " " + s.Name
}

// Markdown renders the hover text of the function.
func (s *Signature) Markdown() string {
	params := "`void`"
	if len(s.Parameters) > 0 {
		params = "`" + s.ParameterList() + "`"
	}

	return params + "  \n___  \n`@return " + s.ReturnType + "`  \n___  \n" + s.NotesMarkdown()
}

// NotesMarkdown joins the notes as markdown lines wrapped at 80 columns.
func (s *Signature) NotesMarkdown() string {
	lines := make([]string, len(s.Notes))
	for i, note := range s.Notes {
		lines[i] = strings.ReplaceAll(wordwrap.String(note, 80), "\n", "  \n")
	}

	return strings.Join(lines, "  \n")
}

// MinArgs returns the number of leading arguments needed to cover every
// required parameter.
func (s *Signature) MinArgs() int {
	for i := len(s.Parameters) - 1; i >= 0; i-- {
		if s.Parameters[i].Required {
			return i + 1
		}
	}

	return 0
}

// Table is an in-memory Registry.
type Table struct {
	mu       sync.RWMutex
	contexts map[string]map[string]*Signature
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{contexts: make(map[string]map[string]*Signature)}
}

// Add registers sig under context, replacing an existing entry.
func (t *Table) Add(context string, sig *Signature) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sig.Context = context
	if t.contexts[context] == nil {
		t.contexts[context] = make(map[string]*Signature)
	}
	t.contexts[context][sig.Name] = sig
}

// Lookup implements Registry.
func (t *Table) Lookup(context, name string) (*Signature, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sig, ok := t.contexts[NormalizeContext(context)][name]

	return sig, ok
}

// Functions returns the signatures of context sorted by name.
func (t *Table) Functions(context string) []*Signature {
	t.mu.RLock()
	defer t.mu.RUnlock()

	fns := t.contexts[NormalizeContext(context)]
	result := make([]*Signature, 0, len(fns))
	for _, sig := range fns {
		result = append(result, sig)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// Len returns the number of registered signatures.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, fns := range t.contexts {
		n += len(fns)
	}

	return n
}

// Replace swaps the content of t with other's.
func (t *Table) Replace(other *Table) {
	other.mu.RLock()
	contexts := other.contexts
	other.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.contexts = contexts
}
