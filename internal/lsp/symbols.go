package lsp

import (
	"strings"
	"unicode/utf8"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// findIndexed returns the index entries named name of the given kind.
func (r *request) findIndexed(name string, kind protocol.SymbolKind) []workspace.SymbolLocation {
	var found []workspace.SymbolLocation
	for _, loc := range r.srv.WorkspaceIndex().FindSymbol(name) {
		if loc.Kind == kind {
			found = append(found, loc)
		}
	}

	return found
}

// functionDefinitions locates the FUNCTION: declarations of name. The
// declarations of the current document come first.
func (r *request) functionDefinitions(name string) []workspace.SymbolLocation {
	found := r.findIndexed(name, protocol.SymbolKindFunction)

	local := found[:0:0]
	other := found[:0:0]
	for _, loc := range found {
		if loc.Location.URI == r.uri {
			local = append(local, loc)
		} else {
			other = append(other, loc)
		}
	}

	return append(local, other...)
}

// scriptDefinitions locates the SCRIPT:number headers. The ranges cover the
// number only.
func (r *request) scriptDefinitions(number int) []protocol.Location {
	name := workspace.HeaderSymbol(script.TypeScript, number)

	var locations []protocol.Location
	for _, loc := range r.findIndexed(name, protocol.SymbolKindModule) {
		l := loc.Location
		l.Range.Start.Character += uint32(len(script.TypeScript) + 1)
		l.Range.End = l.Range.Start
		l.Range.End.Character += uint32(len(name) - len(script.TypeScript) - 1)
		locations = append(locations, l)
	}

	return locations
}

// hookDefinitions locates the INSERTINTOSCRIPT:number blocks filling hook.
func (r *request) hookDefinitions(number int, hook string) []workspace.SymbolLocation {
	name := workspace.HeaderSymbol(script.TypeInsert, number)
	hook = script.HookName(hook)

	var found []workspace.SymbolLocation
	for _, loc := range r.findIndexed(name, protocol.SymbolKindEvent) {
		if script.HookName(loc.Detail) == hook {
			found = append(found, loc)
		}
	}

	return found
}

// hookMarkers locates the //ADDHOOK markers named hook in SCRIPT:number.
func (r *request) hookMarkers(number int, hook string) []workspace.SymbolLocation {
	container := workspace.HeaderSymbol(script.TypeScript, number)
	hook = script.HookName(hook)

	var found []workspace.SymbolLocation
	for _, loc := range r.findIndexed(hook, protocol.SymbolKindEvent) {
		if loc.ContainerName == container {
			found = append(found, loc)
		}
	}

	return found
}

// currentNumber is the number of the script the hook under the cursor
// belongs to: the script itself, or the main script of a hook block.
func (r *request) currentNumber() (int, bool) {
	s := r.script(false, false)
	if s == nil {
		return 0, false
	}

	return s.Number, true
}

// scriptOf finds the script with the given number among s, its includes
// and its main script.
func scriptOf(s *script.Script, number int) *script.Script {
	if s == nil {
		return nil
	}

	if s.Number == number {
		return s
	}

	if inc := s.Included(number); inc != nil {
		return inc
	}

	if s.MainScript != nil {
		return scriptOf(s.MainScript, number)
	}

	return nil
}

// variableLocation is the host-document location of v's declaring token.
// Built-in variables have none.
func (r *request) variableLocation(s *script.Script, v *analysis.Variable) (protocol.Location, bool) {
	if v == nil || v.Token == nil {
		return protocol.Location{}, false
	}

	owner := scriptOf(s, v.Script)
	if owner == nil {
		return protocol.Location{}, false
	}

	host, ok := r.corpus.Text(owner.URI)
	if !ok {
		return protocol.Location{}, false
	}

	lines := document.NewLineIndex(host)
	base := lines.OffsetAt(owner.Position)

	return protocol.Location{
		URI: owner.URI,
		Range: protocol.Range{
			Start: lines.PositionAt(base + v.Token.Range.Start),
			End:   lines.PositionAt(base + v.Token.Range.End),
		},
	}, true
}

// wordOccurrences returns the offsets of word in text where it is not part
// of a longer identifier.
func wordOccurrences(text, word string) []int {
	if word == "" {
		return nil
	}

	var offsets []int
	for from := 0; ; {
		i := strings.Index(text[from:], word)
		if i < 0 {
			break
		}

		start := from + i
		end := start + len(word)
		from = end

		if before, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && analysis.IsIdentifierRune(before) {
			continue
		}
		if after, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && analysis.IsIdentifierRune(after) {
			continue
		}

		offsets = append(offsets, start)
	}

	return offsets
}
