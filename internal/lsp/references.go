package lsp

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var callPrefix = regexp.MustCompile(`Call[ \t]*:[ \t]*$`)

// References handles the textDocument/references request.
func References(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	srv, ok := getServer("References")
	if !ok {
		return nil, nil
	}

	uri := params.TextDocument.URI
	log.Printf("References request at %s line %d, character %d (includeDeclaration=%v)\n",
		uri, params.Position.Line, params.Position.Character, params.Context.IncludeDeclaration)

	r, ok := newRequest(srv, uri, params.Position)
	if !ok {
		return []protocol.Location{}, nil
	}

	info := r.cursor(false)
	include := params.Context.IncludeDeclaration

	var locations []protocol.Location

	switch info.Kind {
	case analysis.CursorIncludeScript:
		number, err := strconv.Atoi(info.Word)
		if err != nil {
			break
		}

		if include {
			locations = append(locations, r.scriptDefinitions(number)...)
		}
		locations = append(locations, r.includeReferences(number)...)

	case analysis.CursorUserFunction:
		name := info.FunctionName()
		if include {
			locations = append(locations, locationsOf(r.functionDefinitions(name))...)
		}
		locations = append(locations, r.callReferences(name)...)

	case analysis.CursorAddHook:
		s := r.script(false, false)
		if s == nil {
			break
		}

		locations = append(locations, locationsOf(r.hookMarkers(s.Number, info.Word))...)
		locations = append(locations, locationsOf(r.hookDefinitions(s.Number, info.Word))...)

	case analysis.CursorVariable:
		locations = r.variableReferences(info.Word, include)
	}

	sortLocations(locations)
	log.Printf("Found %d references\n", len(locations))

	if locations == nil {
		locations = []protocol.Location{}
	}

	return locations, nil
}

// includeReferences finds every "includescript <number>" of the corpus.
// The ranges cover the number.
func (r *request) includeReferences(number int) []protocol.Location {
	pattern := regexp.MustCompile(`\bincludescript[ \t]+(` + strconv.Itoa(number) + `)\b`)

	var locations []protocol.Location
	for _, uri := range r.corpus.FindAll("") {
		text, ok := r.corpus.Text(uri)
		if !ok {
			continue
		}

		lines := document.NewLineIndex(text)
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			locations = append(locations, protocol.Location{
				URI:   uri,
				Range: protocol.Range{Start: lines.PositionAt(m[2]), End: lines.PositionAt(m[3])},
			})
		}
	}

	return locations
}

// callReferences finds every "Call:<name>" of the corpus.
func (r *request) callReferences(name string) []protocol.Location {
	var locations []protocol.Location
	for _, uri := range r.corpus.FindAll("") {
		text, ok := r.corpus.Text(uri)
		if !ok || !strings.Contains(text, name) {
			continue
		}

		lines := document.NewLineIndex(text)
		for _, offset := range wordOccurrences(text, name) {
			if !callPrefix.MatchString(text[lines.LineStart(lines.LineAt(offset)):offset]) {
				continue
			}

			locations = append(locations, protocol.Location{
				URI:   uri,
				Range: protocol.Range{Start: lines.PositionAt(offset), End: lines.PositionAt(offset + len(name))},
			})
		}
	}

	return locations
}

// variableTokens returns the tokens of s naming word. Tokens of strings and
// comments never match, since the tokenizer keeps them whole.
func variableTokens(s *script.Script, word string) []analysis.Token {
	var found []analysis.Token
	for _, tok := range analysis.Tokenize(s.Text, analysis.TokenizeOptions{ScriptType: string(s.Type), ScriptNumber: s.Number}) {
		if tok.Text == word {
			found = append(found, tok)
		}
	}

	return found
}

// variableReferences lists the uses of a variable in the script under the
// cursor. The declaration is dropped unless include is set.
func (r *request) variableReferences(word string, include bool) []protocol.Location {
	s := r.script(false, false)
	if s == nil {
		return nil
	}

	var declaration *protocol.Location
	if cut, si := r.analyze(); cut != nil {
		if v, ok := si.LookupVariable(word); ok {
			if loc, ok := r.variableLocation(cut, v); ok {
				declaration = &loc
			}
		}
	}

	base := r.lines.OffsetAt(s.Position)

	var locations []protocol.Location
	for _, tok := range variableTokens(s, word) {
		loc := protocol.Location{
			URI: r.uri,
			Range: protocol.Range{
				Start: r.lines.PositionAt(base + tok.Range.Start),
				End:   r.lines.PositionAt(base + tok.Range.End),
			},
		}

		if !include && declaration != nil && *declaration == loc {
			continue
		}

		locations = append(locations, loc)
	}

	return locations
}

func sortLocations(locations []protocol.Location) {
	sort.SliceStable(locations, func(i, j int) bool {
		a, b := locations[i], locations[j]
		if a.URI != b.URI {
			return a.URI < b.URI
		}
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line < b.Range.Start.Line
		}

		return a.Range.Start.Character < b.Range.Start.Character
	})
}
