package lsp

import (
	"log"
	"strconv"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Definition handles the textDocument/definition request.
//
// Include numbers resolve to their SCRIPT header, Call: names to the
// FUNCTION declaration, hook markers to the INSERTINTOSCRIPT block filling
// them (and back), and variables to their declaration.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	srv, ok := getServer("Definition")
	if !ok {
		return nil, nil
	}

	uri := params.TextDocument.URI
	log.Printf("Definition request at %s line %d, character %d\n",
		uri, params.Position.Line, params.Position.Character)

	r, ok := newRequest(srv, uri, params.Position)
	if !ok {
		return nil, nil
	}

	locations := r.definitions(r.cursor(false))
	if len(locations) == 0 {
		log.Printf("No definition found at %s line %d\n", uri, params.Position.Line)
		return nil, nil
	}

	if len(locations) == 1 {
		return locations[0], nil
	}

	return locations, nil
}

func (r *request) definitions(info analysis.CursorInfo) []protocol.Location {
	switch info.Kind {
	case analysis.CursorIncludeScript:
		number, err := strconv.Atoi(info.Word)
		if err != nil {
			return nil
		}

		return r.scriptDefinitions(number)

	case analysis.CursorUserFunction:
		return locationsOf(r.functionDefinitions(info.FunctionName()))

	case analysis.CursorAddHook:
		s := r.script(false, false)
		if s == nil {
			return nil
		}

		if s.Type == script.TypeInsert {
			return locationsOf(r.hookMarkers(s.Number, info.Word))
		}

		return locationsOf(r.hookDefinitions(s.Number, info.Word))

	case analysis.CursorVariable:
		s, si := r.analyze()
		if s == nil {
			return nil
		}

		v, ok := si.LookupVariable(info.Word)
		if !ok {
			return nil
		}

		if loc, ok := r.variableLocation(s, v); ok {
			return []protocol.Location{loc}
		}
	}

	return nil
}

func locationsOf(symbols []workspace.SymbolLocation) []protocol.Location {
	locations := make([]protocol.Location, len(symbols))
	for i, s := range symbols {
		locations[i] = s.Location
	}

	return locations
}
