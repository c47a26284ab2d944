package lsp

import (
	"log"
	"strings"

	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentSymbol handles the textDocument/documentSymbol request.
// Every script block is a symbol; its user functions and hook markers are
// its children.
func DocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	srv, ok := getServer("DocumentSymbol")
	if !ok {
		return nil, nil
	}

	uri := params.TextDocument.URI
	log.Printf("DocumentSymbol request for %s\n", uri)

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Document not found for document symbols: %s\n", uri)
		return []protocol.DocumentSymbol{}, nil
	}

	symbols := collectDocumentSymbols(uri, doc.Text)
	log.Printf("Found %d top-level symbols in %s\n", len(symbols), uri)

	return symbols, nil
}

func collectDocumentSymbols(uri, text string) []protocol.DocumentSymbol {
	lines := document.NewLineIndex(text)
	headers := script.Headers(text)

	symbols := []protocol.DocumentSymbol{}
	var spans []protocol.Range

	for _, h := range headers {
		end := h.End
		if nl := strings.IndexByte(text[end:], '\n'); nl >= 0 {
			end += nl
		} else {
			end = len(text)
		}

		kind := protocol.SymbolKindModule
		if h.Type == script.TypeInsert {
			kind = protocol.SymbolKindEvent
		}

		detail := h.Name
		span := protocol.Range{Start: lines.PositionAt(h.Start), End: lines.PositionAt(end)}
		headerLine := lines.LineAt(h.Start)

		symbols = append(symbols, protocol.DocumentSymbol{
			Name:   workspace.HeaderSymbol(h.Type, h.Number),
			Detail: &detail,
			Kind:   kind,
			Range:  span,
			SelectionRange: protocol.Range{
				Start: lines.PositionAt(h.Start),
				End:   lines.PositionAt(lines.LineStart(headerLine) + len(lines.Line(headerLine))),
			},
		})
		spans = append(spans, span)
	}

	for _, sym := range workspace.Symbols(uri, text) {
		if sym.ContainerName == "" {
			continue
		}

		child := protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           sym.Kind,
			Range:          sym.Location.Range,
			SelectionRange: sym.Location.Range,
		}
		if sym.Detail != "" {
			detail := sym.Detail
			child.Detail = &detail
		}

		for i, span := range spans {
			if contains(span, sym.Location.Range.Start) {
				symbols[i].Children = append(symbols[i].Children, child)
				break
			}
		}
	}

	return symbols
}

func contains(r protocol.Range, pos protocol.Position) bool {
	after := pos.Line > r.Start.Line || (pos.Line == r.Start.Line && pos.Character >= r.Start.Character)
	before := pos.Line < r.End.Line || (pos.Line == r.End.Line && pos.Character <= r.End.Character)

	return after && before
}
