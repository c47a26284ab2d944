package lsp

import (
	"log"
	"strconv"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CodeAction handles the textDocument/codeAction request.
// It offers quick fixes for the diagnostics in the request context.
func CodeAction(context *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	srv, ok := getServer("CodeAction")
	if !ok {
		return nil, nil
	}

	uri := params.TextDocument.URI
	diagnostics := params.Context.Diagnostics

	log.Printf("CodeAction request at %s range (%d:%d)-(%d:%d) with %d diagnostics\n",
		uri,
		params.Range.Start.Line, params.Range.Start.Character,
		params.Range.End.Line, params.Range.End.Character,
		len(diagnostics))

	if _, exists := srv.Documents().Get(uri); !exists {
		log.Printf("Document not found for code action: %s\n", uri)
		return []protocol.CodeAction{}, nil
	}

	actions := []protocol.CodeAction{}

	for _, diagnostic := range diagnostics {
		actions = append(actions, GenerateQuickFixes(diagnostic, uri)...)
	}

	log.Printf("Returning %d code actions\n", len(actions))

	return actions, nil
}

// GenerateQuickFixes generates quick fix code actions for a diagnostic.
func GenerateQuickFixes(diagnostic protocol.Diagnostic, uri string) []protocol.CodeAction {
	if diagnosticCode(diagnostic) == analysis.CodeMissingSemicolon ||
		diagnostic.Message == analysis.MessageMissingSemicolon {
		return []protocol.CodeAction{addSemicolonAction(diagnostic, uri)}
	}

	return nil
}

// addSemicolonAction replaces the closing brace the diagnostic points at
// with "};".
func addSemicolonAction(diagnostic protocol.Diagnostic, uri string) protocol.CodeAction {
	kind := protocol.CodeActionKindQuickFix
	preferred := true

	return protocol.CodeAction{
		Title:       "Add ';'",
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diagnostic},
		IsPreferred: &preferred,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{
				uri: {{Range: diagnostic.Range, NewText: "};"}},
			},
		},
	}
}

// diagnosticCode returns the numeric code of d, or 0. Codes sent back by
// the client may arrive without a value, so callers also check the message.
func diagnosticCode(d protocol.Diagnostic) int {
	if d.Code == nil {
		return 0
	}

	switch v := d.Code.Value.(type) {
	case protocol.Integer:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}

	return 0
}
