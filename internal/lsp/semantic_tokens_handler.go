package lsp

import (
	"log"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/server"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SemanticTokensFull handles textDocument/semanticTokens/full requests.
// It returns semantic highlighting information for the entire document.
func SemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	log.Printf("SemanticTokensFull request for: %s\n", params.TextDocument.URI)

	srv, ok := getServer("SemanticTokensFull")
	if !ok {
		return nil, nil
	}

	doc, ok := srv.Documents().Get(params.TextDocument.URI)
	if !ok {
		log.Printf("Document not found: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	tokens := analysis.CollectSemanticTokens(doc.Text)
	resultID := storeTokens(srv, doc, tokens)

	log.Printf("Collected %d semantic tokens for %s\n", len(tokens), doc.URI)

	return &protocol.SemanticTokens{
		ResultID: &resultID,
		Data:     analysis.EncodeSemanticTokens(tokens),
	}, nil
}

// SemanticTokensFullDelta handles textDocument/semanticTokens/full/delta
// requests. It answers with edits against the previous result when that
// result is still cached, and with the full token list otherwise.
func SemanticTokensFullDelta(context *glsp.Context, params *protocol.SemanticTokensDeltaParams) (any, error) {
	log.Printf("SemanticTokensFullDelta request for: %s (previous %s)\n",
		params.TextDocument.URI, params.PreviousResultID)

	srv, ok := getServer("SemanticTokensFullDelta")
	if !ok {
		return nil, nil
	}

	doc, ok := srv.Documents().Get(params.TextDocument.URI)
	if !ok {
		log.Printf("Document not found: %s\n", params.TextDocument.URI)
		return nil, nil
	}

	var previous []analysis.SemanticToken
	if cached, ok := srv.SemanticTokensCache().Retrieve(doc.URI, params.PreviousResultID); ok {
		previous = cached.Tokens
	}

	tokens := analysis.CollectSemanticTokens(doc.Text)
	resultID := storeTokens(srv, doc, tokens)

	result := analysis.ComputeSemanticTokensDelta(previous, tokens, resultID)
	if result.IsDelta {
		return result.Delta, nil
	}

	return result.Full, nil
}

func storeTokens(srv *server.Server, doc *server.Document, tokens []analysis.SemanticToken) string {
	resultID := server.GenerateResultID(doc.URI, doc.Version)
	srv.SemanticTokensCache().Store(doc.URI, resultID, tokens)

	return resultID
}
