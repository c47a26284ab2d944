package lsp

import (
	"log"

	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/server"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen handles the textDocument/didOpen notification.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv, ok := getServer("DidOpen")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	log.Printf("Document opened: %s (version %d, language %s, %d bytes)\n",
		uri, params.TextDocument.Version, params.TextDocument.LanguageID, len(text))

	srv.Documents().Set(uri, &server.Document{
		URI:        uri,
		Text:       text,
		Version:    int(params.TextDocument.Version),
		LanguageID: params.TextDocument.LanguageID,
	})
	srv.Sessions().InvalidateMainScripts()
	workspace.IndexText(srv.WorkspaceIndex(), uri, text)

	cfg := srv.Config()
	if !cfg.DiagnoseOnOpen {
		return nil
	}

	diagnostics := DiagnoseDocument(srv.Corpus(), srv.Builtins(), uri, false)
	PublishDiagnostics(context, uri, limitDiagnostics(diagnostics, cfg.MaxProblems))

	return nil
}

// DidChange handles the textDocument/didChange notification. Both full and
// incremental sync are accepted.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv, ok := getServer("DidChange")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)

	doc, exists := srv.Documents().Get(uri)
	if !exists {
		log.Printf("Warning: Document not found for didChange: %s\n", uri)
		return nil
	}

	newText := doc.Text

	for i, changeInterface := range params.ContentChanges {
		var change protocol.TextDocumentContentChangeEvent

		switch c := changeInterface.(type) {
		case protocol.TextDocumentContentChangeEvent:
			change = c
		case protocol.TextDocumentContentChangeEventWhole:
			change = protocol.TextDocumentContentChangeEvent{Text: c.Text}
		default:
			log.Printf("Warning: Invalid content change type at index %d for %s\n", i, uri)
			continue
		}

		updated, err := document.ApplyContentChange(newText, change)
		if err != nil {
			log.Printf("Error applying change to %s: %v\n", uri, err)
			continue
		}

		newText = updated
	}

	srv.Documents().Set(uri, &server.Document{
		URI:        uri,
		Text:       newText,
		Version:    version,
		LanguageID: doc.LanguageID,
	})

	session := srv.Sessions().Get(uri)
	if document.NewLineIndex(doc.Text).LineCount() != document.NewLineIndex(newText).LineCount() {
		session.Completion.Invalidate()
	}
	srv.Sessions().InvalidateMainScripts()

	workspace.IndexText(srv.WorkspaceIndex(), uri, newText)

	offset := document.ChangedOffset(newText, params.ContentChanges)

	var diagnostics []protocol.Diagnostic
	if offset < 0 {
		diagnostics = DiagnoseDocument(srv.Corpus(), srv.Builtins(), uri, false)
	} else {
		diagnostics = DiagnoseScript(srv.Corpus(), srv.Builtins(), uri, offset, session.MainScripts)
	}

	PublishDiagnostics(context, uri, limitDiagnostics(diagnostics, srv.Config().MaxProblems))

	return nil
}

// DidSave handles the textDocument/didSave notification. The workspace
// file cache takes the saved text and every script of the document is
// diagnosed again.
func DidSave(context *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	srv, ok := getServer("DidSave")
	if !ok {
		return nil
	}

	doc, ok := srv.Documents().Get(params.TextDocument.URI)
	if !ok {
		return nil
	}

	srv.Files().Set(doc.URI, doc.Text)

	diagnostics := DiagnoseDocument(srv.Corpus(), srv.Builtins(), doc.URI, false)
	PublishDiagnostics(context, doc.URI, limitDiagnostics(diagnostics, srv.Config().MaxProblems))

	return nil
}

// DidClose handles the textDocument/didClose notification.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv, ok := getServer("DidClose")
	if !ok {
		return nil
	}

	uri := params.TextDocument.URI

	srv.Documents().Delete(uri)
	srv.Sessions().Close(uri)
	srv.SemanticTokensCache().InvalidateDocument(uri)

	// fall back to the file on disk, if it was indexed
	if text, ok := srv.Files().Text(uri); ok {
		workspace.IndexText(srv.WorkspaceIndex(), uri, text)
	} else {
		srv.WorkspaceIndex().RemoveFile(uri)
	}

	log.Printf("Document closed: %s\n", uri)

	if context != nil && context.Notify != nil {
		context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}

	return nil
}
