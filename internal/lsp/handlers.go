// Package lsp implements the LSP request and notification handlers of the
// futurec language server.
package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// NewHandler returns the handler table wired to every implemented method.
func NewHandler() protocol.Handler {
	return protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		SetTrace:    SetTrace,

		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,
		WorkspaceSymbol:                    WorkspaceSymbol,
		WorkspaceExecuteCommand:            ExecuteCommand,

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidSave:   DidSave,
		TextDocumentDidClose:  DidClose,

		TextDocumentHover:          Hover,
		TextDocumentCompletion:     Completion,
		TextDocumentSignatureHelp:  SignatureHelp,
		TextDocumentDefinition:     Definition,
		TextDocumentReferences:     References,
		TextDocumentDocumentSymbol: DocumentSymbol,
		TextDocumentCodeAction:     CodeAction,
		TextDocumentPrepareRename:  PrepareRename,
		TextDocumentRename:         Rename,

		TextDocumentSemanticTokensFull:      SemanticTokensFull,
		TextDocumentSemanticTokensFullDelta: SemanticTokensFullDelta,
	}
}

// SetTrace accepts the client's trace setting. Logging goes to the log
// file, so there is nothing to switch.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}
