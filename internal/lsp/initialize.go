package lsp

import (
	"log"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported to the client in the initialize result.
const ServerName = "futurec-lsp"

// ServerVersion is set by the command at startup.
var ServerVersion = "0.1.0"

// Commands lists the workspace/executeCommand commands.
var Commands = []string{
	CommandCollectStatistics,
	CommandScriptNumber,
	CommandInsertionPoint,
	CommandDiagnoseAllScripts,
}

// Initialize handles the LSP initialize request.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if srv, ok := getServer("Initialize"); ok {
		srv.SetClientCapabilities(&params.Capabilities)

		var folders []string
		for _, folder := range params.WorkspaceFolders {
			folders = append(folders, folder.URI)
		}

		if len(folders) == 0 && params.RootURI != nil && *params.RootURI != "" {
			folders = append(folders, *params.RootURI)
		}

		srv.SetWorkspaceFolders(folders)
		log.Printf("Initialize: %d workspace folder(s)\n", len(folders))
	}

	result := protocol.InitializeResult{
		Capabilities: serverCapabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &ServerVersion,
		},
	}

	return result, nil
}

func serverCapabilities() protocol.ServerCapabilities {
	changeKind := protocol.TextDocumentSyncKindIncremental

	return protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &[]bool{true}[0],
			Change:    &changeKind,
			Save:      &protocol.SaveOptions{IncludeText: &[]bool{false}[0]},
		},

		HoverProvider:           &[]bool{true}[0],
		DefinitionProvider:      &[]bool{true}[0],
		ReferencesProvider:      &[]bool{true}[0],
		DocumentSymbolProvider:  &[]bool{true}[0],
		WorkspaceSymbolProvider: &[]bool{true}[0],

		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{".", ":"},
			ResolveProvider:   &[]bool{false}[0],
		},

		SignatureHelpProvider: &protocol.SignatureHelpOptions{
			TriggerCharacters:   []string{"(", ","},
			RetriggerCharacters: []string{},
		},

		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &[]bool{true}[0],
		},

		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: analysis.Legend(),
			Full:   &protocol.SemanticDelta{Delta: &[]bool{true}[0]},
		},

		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
			ResolveProvider: &[]bool{false}[0],
		},

		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: Commands,
		},

		Workspace: &protocol.ServerCapabilitiesWorkspace{
			WorkspaceFolders: &protocol.WorkspaceFoldersServerCapabilities{
				Supported:           &[]bool{true}[0],
				ChangeNotifications: &protocol.BoolOrString{Value: true},
			},
		},
	}
}

// Initialized handles the initialized notification from the client. The
// workspace index is built in the background.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	srv, ok := getServer("Initialized")
	if !ok {
		return nil
	}

	var folders []protocol.WorkspaceFolder
	for _, uri := range srv.GetWorkspaceFolders() {
		folders = append(folders, protocol.WorkspaceFolder{URI: uri})
	}

	done := make(chan struct{})
	workspace.IndexWorkspaceAsync(srv.Fs(), srv.WorkspaceIndex(), srv.Files(), folders, srv.Config().Extensions, done)

	go func() {
		<-done
		srv.SetIndexReady(true)
	}()

	return nil
}

// Shutdown handles the shutdown request.
func Shutdown(context *glsp.Context) error {
	srv, ok := getServer("Shutdown")
	if !ok {
		return nil
	}

	srv.SetShuttingDown()
	srv.SemanticTokensCache().Clear()
	srv.Documents().Clear()

	log.Println("Server shutting down")

	return nil
}
