package lsp

import (
	"log"

	"github.com/CWBudde/futurec-lsp/internal/server"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SettingsSection is the configuration section the client sends settings under.
const SettingsSection = "futurec-lsp"

// DidChangeConfiguration handles workspace configuration changes from the client.
// Settings are expected as
//
//	{"futurec-lsp": {"maxProblems": 100, "trace": "off", "builtins": "/path/functions.json",
//	                 "extensions": [".cpp"], "diagnoseOnOpen": true}}
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv, ok := getServer("DidChangeConfiguration")
	if !ok {
		return nil
	}

	settingsMap, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}

	settings, ok := settingsMap[SettingsSection].(map[string]any)
	if !ok {
		return nil
	}

	ApplySettings(srv, settings)

	return nil
}

// ApplySettings updates the server configuration from a decoded settings
// object. Unknown keys and values of the wrong type are ignored.
func ApplySettings(srv *server.Server, settings map[string]any) {
	srv.UpdateConfig(func(cfg *server.Config) {
		if maxProblems, ok := settings["maxProblems"].(float64); ok {
			cfg.MaxProblems = int(maxProblems)
			log.Printf("Configuration updated: maxProblems = %d\n", cfg.MaxProblems)
		}

		if trace, ok := settings["trace"].(string); ok {
			cfg.Trace = trace
		}

		if diagnoseOnOpen, ok := settings["diagnoseOnOpen"].(bool); ok {
			cfg.DiagnoseOnOpen = diagnoseOnOpen
		}

		if list, ok := settings["extensions"].([]any); ok {
			var extensions []string
			for _, e := range list {
				if s, ok := e.(string); ok && s != "" {
					extensions = append(extensions, s)
				}
			}

			if len(extensions) > 0 {
				cfg.Extensions = extensions
			}
		}
	})

	path, ok := settings["builtins"].(string)
	if !ok || path == "" || path == srv.Config().Builtins {
		return
	}

	if err := srv.LoadBuiltins(path); err != nil {
		log.Printf("Error: %v\n", err)
		return
	}

	srv.UpdateConfig(func(cfg *server.Config) { cfg.Builtins = path })
	log.Printf("Configuration updated: builtins = %s (%d signatures)\n", path, srv.Builtins().Len())
}

// DidChangeWorkspaceFolders indexes added folders and drops removed ones.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv, ok := getServer("DidChangeWorkspaceFolders")
	if !ok {
		return nil
	}

	removed := map[string]bool{}
	for _, folder := range params.Event.Removed {
		log.Printf("Workspace folder removed: %s (%s)\n", folder.Name, folder.URI)
		workspace.RemoveFolder(srv.WorkspaceIndex(), srv.Files(), folder.URI)
		removed[folder.URI] = true
	}

	var folders []string
	for _, uri := range srv.GetWorkspaceFolders() {
		if !removed[uri] {
			folders = append(folders, uri)
		}
	}

	for _, folder := range params.Event.Added {
		log.Printf("Workspace folder added: %s (%s)\n", folder.Name, folder.URI)
		folders = append(folders, folder.URI)
	}

	srv.SetWorkspaceFolders(folders)

	if len(params.Event.Added) > 0 {
		workspace.IndexWorkspace(srv.Fs(), srv.WorkspaceIndex(), srv.Files(), params.Event.Added, srv.Config().Extensions)
	}

	return nil
}
