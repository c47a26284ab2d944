package lsp

import (
	"log"

	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// maxWorkspaceSymbols limits the result so the client is not overwhelmed.
const maxWorkspaceSymbols = 500

// WorkspaceSymbol handles the workspace/symbol request.
// It returns symbols across the entire workspace that match the query string.
func WorkspaceSymbol(context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	srv, ok := getServer("WorkspaceSymbol")
	if !ok {
		return nil, nil
	}

	query := params.Query
	log.Printf("WorkspaceSymbol request with query: %q\n", query)

	symbolLocations := srv.WorkspaceIndex().Search(query, maxWorkspaceSymbols)

	if !srv.IndexReady() {
		var folders []string
		for _, uri := range srv.GetWorkspaceFolders() {
			folders = append(folders, workspace.URIToPath(uri))
		}

		if len(folders) > 0 {
			fallback := workspace.FallbackSearch(srv.Fs(), folders, query, maxWorkspaceSymbols, srv.Config().Extensions)
			symbolLocations = mergeSymbols(symbolLocations, fallback, maxWorkspaceSymbols)
		}
	}

	log.Printf("Found %d workspace symbols matching query %q\n", len(symbolLocations), query)

	symbols := make([]protocol.SymbolInformation, 0, len(symbolLocations))
	for _, symLoc := range symbolLocations {
		symbolInfo := protocol.SymbolInformation{
			Name:     symLoc.Name,
			Kind:     symLoc.Kind,
			Location: symLoc.Location,
		}

		if symLoc.ContainerName != "" {
			container := symLoc.ContainerName
			symbolInfo.ContainerName = &container
		}

		symbols = append(symbols, symbolInfo)
	}

	return symbols, nil
}

// mergeSymbols appends the entries of extra not already in base, up to limit.
func mergeSymbols(base, extra []workspace.SymbolLocation, limit int) []workspace.SymbolLocation {
	type key struct {
		name string
		uri  string
		line uint32
	}

	seen := make(map[key]bool, len(base))
	for _, s := range base {
		seen[key{s.Name, s.Location.URI, s.Location.Range.Start.Line}] = true
	}

	for _, s := range extra {
		if len(base) >= limit {
			break
		}

		k := key{s.Name, s.Location.URI, s.Location.Range.Start.Line}
		if seen[k] {
			continue
		}
		seen[k] = true
		base = append(base, s)
	}

	return base
}
