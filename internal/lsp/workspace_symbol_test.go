package lsp

import (
	"testing"

	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func workspaceSymbols(t *testing.T, query string) []protocol.SymbolInformation {
	t.Helper()

	symbols, err := WorkspaceSymbol(nil, &protocol.WorkspaceSymbolParams{Query: query})
	require.NoError(t, err)

	return symbols
}

func TestWorkspaceSymbol(t *testing.T) {
	srv := newTestServer(t)
	srv.SetIndexReady(true)
	openDocument(t, mainURI, mainDoc)

	symbols := workspaceSymbols(t, "Add")
	require.NotEmpty(t, symbols)

	var add *protocol.SymbolInformation
	for i := range symbols {
		if symbols[i].Name == "Add" {
			add = &symbols[i]
		}
	}
	require.NotNil(t, add)
	assert.Equal(t, protocol.SymbolKindFunction, add.Kind)
	assert.Equal(t, mainURI, add.Location.URI)
	require.NotNil(t, add.ContainerName)
	assert.Equal(t, "SCRIPT:1", *add.ContainerName)

	assert.Empty(t, workspaceSymbols(t, "NoSuchSymbol"))
}

func TestWorkspaceSymbol_FallbackBeforeIndexReady(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, afero.WriteFile(srv.Fs(), "/ws/lib.cpp", []byte("SCRIPT:42,Disk\nENDSCRIPT\n"), 0o644))
	srv.SetWorkspaceFolders([]string{"file:///ws"})

	symbols := workspaceSymbols(t, "SCRIPT:42")
	require.Len(t, symbols, 1)
	assert.Equal(t, "file:///ws/lib.cpp", symbols[0].Location.URI)

	srv.SetIndexReady(true)
	assert.Empty(t, workspaceSymbols(t, "SCRIPT:42"), "a ready index is not supplemented")
}

func TestMergeSymbols(t *testing.T) {
	at := func(name, uri string, line uint32) workspace.SymbolLocation {
		return workspace.SymbolLocation{
			Name:     name,
			Location: protocol.Location{URI: uri, Range: rng(line, 0, line, 1)},
		}
	}

	base := []workspace.SymbolLocation{at("A", "file:///a", 1)}
	extra := []workspace.SymbolLocation{
		at("A", "file:///a", 1),
		at("A", "file:///a", 2),
		at("B", "file:///b", 1),
		at("B", "file:///b", 1),
	}

	merged := mergeSymbols(base, extra, 10)
	require.Len(t, merged, 3)
	assert.Equal(t, uint32(2), merged[1].Location.Range.Start.Line)
	assert.Equal(t, "B", merged[2].Name)

	limited := mergeSymbols([]workspace.SymbolLocation{at("A", "file:///a", 1)}, extra, 2)
	assert.Len(t, limited, 2)
}
