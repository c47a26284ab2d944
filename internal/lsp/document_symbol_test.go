package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDocumentSymbol(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	result, err := DocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: mainURI},
	})
	require.NoError(t, err)

	symbols, ok := result.([]protocol.DocumentSymbol)
	require.True(t, ok, "unexpected result type %T", result)
	require.Len(t, symbols, 3)

	tests := []struct {
		name      string
		kind      protocol.SymbolKind
		detail    string
		startLine uint32
		endLine   uint32
		children  []string
	}{
		{"SCRIPT:1", protocol.SymbolKindModule, "Main", 3, 16, []string{"ADDHOOK-1-AfterInit", "Add"}},
		{"SCRIPT:2", protocol.SymbolKindModule, "Lib", 17, 19, nil},
		{"INSERTINTOSCRIPT:1", protocol.SymbolKindEvent, "//ADDHOOK-1-AfterInit", 20, 22, nil},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym := symbols[i]
			assert.Equal(t, tt.name, sym.Name)
			assert.Equal(t, tt.kind, sym.Kind)
			require.NotNil(t, sym.Detail)
			assert.Equal(t, tt.detail, *sym.Detail)
			assert.Equal(t, tt.startLine, sym.Range.Start.Line)
			assert.Equal(t, tt.endLine, sym.Range.End.Line)
			assert.Equal(t, tt.startLine, sym.SelectionRange.End.Line)

			var children []string
			for _, child := range sym.Children {
				children = append(children, child.Name)
			}
			assert.ElementsMatch(t, tt.children, children)
		})
	}

	for _, child := range symbols[0].Children {
		if child.Name == "Add" {
			assert.Equal(t, protocol.SymbolKindFunction, child.Kind)
			assert.Equal(t, rng(11, 13, 11, 16), child.Range)
			require.NotNil(t, child.Detail)
			assert.Equal(t, "int Add(int nA, int nB)", *child.Detail)
		}
	}
}

func TestDocumentSymbol_Empty(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, "// nothing here\n")

	for _, uri := range []string{mainURI, otherURI} {
		result, err := DocumentSymbol(nil, &protocol.DocumentSymbolParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		})
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.NotNil(t, result)
	}
}

func TestContains(t *testing.T) {
	r := rng(2, 4, 5, 1)

	tests := []struct {
		pos  protocol.Position
		want bool
	}{
		{protocol.Position{Line: 2, Character: 4}, true},
		{protocol.Position{Line: 3, Character: 0}, true},
		{protocol.Position{Line: 5, Character: 1}, true},
		{protocol.Position{Line: 2, Character: 3}, false},
		{protocol.Position{Line: 5, Character: 2}, false},
		{protocol.Position{Line: 1, Character: 9}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, contains(r, tt.pos), "%+v", tt.pos)
	}
}
