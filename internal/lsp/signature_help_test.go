package lsp

import (
	"testing"

	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestEnclosingCall(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		open   int
		commas int
		ok     bool
	}{
		{"first argument", "Foo(", 3, 0, true},
		{"nested call closed", `Foo(a, "x,y", Bar(1, 2), `, 3, 3, true},
		{"inside nested call", "Foo(a, Bar(1, ", 10, 1, true},
		{"escaped quote", `Foo("a\"b,", `, 3, 1, true},
		{"statement boundary", "x(1, 2); Foo(1", 12, 0, true},
		{"closed call", "Foo(1)", 0, 0, false},
		{"after statement", "Foo(1, 2); Bar", 0, 0, false},
		{"empty", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, commas, ok := enclosingCall(tt.text, len(tt.text))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.open, open)
				assert.Equal(t, tt.commas, commas)
			}
		})
	}
}

func signatureHelpAt(t *testing.T, pos protocol.Position) *protocol.SignatureHelp {
	t.Helper()

	help, err := SignatureHelp(nil, &protocol.SignatureHelpParams{TextDocumentPositionParams: textDocumentPosition(mainURI, pos)})
	require.NoError(t, err)

	return help
}

func TestSignatureHelp_ParserFunction(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	help := signatureHelpAt(t, positionOf(t, mainDoc, `"a")`, 0))
	require.NotNil(t, help)
	require.Len(t, help.Signatures, 1)

	sig := help.Signatures[0]
	assert.Equal(t, "CTable Select(CString strTable (required), CString strWhere (required), int nMax)", sig.Label)
	require.Len(t, sig.Parameters, 3)
	assert.Equal(t, "CString strWhere (required)", sig.Parameters[1].Label)

	require.NotNil(t, help.ActiveSignature)
	assert.Equal(t, protocol.UInteger(0), *help.ActiveSignature)
	require.NotNil(t, help.ActiveParameter)
	assert.Equal(t, protocol.UInteger(1), *help.ActiveParameter)
}

func TestSignatureHelp_UserFunction(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	help := signatureHelpAt(t, positionOf(t, mainDoc, "Call:Add(", 9))
	require.NotNil(t, help)
	require.Len(t, help.Signatures, 1)

	sig := help.Signatures[0]
	assert.Equal(t, "int Add(int nA, int nB)", sig.Label)
	require.Len(t, sig.Parameters, 2)
	assert.Equal(t, "int nA", sig.Parameters[0].Label)
	assert.Equal(t, protocol.UInteger(0), *help.ActiveParameter)

	doc, ok := sig.Documentation.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Contains(t, doc.Value, "Adds two numbers")
}

func TestSignatureHelp_IncludedFunction(t *testing.T) {
	newTestServer(t)
	doc := "SCRIPT:1,A\n#includescript 2\nCall:Lib(1, \nENDSCRIPT\nSCRIPT:2,B\nFUNCTION:void Lib(int nA, int nB);\nENDFUNCTION;\nENDSCRIPT\n"
	openDocument(t, mainURI, doc)

	help := signatureHelpAt(t, positionOf(t, doc, "Call:Lib(1, ", 12))
	require.NotNil(t, help)
	assert.Equal(t, "void Lib(int nA, int nB)", help.Signatures[0].Label)
	assert.Equal(t, protocol.UInteger(1), *help.ActiveParameter)
}

func TestSignatureHelp_None(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	assert.Nil(t, signatureHelpAt(t, positionOf(t, mainDoc, "int nCount", 4)))
}

func TestSignatureHelp_UnknownParserFunction(t *testing.T) {
	srv := newTestServer(t)
	openDocument(t, mainURI, mainDoc)
	srv.Builtins().Replace(builtins.NewTable())

	assert.Nil(t, signatureHelpAt(t, positionOf(t, mainDoc, "Select(", 7)))
}
