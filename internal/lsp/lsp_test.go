package lsp

import (
	"strings"
	"sync"
	"testing"

	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/server"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	mainURI  = "file:///ws/main.cpp"
	otherURI = "file:///ws/other.cpp"
)

const mainDoc = `1 Main
2 Lib

SCRIPT:1,Main
#includescript 2
int nCount;
CString strName;
nCount = nLib;
strName = "x";
S.Select("T", "a");
// Adds two numbers
FUNCTION:int Add(int nA, int nB);
	funcreturn nA;
ENDFUNCTION;
Call:Add(nCount, 2);
//ADDHOOK-1-AfterInit
ENDSCRIPT
SCRIPT:2,Lib
int nLib;
ENDSCRIPT
INSERTINTOSCRIPT:1,//ADDHOOK-1-AfterInit
nCount = 2;
ENDSCRIPT
`

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	srv := server.NewWithFs(afero.NewMemMapFs())
	srv.Builtins().Add("S", &builtins.Signature{
		Name:       "Select",
		ReturnType: "CTable",
		Parameters: []builtins.Parameter{
			{Label: "CString strTable (required)", Required: true},
			{Label: "CString strWhere (required)", Required: true},
			{Label: "int nMax"},
		},
		Notes:      []string{"Selects the rows matching strWhere."},
		InsertText: "Select(${1:strTable}, ${2:strWhere})",
	})
	srv.Builtins().Add("CString", &builtins.Signature{Name: "GetLength", ReturnType: "int"})

	SetServer(srv)
	t.Cleanup(func() { SetServer(nil) })

	return srv
}

func openDocument(t *testing.T, uri, text string) {
	t.Helper()

	require.NoError(t, DidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "futurec",
			Version:    1,
			Text:       text,
		},
	}))
}

// positionOf returns the position delta bytes after the first occurrence
// of needle in text.
func positionOf(t *testing.T, text, needle string, delta int) protocol.Position {
	t.Helper()

	i := strings.Index(text, needle)
	require.GreaterOrEqual(t, i, 0, "%q not found", needle)

	return document.PositionAt(text, i+delta)
}

func textDocumentPosition(uri string, pos protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     pos,
	}
}

type recorder struct {
	mu          sync.Mutex
	diagnostics map[string][]protocol.Diagnostic
	count       int
}

func newRecorder() (*glsp.Context, *recorder) {
	rec := &recorder{diagnostics: map[string][]protocol.Diagnostic{}}

	ctx := &glsp.Context{Notify: func(method string, params any) {
		if method != protocol.ServerTextDocumentPublishDiagnostics {
			return
		}

		p := params.(*protocol.PublishDiagnosticsParams)

		rec.mu.Lock()
		defer rec.mu.Unlock()

		rec.diagnostics[p.URI] = p.Diagnostics
		rec.count++
	}}

	return ctx, rec
}

func (r *recorder) get(uri string) ([]protocol.Diagnostic, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.diagnostics[uri]

	return d, ok
}

func rng(sl, sc, el, ec uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: sl, Character: sc},
		End:   protocol.Position{Line: el, Character: ec},
	}
}
