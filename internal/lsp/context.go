package lsp

import (
	"log"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/CWBudde/futurec-lsp/internal/server"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// serverInstance holds the server state shared by all handlers. It is set
// once by SetServer before the transport starts.
var serverInstance any

// SetServer sets the server instance for handlers to access.
func SetServer(srv any) {
	serverInstance = srv
}

func getServer(handler string) (*server.Server, bool) {
	srv, ok := serverInstance.(*server.Server)
	if !ok || srv == nil {
		log.Printf("Warning: server instance not available in %s\n", handler)
		return nil, false
	}

	return srv, true
}

// request is a position request against one open document.
type request struct {
	srv     *server.Server
	uri     string
	text    string
	lines   *document.LineIndex
	offset  int
	pos     protocol.Position
	corpus  *server.Corpus
	session *server.Session
}

func newRequest(srv *server.Server, uri string, pos protocol.Position) (*request, bool) {
	doc, ok := srv.Documents().Get(uri)
	if !ok {
		log.Printf("Document not found: %s\n", uri)
		return nil, false
	}

	lines := document.NewLineIndex(doc.Text)

	return &request{
		srv:     srv,
		uri:     uri,
		text:    doc.Text,
		lines:   lines,
		offset:  lines.OffsetAt(pos),
		pos:     pos,
		corpus:  srv.Corpus(),
		session: srv.Sessions().Get(uri),
	}, true
}

// script extracts the script under the cursor.
func (r *request) script(toCursor, inline bool) *script.Script {
	return script.Extract(r.corpus, r.uri, r.offset, script.ExtractOptions{
		ToCursor: toCursor,
		Inline:   inline,
		Cache:    r.session.MainScripts,
	})
}

// analyze runs the analyzer over the script under the cursor, cut at the
// cursor, so that the final scope state is what is visible there.
func (r *request) analyze() (*script.Script, *analysis.ScriptInformation) {
	s := r.script(true, false)
	if s == nil {
		return nil, nil
	}

	return s, analysis.NewAnalyzer(r.corpus, r.srv.Builtins()).Analyze(s)
}

func (r *request) cursor(functionCompletion bool) analysis.CursorInfo {
	return analysis.ResolveCursor(r.text, r.offset, functionCompletion)
}

// wordRange is the range of the cursor word on the request's document.
func (r *request) wordRange(info analysis.CursorInfo) protocol.Range {
	return protocol.Range{
		Start: r.lines.PositionAt(info.Offset),
		End:   r.lines.PositionAt(info.Offset + len(info.Word)),
	}
}

func markdown(value string) protocol.MarkupContent {
	return protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: value}
}
