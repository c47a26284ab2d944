package lsp

import (
	"log"
	"sort"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// PublishDiagnostics sends diagnostic information to the client for a specific document.
func PublishDiagnostics(context *glsp.Context, uri string, diagnostics []protocol.Diagnostic) {
	if context == nil || context.Notify == nil {
		log.Println("Warning: Cannot publish diagnostics - context or Notify is nil")
		return
	}

	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	sortDiagnostics(diagnostics)

	params := &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	}

	log.Printf("Publishing %d diagnostic(s) for %s", len(diagnostics), uri)

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

// sortDiagnostics sorts diagnostics by position (line first, then column).
func sortDiagnostics(diagnostics []protocol.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		if diagnostics[i].Range.Start.Line != diagnostics[j].Range.Start.Line {
			return diagnostics[i].Range.Start.Line < diagnostics[j].Range.Start.Line
		}

		return diagnostics[i].Range.Start.Character < diagnostics[j].Range.Start.Character
	})
}

// limitDiagnostics keeps the first limit diagnostics in document order.
// limit <= 0 means no limit.
func limitDiagnostics(diagnostics []protocol.Diagnostic, limit int) []protocol.Diagnostic {
	sortDiagnostics(diagnostics)

	if limit > 0 && len(diagnostics) > limit {
		return diagnostics[:limit]
	}

	return diagnostics
}

// DiagnoseScript analyzes the script enclosing offset.
func DiagnoseScript(corpus script.Corpus, registry builtins.Registry, uri string, offset int, cache *script.MainScriptCache) []protocol.Diagnostic {
	s := script.Extract(corpus, uri, offset, script.ExtractOptions{Cache: cache})
	if s == nil {
		return []protocol.Diagnostic{}
	}

	return analysis.NewAnalyzer(corpus, registry).Analyze(s).Diagnostics
}

// DiagnoseDocument analyzes every script of uri. With errorsOnly set, only
// Error findings are kept.
func DiagnoseDocument(corpus script.Corpus, registry builtins.Registry, uri string, errorsOnly bool) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	for _, s := range script.All(corpus, uri) {
		for _, d := range analysis.NewAnalyzer(corpus, registry).Analyze(s).Diagnostics {
			if errorsOnly && (d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError) {
				continue
			}

			diagnostics = append(diagnostics, d)
		}
	}

	sortDiagnostics(diagnostics)

	return diagnostics
}
