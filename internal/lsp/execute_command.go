package lsp

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/CWBudde/futurec-lsp/internal/server"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Commands served by workspace/executeCommand.
const (
	CommandCollectStatistics  = "futurec.collectStatistics"
	CommandScriptNumber       = "futurec.scriptNumber"
	CommandInsertionPoint     = "futurec.insertionPoint"
	CommandDiagnoseAllScripts = "futurec.diagnoseAllScripts"
)

// documentArgs is the first argument of every command.
type documentArgs struct {
	URI      string             `json:"uri"`
	Position *protocol.Position `json:"position,omitempty"`

	// insertionPoint only
	Number *int   `json:"number,omitempty"`
	Hook   string `json:"hook,omitempty"`
	// Hooks are the marker comments of the main script, used to keep hook
	// blocks in marker order.
	Hooks []string `json:"hooks,omitempty"`
}

// InsertionPoint is the result of futurec.insertionPoint.
type InsertionPoint struct {
	Script protocol.Position `json:"script"`
	TOC    protocol.Position `json:"toc"`

	// Hook is set when a hook name was given.
	Hook       *protocol.Position `json:"hook,omitempty"`
	HookExists bool               `json:"hookExists"`
}

// ExecuteCommand handles workspace/executeCommand.
func ExecuteCommand(context *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	srv, ok := getServer("ExecuteCommand")
	if !ok {
		return nil, nil
	}

	args, err := decodeArgs(params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", params.Command, err)
	}

	log.Printf("ExecuteCommand %s for %s\n", params.Command, args.URI)

	switch params.Command {
	case CommandCollectStatistics:
		return CollectStatistics(srv.Corpus(), srv.Builtins(), args.URI), nil

	case CommandScriptNumber:
		return scriptNumber(srv, args), nil

	case CommandInsertionPoint:
		return insertionPoint(srv, args)

	case CommandDiagnoseAllScripts:
		diagnostics := DiagnoseDocument(srv.Corpus(), srv.Builtins(), args.URI, true)
		PublishDiagnostics(context, args.URI, diagnostics)

		return diagnostics, nil
	}

	return nil, fmt.Errorf("unknown command %q", params.Command)
}

// decodeArgs reads the command arguments. The first argument is either an
// object or a bare document URI.
func decodeArgs(arguments []any) (documentArgs, error) {
	var args documentArgs
	if len(arguments) == 0 {
		return args, fmt.Errorf("missing arguments")
	}

	if uri, ok := arguments[0].(string); ok {
		args.URI = uri
		return args, nil
	}

	raw, err := json.Marshal(arguments[0])
	if err != nil {
		return args, fmt.Errorf("encoding arguments: %w", err)
	}

	if err := json.Unmarshal(raw, &args); err != nil {
		return args, fmt.Errorf("decoding arguments: %w", err)
	}

	if args.URI == "" {
		return args, fmt.Errorf("missing uri")
	}

	return args, nil
}

// CollectStatistics analyzes every script of uri and returns the
// parser-function usage by receiver type and function name.
func CollectStatistics(corpus script.Corpus, registry builtins.Registry, uri string) map[string]map[string]analysis.FunctionUsage {
	stats := analysis.NewStatistics()
	analyzer := analysis.NewAnalyzer(corpus, registry, analysis.WithStatistics(stats))

	for _, s := range script.All(corpus, uri) {
		analyzer.Analyze(s)
	}

	return stats.Usage()
}

// scriptNumber returns the number of the script at the given position, or
// nil outside of any script.
func scriptNumber(srv *server.Server, args documentArgs) any {
	text, ok := srv.Corpus().Text(args.URI)
	if !ok || args.Position == nil {
		return nil
	}

	offset := document.OffsetAt(text, *args.Position)
	for _, h := range script.Headers(text) {
		if h.Start <= offset && offset <= h.End {
			return h.Number
		}
	}

	return nil
}

func insertionPoint(srv *server.Server, args documentArgs) (any, error) {
	text, ok := srv.Corpus().Text(args.URI)
	if !ok {
		return nil, fmt.Errorf("document not found: %s", args.URI)
	}

	if args.Number == nil {
		return nil, fmt.Errorf("missing script number")
	}

	number := *args.Number
	if number < 0 || number > script.MaxScriptNumber {
		return nil, fmt.Errorf("script number %d out of range", number)
	}

	lines := document.NewLineIndex(text)
	result := InsertionPoint{
		Script: lines.PositionAt(script.FindInsertionPointForScript(text, number, args.Hooks)),
		TOC:    lines.PositionAt(script.FindInsertionPointForTOC(text, number, args.Hooks)),
	}

	if args.Hook != "" {
		offset, exists := script.FindInsertionPointForHook(text, number, args.Hook)
		pos := lines.PositionAt(offset)
		result.Hook = &pos
		result.HookExists = exists
	}

	return result, nil
}
