package lsp

import (
	"fmt"
	"log"
	"sort"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Completion handles the textDocument/completion request.
//
// After "<receiver>." the parser functions of the receiver type are
// offered, after "Call:" the user functions, and everywhere else the
// variables visible at the cursor.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	srv, ok := getServer("Completion")
	if !ok {
		return nil, nil
	}

	uri := params.TextDocument.URI
	log.Printf("Completion request at %s line %d, character %d\n",
		uri, params.Position.Line, params.Position.Character)

	r, ok := newRequest(srv, uri, params.Position)
	if !ok {
		return emptyCompletionList(), nil
	}

	info := r.cursor(true)

	var items []protocol.CompletionItem

	switch info.Kind {
	case analysis.CursorParserFunction:
		items = r.parserFunctionItems(info)
	case analysis.CursorUserFunction:
		items = r.userFunctionItems()
	default:
		items = r.variableItems()
	}

	if items == nil {
		items = []protocol.CompletionItem{}
	}

	log.Printf("Returning %d completion items\n", len(items))

	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func emptyCompletionList() *protocol.CompletionList {
	return &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}
}

func (r *request) parserFunctionItems(info analysis.CursorInfo) []protocol.CompletionItem {
	var si *analysis.ScriptInformation
	if !analysis.IsNamespace(info.Context) {
		_, si = r.analyze()
	}

	receiver, ok := analysis.ReceiverType(info, si)
	if !ok {
		return nil
	}

	snippets := r.srv.SupportsSnippets()

	var items []protocol.CompletionItem
	for _, sig := range r.srv.Builtins().Functions(receiver) {
		items = append(items, signatureItem(sig, snippets))
	}

	return items
}

func signatureItem(sig *builtins.Signature, snippets bool) protocol.CompletionItem {
	kind := protocol.CompletionItemKindMethod
	if analysis.IsNamespace(sig.Context) {
		kind = protocol.CompletionItemKindFunction
	}

	detail := sig.ReturnType + " " + sig.Name + "(" + sig.ParameterList() + ")"
	doc := markdown(sig.Markdown())

	item := protocol.CompletionItem{
		Label:         sig.Name,
		Kind:          &kind,
		Detail:        &detail,
		Documentation: doc,
	}

	if snippets && sig.InsertText != "" {
		format := protocol.InsertTextFormatSnippet
		insert := sig.InsertText
		item.InsertText = &insert
		item.InsertTextFormat = &format
	}

	return item
}

func (r *request) userFunctionItems() []protocol.CompletionItem {
	_, si := r.analyze()
	if si == nil {
		return nil
	}

	names := si.Functions()
	sort.Strings(names)

	kind := protocol.CompletionItemKindFunction

	var items []protocol.CompletionItem
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		item := protocol.CompletionItem{
			Label:            name,
			Kind:             &kind,
			CommitCharacters: []string{"("},
		}

		if defs := r.functionDefinitions(name); len(defs) > 0 {
			detail := defs[0].Detail
			item.Detail = &detail
			item.Documentation = markdown(codeBlock("return " + name))
		}

		items = append(items, item)
	}

	return items
}

// variableItems returns the visible variables, innermost frame first. The
// list is cached for the current line of the session.
func (r *request) variableItems() []protocol.CompletionItem {
	line := r.pos.Line
	if items, ok := r.session.Completion.Get(line); ok {
		return items
	}

	s, si := r.analyze()
	if s == nil || si == nil {
		return nil
	}

	var items []protocol.CompletionItem
	seen := map[string]bool{}

	frames := si.Scopes.Frames()
	for i := len(frames) - 1; i >= 0; i-- {
		for _, v := range frames[i].Ordered() {
			if seen[v.Name] {
				continue
			}
			seen[v.Name] = true

			items = append(items, variableItem(v))
		}
	}

	// predeclared constants go last
	sort.SliceStable(items, func(i, j int) bool {
		return *items[i].Kind != protocol.CompletionItemKindConstant &&
			*items[j].Kind == protocol.CompletionItemKindConstant
	})

	r.session.Completion.Set(line, items)

	return items
}

func variableItem(v *analysis.Variable) protocol.CompletionItem {
	kind := protocol.CompletionItemKindVariable
	detail := fmt.Sprintf("%s %s defined in script %d", v.Type, v.Name, v.Script)

	if v.Token == nil {
		kind = protocol.CompletionItemKindConstant
		detail = fmt.Sprintf("%s %s (predefined)", v.Type, v.Name)
	}

	return protocol.CompletionItem{
		Label:  v.Name,
		Kind:   &kind,
		Detail: &detail,
	}
}
