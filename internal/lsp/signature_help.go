package lsp

import (
	"log"
	"strings"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SignatureHelp handles textDocument/signatureHelp requests. The active
// parameter is the number of top-level commas between the opening
// parenthesis of the enclosing call and the cursor.
func SignatureHelp(context *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	srv, ok := getServer("SignatureHelp")
	if !ok {
		return nil, nil
	}

	uri := params.TextDocument.URI
	log.Printf("SignatureHelp request: URI=%s, Line=%d, Character=%d\n", uri, params.Position.Line, params.Position.Character)

	r, ok := newRequest(srv, uri, params.Position)
	if !ok {
		return nil, nil
	}

	open, active, ok := enclosingCall(r.text, r.offset)
	if !ok || open == 0 {
		return nil, nil
	}

	info := analysis.ResolveCursor(r.text, open-1, false)

	var sig *protocol.SignatureInformation

	switch info.Kind {
	case analysis.CursorUserFunction, analysis.CursorVariable:
		sig = r.userSignature(strings.TrimSpace(strings.TrimPrefix(info.Word, "Call:")))
	case analysis.CursorParserFunction:
		sig = r.parserSignature(info)
	}

	if sig == nil {
		return nil, nil
	}

	activeParameter := protocol.UInteger(active)
	activeSignature := protocol.UInteger(0)

	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{*sig},
		ActiveSignature: &activeSignature,
		ActiveParameter: &activeParameter,
	}, nil
}

// enclosingCall finds the unmatched '(' before offset on the same
// statement and counts the top-level commas between it and offset.
// Strings and nested parentheses are skipped.
func enclosingCall(text string, offset int) (open, commas int, ok bool) {
	offset = min(offset, len(text))

	// scan forward from the statement start so quotes are tracked correctly
	start := strings.LastIndexAny(text[:offset], ";{}") + 1

	var stack []int
	var counts []int
	inString := false

	for i := start; i < offset; i++ {
		c := text[i]

		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '(':
			stack = append(stack, i)
			counts = append(counts, 0)
		case ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				counts = counts[:len(counts)-1]
			}
		case ',':
			if len(counts) > 0 {
				counts[len(counts)-1]++
			}
		}
	}

	if len(stack) == 0 {
		return 0, 0, false
	}

	return stack[len(stack)-1], counts[len(counts)-1], true
}

// userFunction returns the declaration of name visible from s together with
// the text it was found in.
func userFunction(s *script.Script, name string) (script.FunctionDecl, string, bool) {
	for cur := s; cur != nil; cur = cur.MainScript {
		if decl, ok := script.FindFunction(cur.Text, name); ok {
			return decl, cur.Text, true
		}

		for _, inc := range cur.IncludedScripts {
			if decl, ok := script.FindFunction(inc.Text, name); ok {
				return decl, inc.Text, true
			}
		}
	}

	return script.FunctionDecl{}, "", false
}

func (r *request) userSignature(name string) *protocol.SignatureInformation {
	if name == "" {
		return nil
	}

	decl, text, ok := userFunction(r.script(false, false), name)
	if !ok {
		defs := r.functionDefinitions(name)
		if len(defs) == 0 {
			return nil
		}

		if text, ok = r.corpus.Text(defs[0].Location.URI); !ok {
			return nil
		}

		offset := document.OffsetAt(text, defs[0].Location.Range.Start)
		found := false
		for _, d := range script.Functions(text) {
			if d.NameStart == offset {
				decl, found = d, true
				break
			}
		}

		if !found {
			return nil
		}
	}

	parameters := make([]protocol.ParameterInformation, len(decl.Parameters))
	for i, p := range decl.Parameters {
		parameters[i] = protocol.ParameterInformation{Label: p}
	}

	doc := strings.Join(decl.Parameters, "\n")
	if comment := script.DocComment(text, decl.Start); comment != "" {
		doc += "\n" + comment
	}

	return &protocol.SignatureInformation{
		Label:         decl.Signature(),
		Documentation: markdown(codeBlock(doc)),
		Parameters:    parameters,
	}
}

func (r *request) parserSignature(info analysis.CursorInfo) *protocol.SignatureInformation {
	var si *analysis.ScriptInformation
	if !analysis.IsNamespace(info.Context) {
		_, si = r.analyze()
	}

	receiver, ok := analysis.ReceiverType(info, si)
	if !ok {
		return nil
	}

	sig, ok := r.srv.Builtins().Lookup(receiver, info.FunctionName())
	if !ok {
		return nil
	}

	return signatureInformation(sig)
}

func signatureInformation(sig *builtins.Signature) *protocol.SignatureInformation {
	parameters := make([]protocol.ParameterInformation, len(sig.Parameters))
	labels := make([]string, len(sig.Parameters))
	for i, p := range sig.Parameters {
		parameters[i] = protocol.ParameterInformation{Label: p.Label}
		labels[i] = p.Label
	}

	return &protocol.SignatureInformation{
		Label:         sig.Label() + "(" + strings.Join(labels, ", ") + ")",
		Documentation: markdown(sig.NotesMarkdown()),
		Parameters:    parameters,
	}
}
