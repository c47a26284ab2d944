package lsp

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// maxUsageLines caps the usage listing of a variable hover.
const maxUsageLines = 20

var endScriptLine = regexp.MustCompile(`(?m)^[ \t]*ENDSCRIPT.*$`)

// tableNotes describes the predeclared table variables.
var tableNotes = map[string]string{
	"m_Rec":   "The current record of the table the script runs on.",
	"m_Rec2":  "The second record handed to the script, e.g. the previous state of m_Rec.",
	"m_TabNr": "The number of the table the script runs on.",
}

// Hover handles the textDocument/hover request.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	srv, ok := getServer("Hover")
	if !ok {
		return nil, nil
	}

	log.Printf("Hover request at %s line %d, character %d\n",
		params.TextDocument.URI, params.Position.Line, params.Position.Character)

	r, ok := newRequest(srv, params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}

	info := r.cursor(false)
	if !info.Valid() {
		return nil, nil
	}

	var content string

	switch info.Kind {
	case analysis.CursorUserFunction:
		content = r.hoverUserFunction(info.FunctionName())
	case analysis.CursorIncludeScript:
		content = r.hoverInclude(info.Word)
	case analysis.CursorAddHook:
		content = r.hoverHook(info.Word)
	case analysis.CursorParserFunction:
		content = r.hoverParserFunction(info)
	case analysis.CursorVariable:
		content = r.hoverVariable(info.Word)
	}

	if content == "" {
		return nil, nil
	}

	rng := r.wordRange(info)

	return &protocol.Hover{Contents: markdown(content), Range: &rng}, nil
}

func codeBlock(text string) string {
	return "```futurec\n" + strings.TrimRight(text, "\n") + "\n```"
}

func overloads(n int) string {
	if n <= 1 {
		return ""
	}

	return fmt.Sprintf("\n\n(+%d overloads)", n-1)
}

func (r *request) hoverUserFunction(name string) string {
	defs := r.functionDefinitions(name)
	if len(defs) == 0 {
		return ""
	}

	text, ok := r.corpus.Text(defs[0].Location.URI)
	if !ok {
		return ""
	}

	offset := document.OffsetAt(text, defs[0].Location.Range.Start)
	for _, decl := range script.Functions(text) {
		if decl.NameStart != offset {
			continue
		}

		var sb strings.Builder
		if doc := script.DocComment(text, decl.Start); doc != "" {
			sb.WriteString("// " + strings.ReplaceAll(doc, "\n", "\n// ") + "\n")
		}
		sb.WriteString("FUNCTION:" + decl.Signature())

		return codeBlock(sb.String()) + overloads(len(defs))
	}

	return ""
}

// headerPreview returns the lines above the header at offset back to the
// previous ENDSCRIPT, the header line and, with body set, the first line
// of the body.
func headerPreview(text string, offset int, body bool) string {
	start := 0
	for _, loc := range endScriptLine.FindAllStringIndex(text[:offset], -1) {
		start = loc[1]
	}

	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return strings.TrimSpace(text[start:])
	}
	end += offset

	if body {
		if next := strings.IndexByte(text[end+1:], '\n'); next >= 0 {
			end += 1 + next
		} else {
			end = len(text)
		}
	}

	return strings.TrimSpace(text[start:end])
}

func (r *request) hoverInclude(word string) string {
	number := 0
	if _, err := fmt.Sscan(word, &number); err != nil {
		return ""
	}

	defs := r.scriptDefinitions(number)
	if len(defs) == 0 {
		return fmt.Sprintf("Script %d not found", number)
	}

	text, ok := r.corpus.Text(defs[0].URI)
	if !ok {
		return ""
	}

	offset := document.NewLineIndex(text).LineStart(int(defs[0].Range.Start.Line))

	return codeBlock(wordwrap.String(headerPreview(text, offset, true), 80)) + overloads(len(defs))
}

func (r *request) hoverHook(name string) string {
	number, ok := r.currentNumber()
	if !ok {
		return ""
	}

	defs := r.hookDefinitions(number, name)
	if len(defs) == 0 {
		return fmt.Sprintf("No %s block for %s", workspace.HeaderSymbol(script.TypeInsert, number), name)
	}

	text, ok := r.corpus.Text(defs[0].Location.URI)
	if !ok {
		return ""
	}

	offset := document.NewLineIndex(text).LineStart(int(defs[0].Location.Range.Start.Line))

	return codeBlock(headerPreview(text, offset, false)) + overloads(len(defs))
}

func (r *request) hoverParserFunction(info analysis.CursorInfo) string {
	_, si := r.analyze()

	receiver, ok := analysis.ReceiverType(info, si)
	if !ok {
		return "Function not found"
	}

	sig, ok := r.srv.Builtins().Lookup(receiver, info.FunctionName())
	if !ok {
		return "Function not found"
	}

	return codeBlock(sig.ReturnType+" "+receiver+"."+sig.Name+"("+sig.ParameterList()+")") + "\n\n" + sig.Markdown()
}

func (r *request) hoverVariable(word string) string {
	s, si := r.analyze()
	if s == nil {
		return ""
	}

	v, ok := si.LookupVariable(word)
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(codeBlock(v.Type + " " + v.Name))

	if note, ok := tableNotes[v.Name]; ok {
		sb.WriteString("\n\n" + note)
	}

	if v.Script != 0 && v.Script != s.Number {
		fmt.Fprintf(&sb, "\n\nDefined in script %d", v.Script)
	}

	usages, cyclic := r.usageLines(word)
	if len(usages) > 0 {
		sb.WriteString("\n\n## Usages: " + word + "\n\n")
		sb.WriteString(codeBlock(strings.Join(usages, "\n")))
	}

	if cyclic {
		sb.WriteString("\n\nThe includescript directives form a cycle, usages may be incomplete")
	}

	return sb.String()
}

// usageLines lists the lines of the current script mentioning word, with
// its includes inlined, skipping comments and FUNCTION declarations. It
// also reports whether the inlining stopped at an include cycle.
func (r *request) usageLines(word string) ([]string, bool) {
	s := r.script(false, true)
	if s == nil {
		return nil, false
	}

	var lines []string
	seen := map[int]bool{}
	index := document.NewLineIndex(s.Text)

	for _, offset := range wordOccurrences(s.Text, word) {
		n := index.LineAt(offset)
		if seen[n] {
			continue
		}
		seen[n] = true

		line := strings.TrimSpace(index.Line(n))
		if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "FUNCTION:") {
			continue
		}

		lines = append(lines, line)
		if len(lines) == maxUsageLines {
			break
		}
	}

	return lines, s.Expansion.Cyclic
}
