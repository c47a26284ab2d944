// Package analysis implements the static checks of futurec scripts: a
// tokenizer, a scope-tracking analyzer and the cursor resolver used by
// hover, completion and navigation.
package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
)

// Source is the source field of every diagnostic.
const Source = "futurec"

// Diagnostic codes with a client-side meaning.
const (
	CodeHook             = 500
	CodeMissingSemicolon = 5000
)

// MessageMissingSemicolon is the message of CodeMissingSemicolon findings.
const MessageMissingSemicolon = "';' expected after '}'"

var (
	types      = wordSet("short BYTE BOOL void CTable CMoney CDateTime CString int double")
	keywords   = wordSet("return funcreturn if foreachrow foreachrowreverse while else OR AND")
	namespaces = wordSet("D P F S H")
	reserved   = wordSet("FUNCTION ENDFUNCTION Call includescript runscript runprintscript " + HookToken)
)

const controlChars = ";{}()=<>,!+-./*%§$"

func wordSet(words string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(words) {
		set[w] = true
	}

	return set
}

// IsType reports whether s is a type keyword.
func IsType(s string) bool { return types[s] }

// IsKeyword reports whether s is a statement or operator keyword.
func IsKeyword(s string) bool { return keywords[s] }

// IsNamespace reports whether s is one of the parser-function namespaces.
func IsNamespace(s string) bool { return namespaces[s] }

// IsControlChar reports whether s is a single operator or punctuation rune.
func IsControlChar(s string) bool {
	return s != "" && len([]rune(s)) == 1 && strings.Contains(controlChars, s)
}

func isLiteral(s string) bool {
	return s != "" && (s[0] == '"' || (s[0] >= '0' && s[0] <= '9'))
}

// IsVariable reports whether s can name a variable.
func IsVariable(s string) bool {
	if s == "" || isLiteral(s) || types[s] || keywords[s] || namespaces[s] || reserved[s] {
		return false
	}

	for _, r := range s {
		if !IsIdentifierRune(r) {
			return false
		}
	}

	return true
}

// continuesExpression reports whether s may follow an operand.
func continuesExpression(s string) bool {
	switch s {
	case "&", "|", "[", "]", ":", "?", "AND", "OR":
		return true
	}

	return IsControlChar(s)
}

func isConstantName(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}

// ScriptInformation is the state of the scope stack at the end of a run
// together with the diagnostics collected on the way.
type ScriptInformation struct {
	DefinedVariables []map[string]*Variable
	DefinedFunctions [][]string
	Diagnostics      []protocol.Diagnostic
	ScopeLevel       int

	Scopes *ScopeStack
}

func newScriptInformation(scopes *ScopeStack, diags []protocol.Diagnostic) *ScriptInformation {
	info := &ScriptInformation{
		Diagnostics: diags,
		ScopeLevel:  scopes.Depth(),
		Scopes:      scopes,
	}

	for _, f := range scopes.Frames() {
		info.DefinedVariables = append(info.DefinedVariables, f.Variables)
		info.DefinedFunctions = append(info.DefinedFunctions, f.Functions)
	}

	if info.Diagnostics == nil {
		info.Diagnostics = []protocol.Diagnostic{}
	}

	return info
}

// LookupVariable resolves name inner-wins against the final scope state.
func (si *ScriptInformation) LookupVariable(name string) (*Variable, bool) {
	if si == nil || si.Scopes == nil {
		return nil, false
	}

	return si.Scopes.Lookup(name)
}

// Functions lists every user function name visible at the end of the run.
func (si *ScriptInformation) Functions() []string {
	var names []string
	for _, fns := range si.DefinedFunctions {
		names = append(names, fns...)
	}

	return names
}

// Analyzer checks scripts against a document corpus and a parser-function
// registry. An Analyzer is not safe for concurrent use.
type Analyzer struct {
	corpus   script.Corpus
	registry builtins.Registry
	stats    *Statistics

	errors   int
	active   map[int]bool
	deferred map[int][]Token
	vm       *goja.Runtime
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStatistics collects parser-function usage into stats.
func WithStatistics(stats *Statistics) Option {
	return func(a *Analyzer) {
		a.stats = stats
	}
}

// NewAnalyzer creates an analyzer. registry may be nil, in which case no
// parser-function call is checked.
func NewAnalyzer(corpus script.Corpus, registry builtins.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{corpus: corpus, registry: registry}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze checks s on a fresh scope stack.
func (a *Analyzer) Analyze(s *script.Script) *ScriptInformation {
	a.errors = 0
	a.active = map[int]bool{}
	a.deferred = map[int][]Token{}

	scopes := NewScopeStack()
	DeclareStandardVariables(scopes)

	if s == nil {
		return newScriptInformation(scopes, nil)
	}

	if s.Type == script.TypeScript {
		a.active[s.Number] = true
	}

	diags := a.run(s, scopes, false)

	if s.Expansion.Cyclic {
		diags = append(diags, newDiagnostic(protocol.Range{Start: s.Position, End: s.Position},
			protocol.DiagnosticSeverityInformation, 0,
			"includescript directives form a cycle; the script could not be fully inlined"))
	}

	return newScriptInformation(scopes, diags)
}

// Errors returns the number of Error findings of the last run, including
// the suppressed ones of included scripts.
func (a *Analyzer) Errors() int {
	return a.errors
}

func (a *Analyzer) include(s *script.Script, scopes *ScopeStack) {
	inc := *s
	inc.IncludedScripts = append([]*script.Script(nil), s.IncludedScripts...)
	script.Expand(&inc, a.corpus, false)

	a.active[s.Number] = true
	defer delete(a.active, s.Number)

	a.run(&inc, scopes, true)
}

func (a *Analyzer) run(s *script.Script, scopes *ScopeStack, include bool) []protocol.Diagnostic {
	p := &pass{
		a:       a,
		s:       s,
		scopes:  scopes,
		include: include,
		lines:   document.NewLineIndex(s.Text),
		tokens: Tokenize(s.Text, TokenizeOptions{
			ScriptType:    string(s.Type),
			ScriptNumber:  s.Number,
			ExpandDefines: !include,
		}),
		hasIncludes: len(script.IncludeNumbers(s.Text)) > 0,
	}

	if main := s.MainScript; main != nil {
		before := a.errors

		a.active[main.Number] = true
		a.run(main, scopes, true)
		delete(a.active, main.Number)

		if n := a.errors - before; n > 0 {
			p.report(Range{}, protocol.DiagnosticSeverityInformation, fmt.Sprintf(
				"Mainscript %d has %d error(s) in it. Diagnostics after this point can only be trusted partially", main.Number, n))
		}
	}

	p.walk()

	return p.diags
}

func newDiagnostic(r protocol.Range, severity protocol.DiagnosticSeverity, code int, msg string) protocol.Diagnostic {
	source := Source
	d := protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}

	if code != 0 {
		d.Code = &protocol.IntegerOrString{Value: protocol.Integer(code)}
	}

	return d
}

// userFunction is the FUNCTION block being analyzed.
type userFunction struct {
	returnType string
	returned   bool
}

// pass is one walk over the tokens of a single script.
type pass struct {
	a       *Analyzer
	s       *script.Script
	scopes  *ScopeStack
	include bool
	lines   *document.LineIndex

	tokens      []Token
	hasIncludes bool
	fn          *userFunction

	// overrun is set once a look-ahead went past the last token.
	overrun bool

	diags []protocol.Diagnostic
}

// at returns token i, or the last token when i is past the end. Reading
// past the end marks the pass as overrun.
func (p *pass) at(i int) Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}

	p.overrun = true

	return p.tokens[len(p.tokens)-1]
}

func (p *pass) walk() {
	for i := 0; i < len(p.tokens) && !p.overrun; i++ {
		i = p.step(i)
	}

	if p.overrun {
		p.overrun = false

		if last := p.tokens[len(p.tokens)-1]; last.Text != ";" {
			p.report(last.Range, protocol.DiagnosticSeverityError, "Unexpected end of script: ';' expected")
		}
	}
}

func (p *pass) position(offset int) protocol.Position {
	pos := p.lines.PositionAt(offset)
	if pos.Line == 0 {
		pos.Character += p.s.Position.Character
	}
	pos.Line += p.s.Position.Line

	return pos
}

func (p *pass) report(r Range, severity protocol.DiagnosticSeverity, msg string) {
	p.reportCode(r, severity, 0, msg)
}

func (p *pass) reportCode(r Range, severity protocol.DiagnosticSeverity, code int, msg string) {
	if p.overrun {
		return
	}

	if severity == protocol.DiagnosticSeverityError {
		p.a.errors++
	}

	if p.include {
		return
	}

	p.diags = append(p.diags, newDiagnostic(protocol.Range{
		Start: p.position(r.Start),
		End:   p.position(r.End),
	}, severity, code, msg))
}

func (p *pass) errorf(tok Token, format string, args ...any) {
	p.report(tok.Range, protocol.DiagnosticSeverityError, fmt.Sprintf(format, args...))
}

// step handles token i and returns the index of the last token it consumed.
func (p *pass) step(i int) int {
	tok := p.tokens[i]

	switch text := tok.Text; {
	case strings.HasPrefix(text, `"`):
		return i
	case text == "ENDFUNCTION":
		return p.endFunction(i)
	case text == "FUNCTION":
		return p.function(i)
	case text == "Call":
		return p.call(i)
	case IsNamespace(text):
		return p.namespaceCall(i)
	case text == "}":
		return p.closeBlock(i)
	case text == "{":
		p.openBlock()
		return i
	case text == "§":
		return p.verbatim(i)
	case IsType(text):
		return p.declaration(i)
	case text == "funcreturn":
		return p.funcReturn(i)
	case text == "foreachrow", text == "foreachrowreverse":
		return p.foreach(i)
	case text == "#":
		return p.includeDirective(i)
	case text == "&", text == "|":
		if next := p.at(i + 1); next.Text == text {
			word := map[string]string{"&": "AND", "|": "OR"}[text]
			p.report(Range{tok.Range.Start, next.Range.End}, protocol.DiagnosticSeverityInformation,
				fmt.Sprintf("'%s%s' detected. Maybe use '%s' for clarity", text, text, word))
			return i + 1
		}
		return i
	case text == HookToken:
		return p.hook(i)
	case IsVariable(text):
		return p.identifier(i)
	}

	return i
}

func (p *pass) endFunction(i int) int {
	tok := p.tokens[i]

	if p.at(i+1).Text != ";" {
		p.errorf(tok, "After ENDFUNCTION must follow an ';'")
	}

	if fn := p.fn; fn != nil && !fn.returned && IsType(fn.returnType) && fn.returnType != "void" {
		p.errorf(tok, "Returntype != 'void', returntype must be of type '%s'", fn.returnType)
	}
	p.fn = nil

	if err := p.scopes.Pop(); err != nil {
		p.errorf(tok, "One 'ENDFUNCTION' is unexpected. You are already in the global scope")
	}

	return i
}

func (p *pass) function(i int) int {
	p.scopes.Push()

	if colon := p.at(i + 1); colon.Text != ":" {
		p.errorf(colon, "After FUNCTION must follow an ':'")
		return i
	}

	typ := p.at(i + 2)
	if !IsType(typ.Text) {
		p.errorf(typ, "Type (CString|int|double|CTable|CDateTime|CMoney|BOOL|void) was expected '%s'", typ.Text)
		return i + 1
	}
	p.fn = &userFunction{returnType: typ.Text}

	name := p.at(i + 3)
	if !IsVariable(name.Text) {
		p.errorf(name, "Functionname expected '%s'", name.Text)
		return i + 2
	}

	if p.scopes.HasFunction(name.Text) {
		p.report(name.Range, protocol.DiagnosticSeverityInformation, fmt.Sprintf("function '%s' already defined", name.Text))
	} else {
		p.scopes.DeclareFunction(p.scopes.Depth()-1, name.Text)
	}

	if open := p.at(i + 4); open.Text != "(" {
		p.errorf(open, "'(' expected '%s'", open.Text)
		return i + 3
	}

	j := i + 5
	if p.at(j).Text == ")" {
		return p.endOfParameters(j + 1)
	}

	for !p.overrun {
		ptype := p.at(j)
		if !IsType(ptype.Text) {
			p.errorf(ptype, "type expected '%s'", ptype.Text)
			return j - 1
		}

		j++
		if p.at(j).Text == "&" {
			j++
		}

		pname := p.at(j)
		if !IsVariable(pname.Text) {
			p.errorf(pname, "variablename expected '%s'", pname.Text)
			return j - 1
		}
		if _, dup := p.scopes.LookupCurrent(pname.Text); dup {
			p.errorf(pname, "Another parameter is already named like this '%s'", pname.Text)
			return j
		}
		p.declare(pname, ptype.Text)

		j++
		switch sep := p.at(j); sep.Text {
		case ")":
			return p.endOfParameters(j + 1)
		case ",":
			j++
		default:
			p.errorf(sep, "',' or ')' expected '%s'", sep.Text)
			return j - 1
		}
	}

	return j
}

// endOfParameters checks the ';' closing a FUNCTION declaration at j.
func (p *pass) endOfParameters(j int) int {
	if semi := p.at(j); semi.Text != ";" {
		p.errorf(p.at(j-1), "After Parameterlist in FUNCTION must follow an ';'")
		return j - 1
	}

	return j
}

func (p *pass) call(i int) int {
	colon := p.at(i + 1)
	if colon.Text != ":" {
		p.errorf(colon, "':' expected '%s'", colon.Text)
		return i
	}

	name := p.at(i + 2)
	if !p.scopes.HasFunction(name.Text) {
		p.report(name.Range, protocol.DiagnosticSeverityInformation, fmt.Sprintf(
			"No function with name '%s' found. Maybe this script gets included somewhere", name.Text))
	}

	return i + 2
}

func (p *pass) namespaceCall(i int) int {
	ns := p.tokens[i]

	if dot := p.at(i + 1); dot.Text != "." {
		p.errorf(dot, "'.' expected '%s'", dot.Text)
		return i
	}

	fn := p.at(i + 2)
	if !IsVariable(fn.Text) {
		p.errorf(fn, "Parserfunction expected '%s'", fn.Text)
		return i + 1
	}

	if open := p.at(i + 3); open.Text != "(" {
		p.errorf(open, "'(' expected '%s'", open.Text)
		return i + 2
	}

	if fn.Text == "IsVariableDefined" {
		arg := p.at(i + 4)
		if !IsVariable(arg.Text) {
			p.errorf(arg, "'%s' must be a variable", arg.Text)
			return i + 3
		}

		p.deferVariable(arg)
		if v, ok := p.scopes.Lookup(arg.Text); ok {
			v.MarkUsed()
		}

		return i + 4
	}

	return p.checkCall(i+3, ns.Text, ns.Text, fn)
}

// checkCall validates the argument list of a parser function opened at
// index open. It returns open so the arguments are walked normally.
func (p *pass) checkCall(open int, receiver, receiverType string, fn Token) int {
	if p.a.registry == nil {
		return open
	}

	sig, ok := p.a.registry.Lookup(receiverType, fn.Text)
	if !ok {
		if IsNamespace(receiver) {
			p.errorf(fn, "Function '%s' is not a parserfunction from the global namespace '%s'", fn.Text, receiver)
		} else {
			p.errorf(fn, "Function '%s' is not a parserfunction from instance '%s' of type '%s'", fn.Text, receiver, receiverType)
		}
		return open
	}

	args, first, closing := p.countArguments(open)
	if p.overrun {
		return open
	}

	if p.a.stats != nil {
		p.a.stats.Collect(receiverType, fn.Text, first)
	}

	var missing []string
	for k := args; k < len(sig.Parameters); k++ {
		if sig.Parameters[k].Required {
			missing = append(missing, strconv.Itoa(k+1))
		}
	}

	switch len(missing) {
	case 0:
	case 1:
		p.errorf(fn, "Too few arguments for function '%s'. Parameter %s is required to run this function", fn.Text, missing[0])
	default:
		p.errorf(fn, "Too few arguments for function '%s'. Parameters %s are required to run this function",
			fn.Text, strings.Join(missing, ","))
	}

	if args > len(sig.Parameters) {
		p.errorf(fn, "Too many arguments for function '%s'. Maximum of %d arguments expected and %d given.",
			fn.Text, len(sig.Parameters), args)
	}

	if closing >= 0 {
		if after := p.at(closing + 1); !p.overrun && !continuesExpression(after.Text) {
			p.errorf(p.tokens[closing], "';' is missing.")
		}
	}

	return open
}

// countArguments counts the top-level arguments of the list opened at
// index open. It returns the text of the first argument and the index of
// the closing parenthesis, or -1 when the list is not closed.
func (p *pass) countArguments(open int) (args int, first string, closing int) {
	if p.at(open+1).Text != ")" {
		args = 1
	}

	depth := 1
	for j := open + 1; !p.overrun; j++ {
		t := p.at(j)

		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return args, first, j
			}
		case ";":
			p.errorf(t, "')' expected '%s'", t.Text)
			return args, first, -1
		case ",":
			if depth == 1 {
				args++
				continue
			}
		}

		if args == 1 {
			first += t.Text
		}
	}

	return args, first, -1
}

func (p *pass) closeBlock(i int) int {
	tok := p.tokens[i]

	if next := p.at(i + 1); next.Text != ";" && next.Text != "else" {
		p.reportCode(tok.Range, protocol.DiagnosticSeverityError, CodeMissingSemicolon, MessageMissingSemicolon)
	}

	if err := p.scopes.Pop(); err != nil {
		p.errorf(tok, "One '}' is unexpected. You are already in the global scope")
	}

	return i
}

func (p *pass) openBlock() {
	outer := p.scopes.Depth()
	p.scopes.Push()

	for _, tok := range p.a.deferred[outer] {
		p.declare(tok, TypeByPrefix(tok.Text))
	}
	delete(p.a.deferred, outer)
}

// deferVariable declares tok in the next block opened at the current level.
func (p *pass) deferVariable(tok Token) {
	depth := p.scopes.Depth()
	p.a.deferred[depth] = append(p.a.deferred[depth], tok)
}

func (p *pass) declare(tok Token, typ string) {
	t := tok
	p.scopes.Declare(&Variable{Name: tok.Text, Type: typ, Token: &t, Script: p.s.Number})
}

func (p *pass) declareChecked(tok Token, typ string) {
	if _, ok := p.scopes.LookupOuter(tok.Text); ok {
		p.report(tok.Range, protocol.DiagnosticSeverityHint, fmt.Sprintf("shadowing of variable '%s' detected", tok.Text))
	} else if _, ok := p.scopes.LookupCurrent(tok.Text); ok {
		p.report(tok.Range, protocol.DiagnosticSeverityInformation, fmt.Sprintf("Redefining variable '%s'", tok.Text))
	}

	p.declare(tok, typ)
}

func (p *pass) declaration(i int) int {
	typ := p.tokens[i]

	name := p.at(i + 1)
	switch {
	case IsKeyword(name.Text), IsType(name.Text), IsControlChar(name.Text):
		p.errorf(name, "unexpected keyword, variable declaration or control character detected: '%s'", name.Text)
		return i
	case !IsVariable(name.Text):
		p.errorf(name, "variablename expected '%s'", name.Text)
		return i + 1
	}

	switch next := p.at(i + 2); next.Text {
	case ";", "=":
		p.declareChecked(name, typ.Text)
		return i + 2
	case ",":
		return p.declarationList(i+1, typ.Text)
	default:
		p.errorf(next, "';' or '=' expected '%s'", next.Text)
		return i + 1
	}
}

// declarationList declares "a, b = expr, c" starting at the first name j.
func (p *pass) declarationList(j int, typ string) int {
	for !p.overrun {
		p.declareChecked(p.at(j), typ)
		j++

		if p.at(j).Text == "=" {
			depth := 0
			for ; !p.overrun; j++ {
				t := p.at(j).Text
				if depth == 0 && (t == "," || t == ";") {
					break
				}
				switch t {
				case "(":
					depth++
				case ")":
					depth--
				}
			}
		}

		switch sep := p.at(j); sep.Text {
		case ";":
			return j
		case ",":
			j++
		default:
			p.errorf(sep, "',' or ';' expected '%s'", sep.Text)
			return j - 1
		}

		if name := p.at(j); !IsVariable(name.Text) {
			p.errorf(name, "variablename expected '%s'", name.Text)
			return j - 1
		}
	}

	return j
}

func (p *pass) funcReturn(i int) int {
	tok := p.tokens[i]

	returnType := ""
	if p.fn != nil {
		returnType = p.fn.returnType
		p.fn.returned = true
	}

	if returnType == "void" {
		p.errorf(tok, "Functions returntype is void. 'funcreturn' is not allowed")
		return i
	}

	val := p.at(i + 1)
	if returnType == "" {
		return i
	}

	switch {
	case IsVariable(val.Text):
		v, ok := p.scopes.Lookup(val.Text)
		if !ok {
			p.reportUndefined(val)
			return i + 1
		}
		v.MarkUsed()
		if v.Type != returnType {
			p.errorf(val, "Returntype mismatch '%s' != '%s'", returnType, v.Type)
		}
		return i + 1

	case isLiteral(val.Text):
		mismatch := false
		switch returnType {
		case "int", "double", "short", "BYTE":
			_, err := strconv.ParseFloat(val.Text, 64)
			mismatch = err != nil
		case "CString":
			mismatch = !strings.HasPrefix(val.Text, `"`)
		}
		if mismatch {
			p.errorf(val, "Returntype mismatch '%s' != typeof %s", returnType, val.Text)
		}
		return i + 1
	}

	return i
}

func (p *pass) foreach(i int) int {
	if open := p.at(i + 1); open.Text != "(" {
		p.errorf(open, "'(' expected '%s'", open.Text)
		return i
	}

	table := p.at(i + 2)
	if !IsVariable(table.Text) {
		p.errorf(table, "variable expected '%s'", table.Text)
		return i + 1
	}
	p.resolve(table)

	if semi := p.at(i + 3); semi.Text != ";" {
		p.errorf(semi, "';' expected '%s'", semi.Text)
		return i + 2
	}

	row := p.at(i + 4)
	if !IsVariable(row.Text) {
		p.errorf(row, "variable expected '%s'", row.Text)
		return i + 3
	}
	p.deferVariable(row)

	switch next := p.at(i + 5); next.Text {
	case ")":
		return i + 5
	case ";":
		if flag := p.at(i + 6); flag.Text != "TRUE" && flag.Text != "FALSE" {
			p.errorf(flag, "Either 'FALSE' or 'TRUE' expected '%s'", flag.Text)
			return i + 5
		}
		if closing := p.at(i + 7); closing.Text != ")" {
			p.errorf(closing, "')' expected '%s'", closing.Text)
			return i + 6
		}
		return i + 7
	default:
		p.errorf(next, "')' expected '%s'", next.Text)
		return i + 4
	}
}

func (p *pass) includeDirective(i int) int {
	kw := p.at(i + 1)
	if kw.Text != "includescript" {
		p.errorf(kw, "'includescript' expected '%s'", kw.Text)
		return i
	}

	num := p.at(i + 2)
	n, err := strconv.Atoi(num.Text)
	if err != nil {
		p.errorf(num, "Scriptnumber expected '%s'", num.Text)
		return i + 1
	}

	inc := p.s.Included(n)
	switch {
	case p.a.active[n]:
		p.report(num.Range, protocol.DiagnosticSeverityInformation,
			fmt.Sprintf("includescript %d is already being analyzed, the cyclic include is skipped", n))
	case inc == nil:
		p.report(num.Range, protocol.DiagnosticSeverityInformation,
			fmt.Sprintf("includescript %d could not be found in any document", n))
	default:
		before, depth := p.a.errors, p.scopes.Depth()
		p.a.include(inc, p.scopes)

		if count := p.a.errors - before; count > 0 {
			p.report(Range{kw.Range.Start, num.Range.End}, protocol.DiagnosticSeverityInformation, fmt.Sprintf(
				"includescript %d has %d error(s) in it. Diagnostics after this point can only be trusted partially", n, count))
		}
		p.checkDepth(Range{kw.Range.Start, num.Range.End}, fmt.Sprintf("includescript %d", n), depth)
	}

	return i + 2
}

func (p *pass) checkDepth(r Range, what string, before int) {
	if after := p.scopes.Depth(); after != before {
		p.report(r, protocol.DiagnosticSeverityWarning,
			fmt.Sprintf("%s changes the scope level from %d to %d", what, before, after))
	}
}

func (p *pass) hook(i int) int {
	marker := p.at(i + 2)
	if p.overrun {
		return i + 2
	}

	p.reportCode(marker.Range, protocol.DiagnosticSeverityWarning, CodeHook, "Hook detected, maybe a customer uses this hook")

	if h := p.s.Hook(marker.Text); h != nil {
		depth := p.scopes.Depth()
		p.a.run(h, p.scopes, true)
		p.checkDepth(marker.Range, "hook '"+marker.Text+"'", depth)
	}

	return i + 2
}

// resolve looks tok up inner-wins and marks the variable used.
func (p *pass) resolve(tok Token) (*Variable, bool) {
	v, ok := p.scopes.Lookup(tok.Text)
	if !ok {
		p.reportUndefined(tok)
		return nil, false
	}

	v.MarkUsed()

	return v, true
}

func (p *pass) reportUndefined(tok Token) {
	msg := fmt.Sprintf("'%s' possibly not defined. Maybe this script gets included somewhere", tok.Text)
	if p.hasIncludes {
		msg = fmt.Sprintf("'%s' possibly not defined. Maybe it is defined in an includescript or this script gets included somewhere", tok.Text)
	}

	p.report(tok.Range, protocol.DiagnosticSeverityInformation, msg)
}

func (p *pass) identifier(i int) int {
	tok := p.tokens[i]
	v, ok := p.resolve(tok)

	next := p.at(i + 1)
	switch {
	case next.Text == ".":
		fn := p.at(i + 2)
		if !IsVariable(fn.Text) {
			p.errorf(fn, "After '.' must follow a parserfunction '%s'", fn.Text)
			return i + 1
		}
		if open := p.at(i + 3); open.Text != "(" {
			p.errorf(open, "After a parserfunction must follow a '(' '%s'", open.Text)
			return i + 2
		}
		if !ok {
			return i + 3
		}

		return p.checkCall(i+3, tok.Text, v.Type, fn)

	case next.Text == "=" && p.at(i+2).Text != "=":
		if isConstantName(tok.Text) {
			p.errorf(tok, "Cannot assign to '%s' because it is a constant. A variable in all uppercase is considered const.", tok.Text)
		}

	case !continuesExpression(next.Text) && !p.overrun:
		p.errorf(next, "Expression after variable expected '%s'", next.Text)
	}

	return i
}
