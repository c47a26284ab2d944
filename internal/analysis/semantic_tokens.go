package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/CWBudde/futurec-lsp/internal/document"
	"github.com/CWBudde/futurec-lsp/internal/script"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SemanticToken is one classified token in absolute line/column form.
type SemanticToken struct {
	Line      uint32
	StartChar uint32
	Length    uint32 // UTF-16 code units
	TokenType uint32 // index into TokenTypes
	Modifiers uint32 // bit set over TokenModifiers
}

// TokenTypes is the semantic token legend. The order is part of the wire
// format and must not change between requests.
var TokenTypes = []string{
	"namespace",
	"type",
	"parameter",
	"variable",
	"function",
	"method",
	"keyword",
	"string",
	"number",
	"comment",
	"operator",
	"macro",
}

const (
	semNamespace uint32 = iota
	semType
	semParameter
	semVariable
	semFunction
	semMethod
	semKeyword
	semString
	semNumber
	semComment
	semOperator
	semMacro
)

// TokenModifiers are the modifier bits in legend order.
var TokenModifiers = []string{"declaration", "readonly", "defaultLibrary"}

const (
	modDeclaration uint32 = 1 << iota
	modReadonly
	modDefaultLibrary
)

// Legend returns the legend announced in the server capabilities.
func Legend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     TokenTypes,
		TokenModifiers: TokenModifiers,
	}
}

var (
	endScriptLine = regexp.MustCompile(`(?m)^[ \t]*ENDSCRIPT`)
	headerNumber  = regexp.MustCompile(`^[ \t]*([A-Z]+):([0-9]+)`)
)

type tokenCollector struct {
	lines  *document.LineIndex
	tokens []SemanticToken
	skip   []Range
}

// add emits the byte range [start, end) clipped to its first line.
func (c *tokenCollector) add(start, end int, typ, mods uint32) {
	if end <= start {
		return
	}

	from := c.lines.PositionAt(start)
	to := c.lines.PositionAt(end)
	if to.Line != from.Line {
		to = c.lines.PositionAt(c.lines.LineStart(int(from.Line)+1) - 1)
	}

	if to.Character <= from.Character {
		return
	}

	c.tokens = append(c.tokens, SemanticToken{
		Line:      from.Line,
		StartChar: from.Character,
		Length:    to.Character - from.Character,
		TokenType: typ,
		Modifiers: mods,
	})
}

// addLines emits [start, end) as one token per line.
func (c *tokenCollector) addLines(text string, start, end int, typ uint32) {
	for start < end {
		eol := strings.IndexByte(text[start:end], '\n')
		if eol < 0 {
			c.add(start, end, typ, 0)
			return
		}

		c.add(start, start+eol, typ, 0)
		start += eol + 1
	}
}

func (c *tokenCollector) skipped(r Range) bool {
	for _, s := range c.skip {
		if r.Start >= s.Start && r.Start < s.End {
			return true
		}
	}

	return false
}

// CollectSemanticTokens classifies every token of a host document, script
// headers and comments included. The result is sorted by position.
func CollectSemanticTokens(text string) []SemanticToken {
	c := &tokenCollector{lines: document.NewLineIndex(text)}

	c.scriptLines(text)
	c.comments(text)
	c.code(text)

	sort.SliceStable(c.tokens, func(i, j int) bool {
		if c.tokens[i].Line != c.tokens[j].Line {
			return c.tokens[i].Line < c.tokens[j].Line
		}

		return c.tokens[i].StartChar < c.tokens[j].StartChar
	})

	return c.tokens
}

// scriptLines marks header and ENDSCRIPT lines as macros.
func (c *tokenCollector) scriptLines(text string) {
	for _, h := range script.Headers(text) {
		eol := len(text)
		if n := strings.IndexByte(text[h.Start:], '\n'); n >= 0 {
			eol = h.Start + n
		}

		if m := headerNumber.FindStringSubmatchIndex(text[h.Start:eol]); m != nil {
			c.add(h.Start+m[2], h.Start+m[3], semMacro, 0)
			c.add(h.Start+m[4], h.Start+m[5], semNumber, 0)
		}

		c.skip = append(c.skip, Range{h.Start, eol})
	}

	for _, loc := range endScriptLine.FindAllStringIndex(text, -1) {
		c.add(loc[1]-len("ENDSCRIPT"), loc[1], semMacro, 0)
		c.skip = append(c.skip, Range{loc[0], loc[1]})
	}
}

// comments emits line and block comments; //ADDHOOK markers become macros.
func (c *tokenCollector) comments(text string) {
	for i := 0; i < len(text); {
		switch {
		case text[i] == '"':
			i = stringEnd(text, i)

		case strings.HasPrefix(text[i:], "//"):
			end := len(text)
			if n := strings.IndexByte(text[i:], '\n'); n >= 0 {
				end = i + n
			}

			typ := semComment
			if hookCommentPattern.MatchString(text[i:end]) {
				typ = semMacro
			}

			c.add(i, end, typ, 0)
			i = end

		case strings.HasPrefix(text[i:], "/*"):
			end := len(text)
			if n := strings.Index(text[i+2:], "*/"); n >= 0 {
				end = i + 2 + n + 2
			}

			c.addLines(text, i, end, semComment)
			i = end

		default:
			i++
		}
	}
}

// stringEnd returns the offset after the string literal opened at i.
func stringEnd(text string, i int) int {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}

	return len(text)
}

func (c *tokenCollector) code(text string) {
	var toks []Token
	for _, t := range Tokenize(text, TokenizeOptions{}) {
		if !c.skipped(t.Range) {
			toks = append(toks, t)
		}
	}

	at := func(i int) string {
		if i < 0 || i >= len(toks) {
			return ""
		}

		return toks[i].Text
	}

	inParams := false

	for i, t := range toks {
		s := t.Text

		switch {
		case s[0] == '"':
			c.addLines(text, t.Range.Start, t.Range.End, semString)

		case s[0] >= '0' && s[0] <= '9':
			c.add(t.Range.Start, t.Range.End, semNumber, 0)

		case IsType(s):
			c.add(t.Range.Start, t.Range.End, semType, 0)

		case IsKeyword(s), reserved[s]:
			c.add(t.Range.Start, t.Range.End, semKeyword, 0)

		case IsNamespace(s) && at(i+1) == ".":
			c.add(t.Range.Start, t.Range.End, semNamespace, modDefaultLibrary)

		case at(i-1) == "§" && strings.HasPrefix(s, "START_") || strings.HasPrefix(s, "END_") && at(i-1) == "§":
			c.add(t.Range.Start, t.Range.End, semMacro, 0)

		case at(i-1) == ".":
			typ := semMethod
			if IsNamespace(at(i - 2)) {
				typ = semFunction
			}
			c.add(t.Range.Start, t.Range.End, typ, modDefaultLibrary)

		case at(i-1) == ":" && at(i-2) == "Call":
			c.add(t.Range.Start, t.Range.End, semFunction, 0)

		case IsType(at(i-1)) && at(i-2) == ":" && at(i-3) == "FUNCTION":
			c.add(t.Range.Start, t.Range.End, semFunction, modDeclaration)
			inParams = at(i+1) == "("

		case IsVariable(s):
			typ, mods := semVariable, uint32(0)
			if inParams {
				typ = semParameter
			}
			if IsType(at(i - 1)) || at(i-1) == "&" && IsType(at(i-2)) {
				mods |= modDeclaration
			}
			if isConstantName(s) {
				mods |= modReadonly
			}
			c.add(t.Range.Start, t.Range.End, typ, mods)

		case strings.Contains("=<>!+-*/%&|", s):
			c.add(t.Range.Start, t.Range.End, semOperator, 0)

		case s == ")":
			inParams = false
		}
	}
}

// EncodeSemanticTokens converts sorted absolute tokens into the relative
// five-integer encoding of the protocol.
func EncodeSemanticTokens(tokens []SemanticToken) []uint32 {
	encoded := make([]uint32, 0, len(tokens)*5)

	var prevLine, prevChar uint32
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaChar := token.StartChar
		if deltaLine == 0 {
			deltaChar = token.StartChar - prevChar
		}

		encoded = append(encoded, deltaLine, deltaChar, token.Length, token.TokenType, token.Modifiers)

		prevLine = token.Line
		prevChar = token.StartChar
	}

	return encoded
}
