package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/CWBudde/futurec-lsp/internal/script"
)

// CursorKind classifies the word under the cursor.
type CursorKind int

const (
	CursorUndefined CursorKind = iota
	CursorVariable
	CursorUserFunction
	CursorParserFunction
	CursorIncludeScript
	CursorAddHook
	CursorError
)

func (k CursorKind) String() string {
	switch k {
	case CursorVariable:
		return "variable"
	case CursorUserFunction:
		return "user function"
	case CursorParserFunction:
		return "parser function"
	case CursorIncludeScript:
		return "includescript"
	case CursorAddHook:
		return "hook"
	case CursorError:
		return "error"
	}

	return "undefined"
}

// CursorInfo describes the word at a document offset.
type CursorInfo struct {
	Word string
	// Char is the character at the offset, trimmed.
	Char string
	Kind CursorKind
	// Context is the receiver of a parser function: a namespace letter or
	// a variable name.
	Context string
	// Offset is the start of Word.
	Offset int
}

// Valid reports whether the cursor is on something the server can resolve.
func (c CursorInfo) Valid() bool {
	switch c.Kind {
	case CursorVariable, CursorUserFunction, CursorParserFunction, CursorIncludeScript, CursorAddHook:
		return true
	}

	return false
}

// FunctionName returns the called name for function, include and hook
// cursors, and "" otherwise.
func (c CursorInfo) FunctionName() string {
	switch c.Kind {
	case CursorUserFunction:
		return strings.TrimSpace(strings.TrimPrefix(c.Word, "Call:"))
	case CursorParserFunction, CursorIncludeScript, CursorAddHook:
		return c.Word
	}

	return ""
}

const breakChars = " \t\n\r([!,\"-#${;}"

func isBreak(b byte) bool {
	return strings.IndexByte(breakChars, b) >= 0
}

var (
	cursorHookPattern = regexp.MustCompile(`//[ \t]*ADDHOOK[^0-9\n]*[0-9]+[^\n]*`)
	numberPattern     = regexp.MustCompile(`[0-9]+`)
	includeNumber     = regexp.MustCompile(`includescript[ \t]+$`)
)

// ResolveCursor classifies the word at offset of text. With
// functionCompletion set, a cursor on whitespace looks at the character
// before it, which is where the user just typed.
func ResolveCursor(text string, offset int, functionCompletion bool) CursorInfo {
	offset = max(0, min(offset, len(text)))

	if functionCompletion && offset > 0 && (offset == len(text) || strings.IndexByte(" \t\r\n", text[offset]) >= 0) {
		offset--
	}

	info := CursorInfo{Offset: offset}
	if offset < len(text) {
		r, _ := utf8.DecodeRuneInString(text[offset:])
		info.Char = strings.TrimSpace(string(r))
	}

	if marker, start, ok := hookAt(text, offset); ok {
		info.Word, info.Kind, info.Offset = marker, CursorAddHook, start
		return info
	}

	userFunction, parserFunction := false, false
	i := offset
	for i > 0 && (i >= len(text) || !isBreak(text[i])) {
		if i < len(text) {
			if text[i] == ':' {
				userFunction = true
			} else if text[i] == '.' {
				parserFunction = true
				info.Context = receiverBefore(text, i)
				break
			}
		}
		i--
	}

	start := i + 1
	if i == 0 && len(text) > 0 && !isBreak(text[0]) && !parserFunction {
		start = 0
	}
	start = min(start, len(text))

	end := start
	if userFunction {
		if c := strings.IndexByte(text[start:], ':'); c >= 0 {
			end = start + c + 1
		}
	}
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if !IsIdentifierRune(r) {
			break
		}
		end += size
	}

	info.Word = strings.TrimSpace(text[start:end])
	info.Offset = start

	switch {
	case userFunction:
		info.Kind = CursorUserFunction
	case parserFunction:
		info.Kind = CursorParserFunction
	case info.Word == "includescript":
		if loc := numberPattern.FindStringIndex(text[offset:]); loc != nil {
			info.Word = text[offset+loc[0] : offset+loc[1]]
			info.Offset = offset + loc[0]
			info.Kind = CursorIncludeScript
		} else {
			info.Kind = CursorError
		}
	case isDigits(info.Word) && includeNumber.MatchString(text[:start]):
		info.Kind = CursorIncludeScript
	case info.Word == "":
		info.Kind = CursorUndefined
	default:
		info.Kind = CursorVariable
	}

	return info
}

// receiverBefore returns the identifier ending right before dot.
func receiverBefore(text string, dot int) string {
	j := dot
	for j > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:j])
		if !IsIdentifierRune(r) {
			break
		}
		j -= size
	}

	return text[j:dot]
}

// hookAt returns the hook name when offset lies inside an //ADDHOOK marker.
func hookAt(text string, offset int) (string, int, bool) {
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	lineEnd := len(text)
	if n := strings.IndexByte(text[offset:], '\n'); n >= 0 {
		lineEnd = offset + n
	}

	loc := cursorHookPattern.FindStringIndex(text[lineStart:lineEnd])
	if loc == nil || offset < lineStart+loc[0] || offset > lineStart+loc[1] {
		return "", 0, false
	}

	marker := text[lineStart+loc[0] : lineStart+loc[1]]

	return script.HookName(marker), lineStart + loc[0], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// ReceiverType maps the context of a parser-function cursor to the registry
// section holding its signature.
func ReceiverType(info CursorInfo, si *ScriptInformation) (string, bool) {
	switch ctx := info.Context; {
	case ctx == "":
		return "", false
	case IsNamespace(ctx):
		return ctx, true
	case ctx == "m_Rec", ctx == "m_Rec2":
		return "CTable", true
	}

	if v, ok := si.LookupVariable(info.Context); ok {
		return v.Type, true
	}

	return "", false
}
