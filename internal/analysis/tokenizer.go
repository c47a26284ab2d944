package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Range is a half-open byte range of a script text.
type Range struct {
	Start int
	End   int
}

// Token is one lexical unit of a script.
type Token struct {
	Text  string
	Range Range
}

// HookToken is the synthetic token emitted for an //ADDHOOK marker comment.
const HookToken = "__ADDHOOK__"

// TokenizeOptions carries what the tokenizer needs to know about the script.
type TokenizeOptions struct {
	// ScriptType enables hook marker tokens when it is "SCRIPT".
	ScriptType string

	// ScriptNumber is emitted as the second hook marker token.
	ScriptNumber int

	// ExpandDefines tokenizes the rest of a "// ... DEFINE:" comment as code.
	ExpandDefines bool
}

var hookCommentPattern = regexp.MustCompile(`//\s*(ADDHOOK[^0-9]*[0-9]+.*)`)

// IsIdentifierRune reports whether r may be part of an identifier.
func IsIdentifierRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	}

	return strings.ContainsRune("öäüÖÄÜß", r)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Tokenize splits script text into tokens. It never fails; malformed input
// yields a best-effort token list.
func Tokenize(text string, opts TokenizeOptions) []Token {
	var tokens []Token

	identStart := -1
	flush := func(end int) {
		if identStart >= 0 {
			tokens = append(tokens, Token{Text: text[identStart:end], Range: Range{identStart, end}})
			identStart = -1
		}
	}

	for i := 0; i < len(text); {
		c := text[i]

		switch {
		case isSpace(c):
			flush(i)
			i++

		case strings.HasPrefix(text[i:], "//"):
			flush(i)

			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += i
			}
			comment := text[i:end]

			if opts.ScriptType == "SCRIPT" {
				if m := hookCommentPattern.FindStringSubmatch(comment); m != nil {
					marker := strings.TrimSpace(m[1])
					number := strconv.Itoa(opts.ScriptNumber)
					tokens = append(tokens,
						Token{Text: HookToken, Range: Range{i, i + 9}},
						Token{Text: number, Range: Range{i + 10, i + 10 + len(marker)}},
						Token{Text: "//" + marker, Range: Range{i, i + len(marker) + 2}},
					)
				}
			}

			if opts.ExpandDefines {
				if idx := strings.Index(comment, "DEFINE:"); idx > 0 {
					i += idx + len("DEFINE:")
					continue
				}
			}

			i = end

		case strings.HasPrefix(text[i:], "/*"):
			flush(i)

			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				i = len(text)
			} else {
				i += 2 + end + 2
			}

		case c == '"':
			flush(i)

			end := i + 1
			for end < len(text) && text[end] != '"' {
				if text[end] == '\\' {
					end++
				}
				end++
			}
			end++
			if end > len(text) {
				end = len(text)
			}

			tokens = append(tokens, Token{Text: text[i:end], Range: Range{i, end}})
			i = end

		default:
			r, size := utf8.DecodeRuneInString(text[i:])
			if IsIdentifierRune(r) {
				if identStart < 0 {
					identStart = i
				}
			} else {
				flush(i)
				tokens = append(tokens, Token{Text: text[i : i+size], Range: Range{i, i + size}})
			}
			i += size
		}
	}

	flush(len(text))

	return tokens
}
