package script

import (
	"regexp"
	"strings"
)

// FunctionDecl is a user function declared with FUNCTION:<type> <name>(...).
type FunctionDecl struct {
	Name       string
	ReturnType string
	Parameters []string

	// Start and End delimit the declaration line; NameStart is the offset
	// of Name.
	Start, End, NameStart int
}

var functionPattern = regexp.MustCompile(`(?m)^[ \t]*FUNCTION[ \t]*:[ \t]*([A-Za-z]+)[ \t]+([0-9A-Za-z_öäüÖÄÜß]+)[ \t]*\(([^)\n]*)\)`)

// Functions lists the user function declarations of text in order.
func Functions(text string) []FunctionDecl {
	var decls []FunctionDecl

	for _, m := range functionPattern.FindAllStringSubmatchIndex(text, -1) {
		decl := FunctionDecl{
			ReturnType: text[m[2]:m[3]],
			Name:       text[m[4]:m[5]],
			NameStart:  m[4],
			Start:      m[0],
			End:        m[1],
		}

		for _, p := range strings.Split(text[m[6]:m[7]], ",") {
			if p = strings.TrimSpace(p); p != "" {
				decl.Parameters = append(decl.Parameters, strings.Join(strings.Fields(p), " "))
			}
		}

		decls = append(decls, decl)
	}

	return decls
}

// FindFunction returns the declaration of name in text.
func FindFunction(text, name string) (FunctionDecl, bool) {
	for _, decl := range Functions(text) {
		if decl.Name == name {
			return decl, true
		}
	}

	return FunctionDecl{}, false
}

// Signature renders the declaration as "<type> <name>(<params>)".
func (d FunctionDecl) Signature() string {
	return d.ReturnType + " " + d.Name + "(" + strings.Join(d.Parameters, ", ") + ")"
}

// DocComment returns the comment lines directly above offset with their
// comment markers removed. A blank line ends the block.
func DocComment(text string, offset int) string {
	lines := strings.Split(text[:lineStart(text, offset)], "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var block []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "//") && !strings.HasPrefix(line, "/*") &&
			!strings.HasPrefix(line, "*") {
			break
		}

		line = strings.TrimLeft(line, "/*")
		line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
		block = append(block, strings.TrimSpace(line))
	}

	for i, j := 0, len(block)-1; i < j; i, j = i+1, j-1 {
		block[i], block[j] = block[j], block[i]
	}

	return strings.TrimSpace(strings.Join(block, "\n"))
}
