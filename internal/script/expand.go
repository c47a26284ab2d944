package script

import (
	"regexp"
	"strconv"
)

var includePattern = regexp.MustCompile(`\bincludescript\s+([0-9]+)\b`)

// Expansion is the outcome of resolving the includes of a script.
type Expansion struct {
	// Included lists the resolved numbers in resolution order.
	Included []int

	// Unresolved lists the numbers no corpus document defines.
	Unresolved []int

	// Cyclic is set when an already substituted number reappeared.
	Cyclic bool
}

// Partial reports whether directives were left unexpanded.
func (e Expansion) Partial() bool {
	return e.Cyclic || len(e.Unresolved) > 0
}

// IncludeNumbers returns the distinct script numbers referenced by
// includescript directives in text, in order of first appearance.
func IncludeNumbers(text string) []int {
	var numbers []int
	seen := map[int]bool{}

	for _, m := range includePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}

		seen[n] = true
		numbers = append(numbers, n)
	}

	return numbers
}

// Resolve finds the SCRIPT block of every number in the corpus. Numbers
// without a block are skipped; the first document in URI order wins.
func Resolve(numbers []int, corpus Corpus) []*Script {
	found := make(map[int]*Script, len(numbers))

	headers := make([]*regexp.Regexp, len(numbers))
	for i, n := range numbers {
		headers[i] = scriptHeader(n)
	}

	for _, uri := range sortedURIs(corpus) {
		if len(found) == len(numbers) {
			break
		}

		text, ok := corpus.Text(uri)
		if !ok {
			continue
		}

		for i, n := range numbers {
			if found[n] != nil {
				continue
			}

			m := headers[i].FindStringSubmatchIndex(text)
			if m == nil {
				continue
			}

			s := newScript(text, uri, m)
			found[n] = s
		}
	}

	scripts := make([]*Script, 0, len(found))
	for _, n := range numbers {
		if s := found[n]; s != nil {
			scripts = append(scripts, s)
		}
	}

	return scripts
}

func scriptHeader(number int) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^(SCRIPT):(` + strconv.Itoa(number) + `),(.*)$`)
}

func directive(number int) *regexp.Regexp {
	return regexp.MustCompile(`#includescript\s+` + strconv.Itoa(number) + `\b`)
}

// Expand resolves the includes of s against the corpus and records them in
// s.IncludedScripts. With inline set the directives are replaced by the
// included text until none is left, a number cannot be resolved, or a
// number that was already substituted comes back.
func Expand(s *Script, corpus Corpus, inline bool) {
	var exp Expansion
	seen := map[int]bool{}
	unresolved := map[int]bool{}

	for {
		var pending []int
		for _, n := range IncludeNumbers(s.Text) {
			switch {
			case unresolved[n]:
			case seen[n]:
				exp.Cyclic = true
			default:
				pending = append(pending, n)
			}
		}

		if exp.Cyclic || len(pending) == 0 {
			break
		}

		resolved := map[int]bool{}
		for _, inc := range Resolve(pending, corpus) {
			resolved[inc.Number] = true
			seen[inc.Number] = true
			exp.Included = append(exp.Included, inc.Number)

			if s.Included(inc.Number) == nil {
				s.IncludedScripts = append(s.IncludedScripts, inc)
			}

			if inline {
				s.Text = directive(inc.Number).ReplaceAllLiteralString(s.Text, inc.Text)
			}
		}

		for _, n := range pending {
			if !resolved[n] {
				unresolved[n] = true
				exp.Unresolved = append(exp.Unresolved, n)
			}
		}

		if !inline {
			break
		}
	}

	s.Expansion = exp
}
