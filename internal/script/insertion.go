package script

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxScriptNumber bounds the neighbour search of the insertion heuristics.
const MaxScriptNumber = 10000

var (
	anyHeaderPattern = regexp.MustCompile(`\b(?:INSERTINTOSCRIPT|SCRIPT|ADDTOSCRIPT):([0-9]+),`)
	tocPattern       = regexp.MustCompile(`(?m)^([0-9]+)[ \t]+[/a-zA-ZöäüÖÄÜ _-]+.*$`)
)

type numbered struct {
	number     int
	start, end int
}

func collect(pattern *regexp.Regexp, text string) []numbered {
	var out []numbered
	for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		out = append(out, numbered{number: n, start: m[0], end: m[1]})
	}

	return out
}

// lower returns the last occurrence of the nearest number below number.
func lower(items []numbered, number int) (numbered, bool) {
	best, found := numbered{number: -1}, false
	for _, it := range items {
		if it.number < number && it.number >= best.number {
			best, found = it, true
		}
	}

	return best, found
}

// upper returns the first occurrence of the nearest number above number.
func upper(items []numbered, number int) (numbered, bool) {
	best, found := numbered{number: MaxScriptNumber}, false
	for _, it := range items {
		if it.number > number && it.number < best.number {
			best, found = it, true
		}
	}

	return best, found
}

// afterEndScript returns the start of the line following the ENDSCRIPT
// that closes the block running from offset.
func afterEndScript(text string, offset int) int {
	end := bodyEnd(text, offset)
	if end == len(text) {
		return len(text)
	}

	if nl := strings.IndexByte(text[end:], '\n'); nl >= 0 {
		return end + nl + 1
	}

	return len(text)
}

// beforeBlock returns the start of the line following the last ENDSCRIPT
// above offset, or 0.
func beforeBlock(text string, offset int) int {
	lines := strings.Split(text[:lineStart(text, offset)], "\n")
	pos := lineStart(text, offset)

	for i := len(lines) - 2; i >= 0; i-- {
		pos -= len(lines[i]) + 1
		if strings.Contains(lines[i], "ENDSCRIPT") {
			return pos + len(lines[i]) + 1
		}
	}

	return 0
}

func lineStart(text string, offset int) int {
	return strings.LastIndexByte(text[:offset], '\n') + 1
}

// FindInsertionPointForScript returns the offset at which a new block for
// script number is spliced into text. hooks are the marker comments of the
// main script; an existing block for one of them wins, the last one first.
// Otherwise the block goes after the nearest lower-numbered block, before
// the nearest higher-numbered block, or at the end of the text.
func FindInsertionPointForScript(text string, number int, hooks []string) int {
	for i := len(hooks) - 1; i >= 0; i-- {
		re := regexp.MustCompile(`\bINSERTINTOSCRIPT:` + strconv.Itoa(number) + `,` + regexp.QuoteMeta(hooks[i]))
		if loc := re.FindStringIndex(text); loc != nil {
			return afterEndScript(text, loc[1])
		}
	}

	headers := collect(anyHeaderPattern, text)
	if below, ok := lower(headers, number); ok {
		return afterEndScript(text, below.end)
	}

	if above, ok := upper(headers, number); ok {
		return beforeBlock(text, above.start)
	}

	return len(text)
}

// FindInsertionPointForHook returns where the INSERTINTOSCRIPT block for
// hook of script number belongs. exists reports that the block is already
// there, in which case offset is its header.
func FindInsertionPointForHook(text string, number int, hook string) (offset int, exists bool) {
	blocks := insertHeader(number).FindAllStringSubmatchIndex(text, -1)
	for _, m := range blocks {
		if strings.TrimSpace(text[m[6]:m[7]]) == hook {
			return m[0], true
		}
	}

	if len(blocks) > 0 {
		return afterEndScript(text, blocks[len(blocks)-1][1]), false
	}

	return FindInsertionPointForScript(text, number, nil), false
}

// FindInsertionPointForTOC returns where the table-of-contents line
// "<number> <name>" belongs: after the line of the nearest lower number,
// otherwise before the line of the nearest higher number, otherwise at the
// start of the text.
func FindInsertionPointForTOC(text string, number int, hooks []string) int {
	for i := len(hooks) - 1; i >= 0; i-- {
		re := regexp.MustCompile(`(?m)^` + strconv.Itoa(number) + `[ \t]+` + regexp.QuoteMeta(hooks[i]) + `.*$`)
		if loc := re.FindStringIndex(text); loc != nil {
			return nextLine(text, loc[1])
		}
	}

	lines := collect(tocPattern, text)
	if below, ok := lower(lines, number); ok {
		return nextLine(text, below.end)
	}

	if above, ok := upper(lines, number); ok {
		return above.start
	}

	return 0
}

func nextLine(text string, offset int) int {
	if nl := strings.IndexByte(text[offset:], '\n'); nl >= 0 {
		return offset + nl + 1
	}

	return len(text)
}
