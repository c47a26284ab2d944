package document

import (
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LineIndex maps between byte offsets and LSP positions of a single text.
// Positions use UTF-16 code units for the character column.
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex builds the line table of text.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &LineIndex{text: text, starts: starts}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (li *LineIndex) LineCount() int {
	return len(li.starts)
}

// LineStart returns the byte offset where line n starts.
func (li *LineIndex) LineStart(n int) int {
	if n <= 0 {
		return 0
	}

	if n >= len(li.starts) {
		return len(li.text)
	}

	return li.starts[n]
}

// Line returns the text of line n without its line terminator.
func (li *LineIndex) Line(n int) string {
	if n < 0 || n >= len(li.starts) {
		return ""
	}

	end := len(li.text)
	if n+1 < len(li.starts) {
		end = li.starts[n+1] - 1
	}

	return strings.TrimSuffix(li.text[li.starts[n]:end], "\r")
}

// LineAt returns the line number containing offset.
func (li *LineIndex) LineAt(offset int) int {
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
}

// PositionAt converts a byte offset into a position. Offsets outside the
// text are clamped.
func (li *LineIndex) PositionAt(offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}

	if offset > len(li.text) {
		offset = len(li.text)
	}

	line := li.LineAt(offset)
	start := li.starts[line]

	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(byteOffsetToUTF16Offset(li.text[start:], offset-start)),
	}
}

// OffsetAt converts a position into a byte offset. Positions past the end of
// a line map to the end of that line, lines past the end map to len(text).
func (li *LineIndex) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(li.starts) {
		return len(li.text)
	}

	start := li.starts[line]
	lineText := li.rawLine(line)

	n, err := utf16CharOffsetToByteOffset(lineText, int(pos.Character))
	if err != nil {
		n = len(lineText)
	}

	return start + n
}

func (li *LineIndex) checkedOffset(pos protocol.Position) (int, error) {
	line := int(pos.Line)
	if line >= len(li.starts) {
		return 0, fmt.Errorf("line %d out of range (0-%d)", line, len(li.starts)-1)
	}

	n, err := utf16CharOffsetToByteOffset(li.rawLine(line), int(pos.Character))
	if err != nil {
		return 0, err
	}

	return li.starts[line] + n, nil
}

// rawLine is the line without '\n' but with any '\r' kept, so offsets stay exact.
func (li *LineIndex) rawLine(n int) string {
	end := len(li.text)
	if n+1 < len(li.starts) {
		end = li.starts[n+1] - 1
	}

	return li.text[li.starts[n]:end]
}

// PositionAt converts offset in text into a position.
func PositionAt(text string, offset int) protocol.Position {
	return NewLineIndex(text).PositionAt(offset)
}

// OffsetAt converts a position in text into a byte offset.
func OffsetAt(text string, pos protocol.Position) int {
	return NewLineIndex(text).OffsetAt(pos)
}
