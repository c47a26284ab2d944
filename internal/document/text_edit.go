// Package document provides utilities for text document manipulation.
package document

import (
	"fmt"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ApplyContentChange applies a TextDocumentContentChangeEvent to the given text
// and returns the updated text. This handles LSP's UTF-16 based positions.
func ApplyContentChange(text string, change protocol.TextDocumentContentChangeEvent) (string, error) {
	if change.Range == nil {
		return change.Text, nil
	}

	index := NewLineIndex(text)

	start, err := index.checkedOffset(change.Range.Start)
	if err != nil {
		return "", fmt.Errorf("invalid start position: %w", err)
	}

	end, err := index.checkedOffset(change.Range.End)
	if err != nil {
		return "", fmt.Errorf("invalid end position: %w", err)
	}

	if start > end {
		return "", fmt.Errorf("start offset %d after end offset %d", start, end)
	}

	return text[:start] + change.Text + text[end:], nil
}

// ChangedOffset returns the offset in the updated text where the first
// incremental change of a didChange batch starts, or -1 for full syncs.
func ChangedOffset(text string, changes []any) int {
	for _, c := range changes {
		change, ok := c.(protocol.TextDocumentContentChangeEvent)
		if !ok || change.Range == nil {
			continue
		}

		return NewLineIndex(text).OffsetAt(change.Range.Start)
	}

	return -1
}

// utf16CharOffsetToByteOffset converts a UTF-16 character offset (as used by LSP)
// to a UTF-8 byte offset within the given line.
func utf16CharOffsetToByteOffset(line string, utf16Offset int) (int, error) {
	if utf16Offset < 0 {
		return 0, fmt.Errorf("negative UTF-16 offset %d", utf16Offset)
	}

	units := 0
	for i, r := range line {
		if units >= utf16Offset {
			return i, nil
		}

		units += utf16Len(r)
	}

	if units >= utf16Offset {
		return len(line), nil
	}

	return 0, fmt.Errorf("UTF-16 offset %d exceeds line length %d", utf16Offset, units)
}

// byteOffsetToUTF16Offset converts a UTF-8 byte offset within a line
// to a UTF-16 code unit offset.
func byteOffsetToUTF16Offset(line string, byteOffset int) int {
	if byteOffset > len(line) {
		byteOffset = len(line)
	}

	units := 0
	for i := 0; i < byteOffset; {
		r, size := utf8.DecodeRuneInString(line[i:])
		if i+size > byteOffset {
			break
		}

		units += utf16Len(r)
		i += size
	}

	return units
}

func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}

	return 1
}
