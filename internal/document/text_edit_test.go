package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testScript = "SCRIPT:100,Main\nint nCount;\nCString strName;\nENDSCRIPT"

func rng(sl, sc, el, ec int) *protocol.Range {
	return &protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(sl), Character: protocol.UInteger(sc)},
		End:   protocol.Position{Line: protocol.UInteger(el), Character: protocol.UInteger(ec)},
	}
}

func TestApplyContentChange(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		change protocol.TextDocumentContentChangeEvent
		want   string
	}{
		{
			name:   "full sync",
			text:   testScript,
			change: protocol.TextDocumentContentChangeEvent{Text: "ENDSCRIPT"},
			want:   "ENDSCRIPT",
		},
		{
			name:   "single line replacement",
			text:   "int nCount;",
			change: protocol.TextDocumentContentChangeEvent{Range: rng(0, 0, 0, 3), Text: "double"},
			want:   "double nCount;",
		},
		{
			name:   "delete whole line",
			text:   testScript,
			change: protocol.TextDocumentContentChangeEvent{Range: rng(1, 0, 2, 0), Text: ""},
			want:   "SCRIPT:100,Main\nCString strName;\nENDSCRIPT",
		},
		{
			name:   "insert at end of line",
			text:   "int n\nENDSCRIPT",
			change: protocol.TextDocumentContentChangeEvent{Range: rng(0, 5, 0, 5), Text: ";"},
			want:   "int n;\nENDSCRIPT",
		},
		{
			name:   "umlaut before the edit",
			text:   "CString strÄnderung;",
			change: protocol.TextDocumentContentChangeEvent{Range: rng(0, 19, 0, 19), Text: " = \"\""},
			want:   "CString strÄnderung = \"\";",
		},
		{
			name:   "crlf line endings",
			text:   "int a;\r\nint b;\r\n",
			change: protocol.TextDocumentContentChangeEvent{Range: rng(1, 4, 1, 5), Text: "c"},
			want:   "int a;\r\nint c;\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyContentChange(tt.text, tt.change)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyContentChange_InvalidRange(t *testing.T) {
	_, err := ApplyContentChange("int a;", protocol.TextDocumentContentChangeEvent{Range: rng(3, 0, 3, 1), Text: "x"})
	assert.Error(t, err)

	_, err = ApplyContentChange("int a;", protocol.TextDocumentContentChangeEvent{Range: rng(0, 0, 0, 40), Text: "x"})
	assert.Error(t, err)

	_, err = ApplyContentChange("int a;", protocol.TextDocumentContentChangeEvent{Range: rng(0, 4, 0, 1), Text: "x"})
	assert.Error(t, err)
}

func TestChangedOffset(t *testing.T) {
	text := "int a;\nint b;"
	changes := []any{
		protocol.TextDocumentContentChangeEvent{Range: rng(1, 4, 1, 5), Text: "c"},
	}
	assert.Equal(t, 11, ChangedOffset(text, changes))
	assert.Equal(t, -1, ChangedOffset(text, []any{protocol.TextDocumentContentChangeEvent{Text: "x"}}))
}

func TestUTF16CharOffsetToByteOffset(t *testing.T) {
	tests := []struct {
		line  string
		units int
		want  int
	}{
		{"int a;", 0, 0},
		{"int a;", 4, 4},
		{"int a;", 6, 6},
		{"§START_JSON§", 1, 2},
		{"ö = 1", 2, 3},
		{"😀x", 2, 4},
	}

	for _, tt := range tests {
		got, err := utf16CharOffsetToByteOffset(tt.line, tt.units)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}

	_, err := utf16CharOffsetToByteOffset("ab", 3)
	assert.Error(t, err)
}

func TestLineIndex(t *testing.T) {
	index := NewLineIndex(testScript)

	assert.Equal(t, 4, index.LineCount())
	assert.Equal(t, "int nCount;", index.Line(1))
	assert.Equal(t, 16, index.LineStart(1))
	assert.Equal(t, 1, index.LineAt(20))

	pos := index.PositionAt(20)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, pos)
	assert.Equal(t, 20, index.OffsetAt(pos))

	// clamping
	assert.Equal(t, len(testScript), index.OffsetAt(protocol.Position{Line: 40}))
	assert.Equal(t, index.LineStart(2)-1, index.OffsetAt(protocol.Position{Line: 1, Character: 99}))
}

func TestLineIndex_RoundTrip(t *testing.T) {
	text := "SCRIPT:1,Ä\r\nCString strÜ = \"§\";\n😀\nENDSCRIPT"
	index := NewLineIndex(text)

	for offset := 0; offset <= len(text); offset++ {
		pos := index.PositionAt(offset)
		back := index.OffsetAt(pos)
		// offsets inside a multi-byte rune snap to its start
		assert.LessOrEqual(t, back, offset)
		assert.Equal(t, pos, index.PositionAt(back))
	}

	assert.Equal(t, "SCRIPT:1,Ä", index.Line(0))
}
