package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func referencesAt(t *testing.T, pos protocol.Position, includeDeclaration bool) []protocol.Location {
	t.Helper()

	locations, err := References(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: textDocumentPosition(mainURI, pos),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: includeDeclaration},
	})
	require.NoError(t, err)
	require.NotNil(t, locations)

	return locations
}

func ranges(locations []protocol.Location) []protocol.Range {
	result := make([]protocol.Range, len(locations))
	for i, loc := range locations {
		result[i] = loc.Range
	}

	return result
}

func TestReferences(t *testing.T) {
	tests := []struct {
		name        string
		needle      string
		delta       int
		declaration bool
		want        []protocol.Range
	}{
		{
			name:        "variable with declaration",
			needle:      "nCount = nLib",
			delta:       0,
			declaration: true,
			want:        []protocol.Range{rng(5, 4, 5, 10), rng(7, 0, 7, 6), rng(14, 9, 14, 15)},
		},
		{
			name:   "variable without declaration",
			needle: "nCount = nLib",
			delta:  0,
			want:   []protocol.Range{rng(7, 0, 7, 6), rng(14, 9, 14, 15)},
		},
		{
			name:        "include with declaration",
			needle:      "#includescript 2",
			delta:       15,
			declaration: true,
			want:        []protocol.Range{rng(4, 15, 4, 16), rng(17, 7, 17, 8)},
		},
		{
			name:   "include",
			needle: "#includescript 2",
			delta:  15,
			want:   []protocol.Range{rng(4, 15, 4, 16)},
		},
		{
			name:        "user function with declaration",
			needle:      "Call:Add",
			delta:       5,
			declaration: true,
			want:        []protocol.Range{rng(11, 13, 11, 16), rng(14, 5, 14, 8)},
		},
		{
			name:   "user function",
			needle: "Call:Add",
			delta:  5,
			want:   []protocol.Range{rng(14, 5, 14, 8)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestServer(t)
			openDocument(t, mainURI, mainDoc)

			locations := referencesAt(t, positionOf(t, mainDoc, tt.needle, tt.delta), tt.declaration)
			assert.Equal(t, tt.want, ranges(locations))

			for _, loc := range locations {
				assert.Equal(t, mainURI, loc.URI)
			}
		})
	}
}

func TestReferences_Hook(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	locations := referencesAt(t, positionOf(t, mainDoc, "//ADDHOOK-1-AfterInit\nENDSCRIPT", 3), false)
	require.Len(t, locations, 2)
	assert.Equal(t, uint32(15), locations[0].Range.Start.Line)
	assert.Equal(t, uint32(20), locations[1].Range.Start.Line)
}

func TestReferences_AcrossDocuments(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)
	openDocument(t, otherURI, "SCRIPT:3,Other\n#includescript 2\nCall:Add(1, 2);\nENDSCRIPT\n")

	includes := referencesAt(t, positionOf(t, mainDoc, "#includescript 2", 15), false)
	require.Len(t, includes, 2)
	assert.Equal(t, mainURI, includes[0].URI)
	assert.Equal(t, otherURI, includes[1].URI)
	assert.Equal(t, rng(1, 15, 1, 16), includes[1].Range)

	calls := referencesAt(t, positionOf(t, mainDoc, "Call:Add", 5), false)
	require.Len(t, calls, 2)
	assert.Equal(t, otherURI, calls[1].URI)
	assert.Equal(t, rng(2, 5, 2, 8), calls[1].Range)
}

func TestReferences_Nothing(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	assert.Empty(t, referencesAt(t, protocol.Position{Line: 2, Character: 0}, true))

	locations, err := References(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: textDocumentPosition(otherURI, protocol.Position{}),
	})
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestWordOccurrences(t *testing.T) {
	tests := []struct {
		text string
		word string
		want []int
	}{
		{"nA = nA + nAB;", "nA", []int{0, 5}},
		{"xnA nA_ nA", "nA", []int{8}},
		{"", "nA", nil},
		{"nA", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, wordOccurrences(tt.text, tt.word))
		})
	}
}
