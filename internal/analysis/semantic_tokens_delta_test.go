package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTokens = []SemanticToken{
	{Line: 0, StartChar: 0, Length: 3, TokenType: 0},
	{Line: 0, StartChar: 4, Length: 5, TokenType: 1},
	{Line: 1, StartChar: 0, Length: 4, TokenType: 2, Modifiers: 1},
	{Line: 2, StartChar: 0, Length: 6, TokenType: 3},
}

func TestComputeSemanticTokensDelta(t *testing.T) {
	modified := append([]SemanticToken(nil), baseTokens...)
	modified[1].TokenType = 3
	modified[1].Modifiers = 1

	tests := []struct {
		name        string
		old, new    []SemanticToken
		start       uint32
		deleteCount uint32
		dataLen     int
		noEdits     bool
	}{
		{name: "unchanged", old: baseTokens, new: baseTokens, noEdits: true},
		{name: "modified token", old: baseTokens, new: modified, start: 8, deleteCount: 2, dataLen: 2},
		{name: "added at end", old: baseTokens[:2], new: baseTokens, start: 10, deleteCount: 0, dataLen: 10},
		{name: "removed from start", old: baseTokens, new: baseTokens[2:], start: 0, deleteCount: 10, dataLen: 0},
		{name: "all removed", old: baseTokens, new: nil, start: 0, deleteCount: 20, dataLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeSemanticTokensDelta(tt.old, tt.new, "r2")

			require.True(t, result.IsDelta)
			require.NotNil(t, result.Delta)
			assert.Nil(t, result.Full)
			assert.Equal(t, "r2", *result.Delta.ResultId)
			require.NotNil(t, result.Delta.Edits)

			if tt.noEdits {
				assert.Empty(t, result.Delta.Edits)
				return
			}

			require.Len(t, result.Delta.Edits, 1)
			edit := result.Delta.Edits[0]
			assert.Equal(t, tt.start, edit.Start)
			assert.Equal(t, tt.deleteCount, edit.DeleteCount)
			assert.Len(t, edit.Data, tt.dataLen)
		})
	}
}

func TestComputeSemanticTokensDelta_FullFallback(t *testing.T) {
	t.Run("no previous tokens", func(t *testing.T) {
		result := ComputeSemanticTokensDelta(nil, baseTokens, "r1")

		assert.False(t, result.IsDelta)
		require.NotNil(t, result.Full)
		assert.Equal(t, "r1", *result.Full.ResultID)
		assert.Equal(t, EncodeSemanticTokens(baseTokens), result.Full.Data)
	})

	t.Run("delta too large", func(t *testing.T) {
		replaced := []SemanticToken{
			{Line: 5, StartChar: 1, Length: 2, TokenType: 7},
			{Line: 6, StartChar: 2, Length: 3, TokenType: 8},
		}

		result := ComputeSemanticTokensDelta(baseTokens, replaced, "r3")

		assert.False(t, result.IsDelta)
		require.NotNil(t, result.Full)
		assert.Equal(t, "r3", *result.Full.ResultID)
	})
}

func TestComputeEdits_AppliesToOldEncoding(t *testing.T) {
	newTokens := append([]SemanticToken(nil), baseTokens[:3]...)
	newTokens = append(newTokens, SemanticToken{Line: 1, StartChar: 8, Length: 2, TokenType: 4})
	newTokens = append(newTokens, baseTokens[3])

	oldEncoded := EncodeSemanticTokens(baseTokens)
	newEncoded := EncodeSemanticTokens(newTokens)

	edits := computeEdits(oldEncoded, newEncoded)
	require.Len(t, edits, 1)

	e := edits[0]
	applied := append([]uint32(nil), oldEncoded[:e.Start]...)
	applied = append(applied, e.Data...)
	applied = append(applied, oldEncoded[e.Start+e.DeleteCount:]...)

	assert.Equal(t, newEncoded, applied)
}
