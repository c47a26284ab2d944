package analysis

import (
	"log"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DeltaThreshold is the share of the full encoding above which a delta is
// not worth sending.
const DeltaThreshold = 0.7

// SemanticTokensDeltaResult holds either a delta or a full response.
type SemanticTokensDeltaResult struct {
	IsDelta bool
	Delta   *protocol.SemanticTokensDelta
	Full    *protocol.SemanticTokens
}

func fullResult(tokens []SemanticToken, resultID string) *SemanticTokensDeltaResult {
	return &SemanticTokensDeltaResult{
		Full: &protocol.SemanticTokens{ResultID: &resultID, Data: EncodeSemanticTokens(tokens)},
	}
}

func deltaResult(edits []protocol.SemanticTokensEdit, resultID string) *SemanticTokensDeltaResult {
	return &SemanticTokensDeltaResult{
		IsDelta: true,
		Delta:   &protocol.SemanticTokensDelta{ResultId: &resultID, Edits: edits},
	}
}

// ComputeSemanticTokensDelta diffs two token lists. Without previous tokens,
// or when the edit is larger than DeltaThreshold of the new encoding, the
// full token list is returned instead.
func ComputeSemanticTokensDelta(oldTokens, newTokens []SemanticToken, newResultID string) *SemanticTokensDeltaResult {
	if len(oldTokens) == 0 {
		return fullResult(newTokens, newResultID)
	}

	if len(newTokens) == 0 {
		return deltaResult([]protocol.SemanticTokensEdit{{
			Start:       0,
			DeleteCount: uint32(len(oldTokens) * 5),
			Data:        []uint32{},
		}}, newResultID)
	}

	oldEncoded := EncodeSemanticTokens(oldTokens)
	newEncoded := EncodeSemanticTokens(newTokens)
	edits := computeEdits(oldEncoded, newEncoded)

	if size := deltaSize(edits); float64(size) > float64(len(newEncoded))*DeltaThreshold {
		log.Printf("Semantic token delta too large (%d vs %d), sending full tokens\n", size, len(newEncoded))
		return fullResult(newTokens, newResultID)
	}

	return deltaResult(edits, newResultID)
}

// computeEdits returns a single edit replacing everything between the
// common prefix and the common suffix, or no edit when nothing changed.
func computeEdits(oldEncoded, newEncoded []uint32) []protocol.SemanticTokensEdit {
	prefix := 0
	for prefix < len(oldEncoded) && prefix < len(newEncoded) && oldEncoded[prefix] == newEncoded[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(oldEncoded)-prefix && suffix < len(newEncoded)-prefix &&
		oldEncoded[len(oldEncoded)-1-suffix] == newEncoded[len(newEncoded)-1-suffix] {
		suffix++
	}

	if prefix+suffix >= max(len(oldEncoded), len(newEncoded)) {
		return []protocol.SemanticTokensEdit{}
	}

	return []protocol.SemanticTokensEdit{{
		Start:       uint32(prefix),
		DeleteCount: uint32(len(oldEncoded) - suffix - prefix),
		Data:        newEncoded[prefix : len(newEncoded)-suffix],
	}}
}

// deltaSize counts the integers an edit list puts on the wire.
func deltaSize(edits []protocol.SemanticTokensEdit) int {
	size := 0
	for _, edit := range edits {
		size += 2 + len(edit.Data)
	}

	return size
}
