package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tocDoc = "10 Start\n30 Later\n\nSCRIPT:10,Start\nint a;\nENDSCRIPT\nSCRIPT:30,Later\nint b;\nENDSCRIPT\n"

const hookedDoc = "SCRIPT:10,A\n//ADDHOOK-1-X\nENDSCRIPT\n" +
	"INSERTINTOSCRIPT:10,//ADDHOOK-1-X\nfoo;\nENDSCRIPT\n" +
	"SCRIPT:11,B\nENDSCRIPT\n"

func TestFindInsertionPointForScript(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		number int
		hooks  []string
		want   int
	}{
		{"after lower neighbour", tocDoc, 20, nil, strings.Index(tocDoc, "SCRIPT:30")},
		{"before higher neighbour", tocDoc, 5, nil, 0},
		{"after last script", tocDoc, 40, nil, len(tocDoc)},
		{"no scripts", "just text", 1, nil, len("just text")},
		{"after existing hook block", hookedDoc, 10, []string{"//ADDHOOK-1-X"}, strings.Index(hookedDoc, "SCRIPT:11")},
		{"higher neighbour after ENDSCRIPT", hookedDoc, 10, nil, strings.Index(hookedDoc, "SCRIPT:11")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindInsertionPointForScript(tt.text, tt.number, tt.hooks))
		})
	}
}

func TestFindInsertionPointForHook(t *testing.T) {
	offset, exists := FindInsertionPointForHook(hookedDoc, 10, "//ADDHOOK-1-X")
	assert.True(t, exists)
	assert.Equal(t, strings.Index(hookedDoc, "INSERTINTOSCRIPT"), offset)

	offset, exists = FindInsertionPointForHook(hookedDoc, 10, "//ADDHOOK-2-Y")
	assert.False(t, exists)
	assert.Equal(t, strings.Index(hookedDoc, "SCRIPT:11"), offset)

	offset, exists = FindInsertionPointForHook(hookedDoc, 11, "//ADDHOOK-1-Z")
	assert.False(t, exists)
	assert.Equal(t, strings.Index(hookedDoc, "SCRIPT:11"), offset)
}

func TestFindInsertionPointForTOC(t *testing.T) {
	assert.Equal(t, strings.Index(tocDoc, "30 Later"), FindInsertionPointForTOC(tocDoc, 20, nil))
	assert.Equal(t, 0, FindInsertionPointForTOC(tocDoc, 5, nil))
	assert.Equal(t, strings.Index(tocDoc, "30 Later")+len("30 Later\n"), FindInsertionPointForTOC(tocDoc, 40, nil))
	assert.Equal(t, 0, FindInsertionPointForTOC("", 1, nil))

	toc := "10 Start\n10 //ADDHOOK-1-X\n30 Later\n"
	assert.Equal(t, strings.Index(toc, "30 Later"), FindInsertionPointForTOC(toc, 10, []string{"//ADDHOOK-1-X"}))
}
