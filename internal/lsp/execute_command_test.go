package lsp

import (
	"testing"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func execute(t *testing.T, command string, args ...any) (any, error) {
	t.Helper()

	return ExecuteCommand(nil, &protocol.ExecuteCommandParams{Command: command, Arguments: args})
}

func TestDecodeArgs(t *testing.T) {
	seven := 7

	tests := []struct {
		name    string
		args    []any
		want    documentArgs
		wantErr bool
	}{
		{
			name: "bare uri",
			args: []any{mainURI},
			want: documentArgs{URI: mainURI},
		},
		{
			name: "object",
			args: []any{map[string]any{
				"uri":      mainURI,
				"position": map[string]any{"line": float64(3), "character": float64(1)},
				"number":   float64(7),
				"hook":     "//ADDHOOK-7-X",
				"hooks":    []any{"//ADDHOOK-7-X"},
			}},
			want: documentArgs{
				URI:      mainURI,
				Position: &protocol.Position{Line: 3, Character: 1},
				Number:   &seven,
				Hook:     "//ADDHOOK-7-X",
				Hooks:    []string{"//ADDHOOK-7-X"},
			},
		},
		{name: "missing", args: nil, wantErr: true},
		{name: "missing uri", args: []any{map[string]any{"number": float64(1)}}, wantErr: true},
		{name: "wrong shape", args: []any{map[string]any{"uri": float64(1)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteCommand_ScriptNumber(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	tests := []struct {
		name string
		pos  protocol.Position
		want any
	}{
		{"first script", positionOf(t, mainDoc, "int nCount", 0), 1},
		{"second script", positionOf(t, mainDoc, "int nLib", 0), 2},
		{"hook block", positionOf(t, mainDoc, "nCount = 2", 0), 1},
		{"table of contents", protocol.Position{Line: 0, Character: 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := tt.pos
			result, err := execute(t, CommandScriptNumber, map[string]any{
				"uri":      mainURI,
				"position": map[string]any{"line": float64(pos.Line), "character": float64(pos.Character)},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestExecuteCommand_InsertionPoint(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	result, err := execute(t, CommandInsertionPoint, map[string]any{
		"uri":    mainURI,
		"number": float64(3),
	})
	require.NoError(t, err)

	point, ok := result.(InsertionPoint)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, protocol.Position{Line: 20, Character: 0}, point.Script)
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, point.TOC)
	assert.Nil(t, point.Hook)

	result, err = execute(t, CommandInsertionPoint, map[string]any{
		"uri":    mainURI,
		"number": float64(1),
		"hook":   "//ADDHOOK-1-AfterInit",
	})
	require.NoError(t, err)

	point = result.(InsertionPoint)
	require.NotNil(t, point.Hook)
	assert.True(t, point.HookExists)
	assert.Equal(t, protocol.Position{Line: 20, Character: 0}, *point.Hook)

	result, err = execute(t, CommandInsertionPoint, map[string]any{"uri": mainURI, "number": float64(0)})
	require.NoError(t, err)

	point = result.(InsertionPoint)
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, point.Script)
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, point.TOC)

	for _, number := range []float64{-1, 10001} {
		_, err := execute(t, CommandInsertionPoint, map[string]any{"uri": mainURI, "number": number})
		assert.ErrorContains(t, err, "out of range")
	}

	_, err = execute(t, CommandInsertionPoint, map[string]any{"uri": mainURI})
	assert.ErrorContains(t, err, "missing script number")

	_, err = execute(t, CommandInsertionPoint, map[string]any{"uri": otherURI, "number": float64(1)})
	assert.Error(t, err)
}

func TestCollectStatistics(t *testing.T) {
	srv := newTestServer(t)
	doc := "SCRIPT:1,A\nS.Select(\"T\", \"a\");\nS.Select(\"U\", \"b\");\nENDSCRIPT\nSCRIPT:2,B\nS.Select(\"T\", \"c\");\nENDSCRIPT\n"
	openDocument(t, mainURI, doc)

	usage := CollectStatistics(srv.Corpus(), srv.Builtins(), mainURI)

	require.Contains(t, usage, "S")
	selectUsage, ok := usage["S"]["Select"]
	require.True(t, ok)
	assert.Equal(t, 3, selectUsage.TimesUsed)
	assert.Len(t, selectUsage.FromTables, 2)

	result, err := execute(t, CommandCollectStatistics, mainURI)
	require.NoError(t, err)
	assert.IsType(t, map[string]map[string]analysis.FunctionUsage{}, result)
}

func TestExecuteCommand_DiagnoseAllScripts(t *testing.T) {
	newTestServer(t)
	doc := "SCRIPT:1,A\nif(TRUE) { } int x;\nENDSCRIPT\nSCRIPT:2,B\nint y; int y;\nENDSCRIPT\n"
	openDocument(t, mainURI, doc)
	ctx, rec := newRecorder()

	result, err := ExecuteCommand(ctx, &protocol.ExecuteCommandParams{
		Command:   CommandDiagnoseAllScripts,
		Arguments: []any{mainURI},
	})
	require.NoError(t, err)

	diagnostics, ok := result.([]protocol.Diagnostic)
	require.True(t, ok, "unexpected result type %T", result)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, analysis.MessageMissingSemicolon, diagnostics[0].Message)

	published, ok := rec.get(mainURI)
	require.True(t, ok)
	assert.Equal(t, diagnostics, published)
}

func TestExecuteCommand_Errors(t *testing.T) {
	newTestServer(t)

	_, err := execute(t, "futurec.unknown", mainURI)
	assert.ErrorContains(t, err, "unknown command")

	_, err = execute(t, CommandScriptNumber)
	assert.ErrorContains(t, err, "missing arguments")
}
