package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func renameAt(t *testing.T, pos protocol.Position, newName string) (*protocol.WorkspaceEdit, error) {
	t.Helper()

	return Rename(nil, &protocol.RenameParams{
		TextDocumentPositionParams: textDocumentPosition(mainURI, pos),
		NewName:                    newName,
	})
}

// editsOf flattens the document changes of edit by URI.
func editsOf(t *testing.T, edit *protocol.WorkspaceEdit) map[string][]protocol.TextEdit {
	t.Helper()

	result := map[string][]protocol.TextEdit{}
	for _, change := range edit.DocumentChanges {
		docEdit, ok := change.(protocol.TextDocumentEdit)
		require.True(t, ok, "unexpected change type %T", change)

		for _, e := range docEdit.Edits {
			textEdit, ok := e.(protocol.TextEdit)
			require.True(t, ok)
			result[docEdit.TextDocument.URI] = append(result[docEdit.TextDocument.URI], textEdit)
		}
	}

	return result
}

func TestRename_Variable(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	edit, err := renameAt(t, positionOf(t, mainDoc, "nCount = nLib", 3), "nTotal")
	require.NoError(t, err)
	require.NotNil(t, edit)
	require.Len(t, edit.DocumentChanges, 1)

	docEdit := edit.DocumentChanges[0].(protocol.TextDocumentEdit)
	require.NotNil(t, docEdit.TextDocument.Version)
	assert.Equal(t, protocol.Integer(1), *docEdit.TextDocument.Version)

	edits := editsOf(t, edit)[mainURI]
	require.Len(t, edits, 3)
	for _, e := range edits {
		assert.Equal(t, "nTotal", e.NewText)
	}
	assert.Equal(t, rng(5, 4, 5, 10), edits[0].Range)
	assert.Equal(t, rng(14, 9, 14, 15), edits[2].Range)
}

func TestRename_UserFunction(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)
	openDocument(t, otherURI, "SCRIPT:3,Other\nCall:Add(1, 2);\nENDSCRIPT\n")

	edit, err := renameAt(t, positionOf(t, mainDoc, "Call:Add", 6), "Sum")
	require.NoError(t, err)

	edits := editsOf(t, edit)
	require.Len(t, edits[mainURI], 2)
	assert.Equal(t, rng(11, 13, 11, 16), edits[mainURI][0].Range)
	assert.Equal(t, rng(14, 5, 14, 8), edits[mainURI][1].Range)

	require.Len(t, edits[otherURI], 1)
	assert.Equal(t, rng(1, 5, 1, 8), edits[otherURI][0].Range)
}

func TestRename_Errors(t *testing.T) {
	newTestServer(t)
	doc := mainDoc + "SCRIPT:4,X\nm_Rec.Clear();\nnUndeclared = 1;\nif(TRUE) { };\nENDSCRIPT\n"
	openDocument(t, mainURI, doc)

	tests := []struct {
		name    string
		needle  string
		newName string
		wantErr string
	}{
		{"predefined variable", "m_Rec", "m_Other", "predefined"},
		{"undeclared variable", "nUndeclared", "nX", "not a declared variable"},
		{"keyword", "if(TRUE)", "nX", "keyword"},
		{"nothing", "{ };", "nX", errNoSymbol.Error()},
		{"invalid name", "nCount = nLib", "9x", "not a valid identifier"},
		{"reserved name", "nCount = nLib", "while", "keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renameAt(t, positionOf(t, doc, tt.needle, 0), tt.newName)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPrepareRename(t *testing.T) {
	newTestServer(t)
	openDocument(t, mainURI, mainDoc)

	result, err := PrepareRename(nil, &protocol.PrepareRenameParams{
		TextDocumentPositionParams: textDocumentPosition(mainURI, positionOf(t, mainDoc, "Call:Add", 6)),
	})
	require.NoError(t, err)

	prepared, ok := result.(protocol.RangeWithPlaceholder)
	require.True(t, ok, "unexpected result type %T", result)
	assert.Equal(t, "Add", prepared.Placeholder)
	assert.Equal(t, rng(14, 5, 14, 8), prepared.Range)

	_, err = PrepareRename(nil, &protocol.PrepareRenameParams{
		TextDocumentPositionParams: textDocumentPosition(mainURI, protocol.Position{Line: 2}),
	})
	assert.ErrorIs(t, err, errNoSymbol)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"nTotal", false},
		{"m_strName", false},
		{"nÄnderung", false},
		{"", true},
		{"1abc", true},
		{"n-x", true},
		{"n x", true},
		{"int", true},
		{"if", true},
		{"S", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
