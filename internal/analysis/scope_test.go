package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeStack_InnerWins(t *testing.T) {
	scopes := NewScopeStack()
	scopes.Declare(&Variable{Name: "x", Type: "int"})

	scopes.Push()
	scopes.Declare(&Variable{Name: "x", Type: "CString"})

	v, ok := scopes.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "CString", v.Type)
	assert.Equal(t, 1, v.Level)

	outer, ok := scopes.LookupOuter("x")
	require.True(t, ok)
	assert.Equal(t, "int", outer.Type)

	require.NoError(t, scopes.Pop())

	v, ok = scopes.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "int", v.Type)
}

func TestScopeStack_Depth(t *testing.T) {
	scopes := NewScopeStack()
	assert.Equal(t, 0, scopes.Depth())

	scopes.Push()
	scopes.Push()
	assert.Equal(t, 2, scopes.Depth())

	require.NoError(t, scopes.Pop())
	require.NoError(t, scopes.Pop())
	assert.ErrorIs(t, scopes.Pop(), ErrGlobalScope)
	assert.Equal(t, 0, scopes.Depth())
}

func TestScopeStack_Functions(t *testing.T) {
	scopes := NewScopeStack()
	scopes.Push()
	scopes.DeclareFunction(0, "Add")
	scopes.DeclareFunction(7, "Ignored")

	assert.True(t, scopes.HasFunction("Add"))
	require.NoError(t, scopes.Pop())
	assert.True(t, scopes.HasFunction("Add"))
	assert.False(t, scopes.HasFunction("Ignored"))
}

func TestFrame_Ordered(t *testing.T) {
	scopes := NewScopeStack()
	for _, name := range []string{"c", "a", "b", "a"} {
		scopes.Declare(&Variable{Name: name})
	}

	var names []string
	for _, v := range scopes.Frame(0).Ordered() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
	assert.Nil(t, scopes.Frame(3))
}

func TestTypeByPrefix(t *testing.T) {
	tests := map[string]string{
		"strName":  "CString",
		"dtStart":  "CDateTime",
		"bDone":    "BOOL",
		"tData":    "CTable",
		"m_tRows":  "CTable",
		"mAmount":  "CMoney",
		"dFactor":  "double",
		"nRow":     "int",
		"whatever": "int",
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, TypeByPrefix(name))
		})
	}
}

func TestDeclareStandardVariables(t *testing.T) {
	scopes := NewScopeStack()
	DeclareStandardVariables(scopes)

	for name, typ := range map[string]string{
		"TRUE":         "BOOL",
		"m_Rec":        "CTable",
		"m_RecNr":      "int",
		"STRING_QUOTE": "CString",
		"DLG_EDIT":     "int",
	} {
		v, ok := scopes.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, v.Type, name)
		assert.Nil(t, v.Token)
	}
}
