package analysis

import "strings"

// standardVariables are predeclared in the global frame of every run,
// grouped by type.
var standardVariables = map[string]string{
	"BOOL": "FALSE TRUE DIR_DOWN DIR_UP m_bBiciMode",
	"CTable": "m_Rec m_Rec2 m_tSelectionTable m_tFilterStateVars " +
		"mstrUnitTestResult1 mstrUnitTestResult2 mstrUnitTestResult3",
	"CString": "m_strFullProtocol m_strTextBox " +
		"STRING_TAB STRING_LINEBREAK STRING_QUOTE STRING_SLASH1 STRING_SLASH2 " +
		"STRING_BACKSLASH1 STRING_PARENTHESISOPEN STRING_PARENTHESISCLOSE " +
		"STRING_LINEFEED STRING_BRACKETOPEN STRING_BRACKETCLOSE STRING_BRACESOPEN " +
		"STRING_BRACESCLOSE STRING_RAUTE STRING_CARRIAGERETURN",
	"int": "m_RecNr m_TabNr m_nMandant m_nJahr m_nUnitTestID WEIGHT_NORMAL PAGE_PORTRAIT " +
		"TYPE_INT TYPE_MONEY TYPE_VARSTRING TYPE_FIXSTRING TYPE_BOOL TYPE_BYTE " +
		"TYPE_LINK TYPE_DOUBLE TYPE_CTABLE TYPE_DATETIME TYPE_PERCENT TYPE_SUBTABLE " +
		"DLG_EDIT DLG_COMBO DLG_LINK_COMBO DLG_EDIT_PASSWORD DLG_EDIT_MONEY " +
		"DLG_EDIT_DATE DLG_EDIT_PERCENT DLG_EDIT_NUMERIC DLG_LINK_SEARCH " +
		"DLG_EDIT_MULTILINE DLG_PICTURE DLG_CHECKBOX DLG_LISTVIEW DLG_STATIC DLG_LINE",
}

// standardTypeOrder keeps the declaration order stable.
var standardTypeOrder = []string{"BOOL", "CTable", "int", "CString"}

// DeclareStandardVariables adds the predeclared variables to the innermost
// frame of scopes.
func DeclareStandardVariables(scopes *ScopeStack) {
	for _, typ := range standardTypeOrder {
		for _, name := range strings.Fields(standardVariables[typ]) {
			scopes.Declare(&Variable{Name: name, Type: typ})
		}
	}
}

// TypeByPrefix derives the type of an implicitly declared variable from the
// Hungarian prefix of its name.
func TypeByPrefix(name string) string {
	switch {
	case strings.HasPrefix(name, "str"):
		return "CString"
	case strings.HasPrefix(name, "dt"):
		return "CDateTime"
	case strings.HasPrefix(name, "b"):
		return "BOOL"
	case strings.HasPrefix(name, "m_t"), strings.HasPrefix(name, "t"):
		return "CTable"
	case strings.HasPrefix(name, "m"):
		return "CMoney"
	case strings.HasPrefix(name, "d"):
		return "double"
	}

	return "int"
}
