package builtins

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

type entry struct {
	Notes       []string `json:"notes"`
	ReturnValue string   `json:"returnvalue"`
	Signature   string   `json:"signature"`
	Text        string   `json:"text"`
}

// ReturnType maps a TYPE_* constant of the data file to a type name.
func ReturnType(value string) string {
	switch value {
	case "TYPE_CSTRING":
		return "CString"
	case "TYPE_INT":
		return "int"
	case "TYPE_CTABLE":
		return "CTable"
	case "TYPE_MONEY":
		return "CMoney"
	case "TYPE_DATETIME":
		return "CDateTime"
	case "TYPE_DOUBLE":
		return "double"
	case "TYPE_BOOL":
		return "BOOL"
	case "void":
		return "void"
	}

	return "undefined (" + value + ")"
}

// Load reads a signature data file. "__BASE__" inside notes is replaced by
// basePath.
func Load(r io.Reader, basePath string) (*Table, error) {
	var sections map[string]map[string]entry
	if err := json.NewDecoder(r).Decode(&sections); err != nil {
		return nil, fmt.Errorf("decoding signature file: %w", err)
	}

	table := NewTable()
	for _, context := range Contexts {
		for name, e := range sections[context] {
			sig := &Signature{
				Name:       name,
				ReturnType: ReturnType(e.ReturnValue),
				InsertText: e.Text,
			}

			for _, note := range e.Notes {
				sig.Notes = append(sig.Notes, strings.ReplaceAll(note, "__BASE__", basePath))
			}

			// "void" and similar placeholders mean no parameters
			if len(e.Signature) > 3 {
				for _, label := range strings.Split(e.Signature, ",") {
					label = strings.TrimSpace(label)
					sig.Parameters = append(sig.Parameters, Parameter{
						Label:    label,
						Required: strings.HasSuffix(label, "(required)"),
					})
				}
			}

			table.Add(context, sig)
		}
	}

	return table, nil
}

// LoadFile opens path on fs and loads it with Load.
func LoadFile(fs afero.Fs, path, basePath string) (*Table, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening signature file: %w", err)
	}
	defer f.Close()

	table, err := Load(f, basePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return table, nil
}
