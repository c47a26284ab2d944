package lsp

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"unicode/utf8"

	"github.com/CWBudde/futurec-lsp/internal/analysis"
	"github.com/CWBudde/futurec-lsp/internal/server"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var errNoSymbol = errors.New("no symbol found at cursor position")

// renameTarget resolves the renamable word under the cursor.
func (r *request) renameTarget() (analysis.CursorInfo, error) {
	info := r.cursor(false)

	switch info.Kind {
	case analysis.CursorUserFunction:
		info.Offset += len(info.Word) - len(info.FunctionName())
		info.Word = info.FunctionName()
		return info, nil

	case analysis.CursorVariable:
		if ok, reason := canRenameSymbol(info.Word); !ok {
			return info, fmt.Errorf("cannot rename '%s': %s", info.Word, reason)
		}

		_, si := r.analyze()
		v, ok := si.LookupVariable(info.Word)
		if !ok {
			return info, fmt.Errorf("'%s' is not a declared variable", info.Word)
		}

		if v.Token == nil {
			return info, fmt.Errorf("cannot rename '%s': predefined variable", info.Word)
		}

		return info, nil
	}

	return info, errNoSymbol
}

// Rename handles the textDocument/rename request. Variables are renamed
// within the script under the cursor, user functions across the corpus.
func Rename(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	srv, ok := getServer("Rename")
	if !ok {
		return nil, errors.New("server instance not available")
	}

	uri := params.TextDocument.URI
	newName := params.NewName

	log.Printf("Rename request at %s line %d, character %d (newName=%s)\n",
		uri, params.Position.Line, params.Position.Character, newName)

	r, ok := newRequest(srv, uri, params.Position)
	if !ok {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	if err := validateName(newName); err != nil {
		return nil, err
	}

	info, err := r.renameTarget()
	if err != nil {
		return nil, err
	}

	var locations []protocol.Location
	if info.Kind == analysis.CursorUserFunction {
		locations = append(locationsOf(r.functionDefinitions(info.Word)), r.callReferences(info.Word)...)
	} else {
		locations = r.variableReferences(info.Word, true)
	}

	if len(locations) == 0 {
		return nil, fmt.Errorf("no references found for symbol '%s'", info.Word)
	}

	log.Printf("Renaming %s to %s at %d location(s)\n", info.Word, newName, len(locations))

	return buildWorkspaceEdit(locations, newName, srv.Documents()), nil
}

// PrepareRename handles the textDocument/prepareRename request.
func PrepareRename(context *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	srv, ok := getServer("PrepareRename")
	if !ok {
		return nil, errors.New("server instance not available")
	}

	uri := params.TextDocument.URI
	log.Printf("PrepareRename request at %s line %d, character %d\n",
		uri, params.Position.Line, params.Position.Character)

	r, ok := newRequest(srv, uri, params.Position)
	if !ok {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	info, err := r.renameTarget()
	if err != nil {
		log.Printf("PrepareRename rejected: %v\n", err)
		return nil, err
	}

	return protocol.RangeWithPlaceholder{
		Range:       r.wordRange(info),
		Placeholder: info.Word,
	}, nil
}

// canRenameSymbol rejects keywords, type names and namespaces.
func canRenameSymbol(name string) (bool, string) {
	switch {
	case analysis.IsKeyword(name):
		return false, "keyword"
	case analysis.IsType(name):
		return false, "type name"
	case analysis.IsNamespace(name):
		return false, "namespace"
	}

	return true, ""
}

func validateName(name string) error {
	if name == "" {
		return errors.New("new name cannot be empty")
	}

	if first, _ := utf8.DecodeRuneInString(name); first >= '0' && first <= '9' {
		return fmt.Errorf("'%s' is not a valid identifier", name)
	}

	for _, r := range name {
		if !analysis.IsIdentifierRune(r) {
			return fmt.Errorf("'%s' is not a valid identifier", name)
		}
	}

	if ok, reason := canRenameSymbol(name); !ok {
		return fmt.Errorf("'%s' is a %s", name, reason)
	}

	return nil
}

// buildWorkspaceEdit groups the edits by document. Open documents carry
// their version.
func buildWorkspaceEdit(locations []protocol.Location, newName string, docs *server.DocumentStore) *protocol.WorkspaceEdit {
	editsByURI := make(map[protocol.DocumentUri][]any)
	var uris []string

	for _, loc := range locations {
		if _, ok := editsByURI[loc.URI]; !ok {
			uris = append(uris, loc.URI)
		}

		editsByURI[loc.URI] = append(editsByURI[loc.URI], protocol.TextEdit{Range: loc.Range, NewText: newName})
	}

	sort.Strings(uris)

	documentChanges := make([]any, 0, len(uris))
	for _, uri := range uris {
		var version *protocol.Integer
		if doc, exists := docs.Get(uri); exists {
			v := protocol.Integer(doc.Version)
			version = &v
		}

		documentChanges = append(documentChanges, protocol.TextDocumentEdit{
			TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
				Version:                version,
			},
			Edits: editsByURI[uri],
		})
	}

	log.Printf("Built WorkspaceEdit with %d document(s) and %d total edit(s)\n",
		len(documentChanges), len(locations))

	return &protocol.WorkspaceEdit{DocumentChanges: documentChanges}
}
