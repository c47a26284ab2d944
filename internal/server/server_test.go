package server

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/CWBudde/futurec-lsp/internal/script"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	store.Set("file:///b.cpp", &Document{URI: "file:///b.cpp", Text: "b", Version: 1})
	store.Set("file:///a.cpp", &Document{URI: "file:///a.cpp", Text: "a", Version: 1})

	assert.Equal(t, []string{"file:///a.cpp", "file:///b.cpp"}, store.List())

	doc, ok := store.Get("file:///a.cpp")
	require.True(t, ok)
	assert.Equal(t, "a", doc.Text)

	store.Delete("file:///a.cpp")
	_, ok = store.Get("file:///a.cpp")
	assert.False(t, ok)

	store.Clear()
	assert.Empty(t, store.List())
}

func TestCorpus(t *testing.T) {
	docs := NewDocumentStore()
	files := workspace.NewFiles()

	files.Set("file:///ws/a.cpp", "disk a")
	files.Set("file:///ws/b.txt", "disk b")
	docs.Set("file:///ws/a.cpp", &Document{Text: "open a"})
	docs.Set("untitled:1", &Document{Text: "scratch"})

	corpus := NewCorpus(docs, files)

	var _ script.Corpus = corpus

	text, ok := corpus.Text("file:///ws/a.cpp")
	require.True(t, ok)
	assert.Equal(t, "open a", text, "open documents shadow disk")

	text, ok = corpus.Text("file:///ws/b.txt")
	require.True(t, ok)
	assert.Equal(t, "disk b", text)

	_, ok = corpus.Text("file:///ws/none.cpp")
	assert.False(t, ok)

	assert.Equal(t, []string{"file:///ws/a.cpp", "file:///ws/b.txt", "untitled:1"}, corpus.FindAll(""))
	assert.Equal(t, []string{"file:///ws/a.cpp"}, corpus.FindAll("*.cpp"))

	onlyOpen := NewCorpus(docs, nil)
	assert.Equal(t, []string{"file:///ws/a.cpp", "untitled:1"}, onlyOpen.FindAll(""))
}

func TestSessions(t *testing.T) {
	sessions := NewSessions()

	a := sessions.Get("file:///a.cpp")
	assert.Same(t, a, sessions.Get("file:///a.cpp"))
	assert.NotSame(t, a, sessions.Get("file:///b.cpp"))
	assert.Equal(t, 2, sessions.Len())

	sessions.InvalidateMainScripts()

	sessions.Close("file:///a.cpp")
	assert.Equal(t, 1, sessions.Len())
	assert.NotSame(t, a, sessions.Get("file:///a.cpp"))
}

func TestCompletionCache(t *testing.T) {
	var cache CompletionCache

	_, ok := cache.Get(0)
	assert.False(t, ok)

	items := []protocol.CompletionItem{{Label: "nCount"}}
	cache.Set(4, items)

	got, ok := cache.Get(4)
	require.True(t, ok)
	assert.Equal(t, items, got)

	_, ok = cache.Get(5)
	assert.False(t, ok)

	cache.Invalidate()
	_, ok = cache.Get(4)
	assert.False(t, ok)
}

func TestServerConfig(t *testing.T) {
	srv := NewWithFs(afero.NewMemMapFs())

	cfg := srv.Config()
	assert.Equal(t, 100, cfg.MaxProblems)
	assert.True(t, cfg.DiagnoseOnOpen)
	assert.Equal(t, workspace.DefaultExtensions, cfg.Extensions)

	srv.UpdateConfig(func(c *Config) { c.MaxProblems = 5 })
	assert.Equal(t, 5, srv.Config().MaxProblems)

	cfg.MaxProblems = 50
	assert.Equal(t, 5, srv.Config().MaxProblems, "Config returns a copy")
}

func TestServerState(t *testing.T) {
	srv := NewWithFs(afero.NewMemMapFs())

	assert.False(t, srv.IsShuttingDown())
	srv.SetShuttingDown()
	assert.True(t, srv.IsShuttingDown())

	assert.False(t, srv.IndexReady())
	srv.SetIndexReady(true)
	assert.True(t, srv.IndexReady())

	srv.SetWorkspaceFolders([]string{"/ws"})
	assert.Equal(t, []string{"/ws"}, srv.GetWorkspaceFolders())

	assert.False(t, srv.SupportsSnippets())

	var caps protocol.ClientCapabilities
	require.NoError(t, json.Unmarshal([]byte(`{"textDocument":{"completion":{"completionItem":{"snippetSupport":true}}}}`), &caps))
	srv.SetClientCapabilities(&caps)
	assert.True(t, srv.SupportsSnippets())
}

func TestLoadBuiltins(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/functions.json",
		[]byte(`{"S": {"Select": {"notes": ["see __BASE__/s.html"], "returnvalue": "TYPE_INT", "signature": "CString strTable (required)"}}}`), 0o644))

	srv := NewWithFs(fs)
	require.NoError(t, srv.LoadBuiltins("/data/functions.json"))

	sig, ok := srv.Builtins().Lookup("S", "Select")
	require.True(t, ok)
	assert.Equal(t, []string{"see /data/s.html"}, sig.Notes)

	err := srv.LoadBuiltins("/data/missing.json")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, srv.Builtins().Len(), "a failed load keeps the old table")
}
