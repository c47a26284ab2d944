package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fbuiltins "github.com/CWBudde/futurec-lsp/internal/builtins"
	"github.com/CWBudde/futurec-lsp/internal/lsp"
	"github.com/CWBudde/futurec-lsp/internal/workspace"
)

// errProblems makes the check command exit with status 1.
var errProblems = errors.New("problems found")

var checkCmd = &cobra.Command{
	Use:   "check [flags] files...",
	Short: "Report the errors of every script in the given files",
	Long: `Analyze every script of the given files and print the Error findings
as file:line:column: message.

The files form one corpus, so includes and hook blocks resolve across all
of them. Pass --builtins to check parser-function calls against a signature
file; without it every parser-function call is reported as unknown.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (unreadable files or signature file)`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()

		table := fbuiltins.NewTable()
		if path := viper.GetString("builtins"); path != "" {
			loaded, err := fbuiltins.LoadFile(fs, path, filepath.Dir(path))
			if err != nil {
				return fmt.Errorf("loading builtins: %w", err)
			}
			table = loaded
		}

		problems, err := runCheck(fs, table, args, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s): %w", problems, errProblems)
		}

		return nil
	},
}

// runCheck reads paths into one corpus and writes the Error diagnostics of
// each file to out. It returns the number of diagnostics written.
func runCheck(fs afero.Fs, registry fbuiltins.Registry, paths []string, out io.Writer) (int, error) {
	files := workspace.NewFiles()
	uris := make([]string, 0, len(paths))

	for _, path := range paths {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}

		uri := workspace.PathToURI(path)
		files.Set(uri, string(content))
		uris = append(uris, uri)
	}

	problems := 0
	for i, uri := range uris {
		for _, d := range lsp.DiagnoseDocument(files, registry, uri, true) {
			fmt.Fprintf(out, "%s:%d:%d: %s\n", paths[i], d.Range.Start.Line+1, d.Range.Start.Character+1, d.Message)
			problems++
		}
	}

	return problems, nil
}

func exitCode(err error) int {
	if errors.Is(err, errProblems) {
		return 1
	}

	return 2
}
