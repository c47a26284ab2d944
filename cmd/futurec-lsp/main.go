package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	glspserver "github.com/tliron/glsp/server"

	"github.com/CWBudde/futurec-lsp/internal/lsp"
	"github.com/CWBudde/futurec-lsp/internal/server"
)

const (
	version = "0.1.0"
)

var (
	cfgFile  string
	tcpMode  bool
	tcpPort  int
	logFile  string
	builtins string
)

var rootCmd = &cobra.Command{
	Use:   "futurec-lsp",
	Short: "Language server for futurec scripts",
	Long: `futurec-lsp serves the Language Server Protocol for futurec business
scripts embedded in larger text files.

Without a subcommand the server speaks LSP over stdin/stdout. Use --tcp to
listen on a local port instead, which is handy for attaching a debugger.

Settings are read from .futurec-lsp.yaml in the working or home directory,
from FUTUREC_* environment variables and from the client's
workspace/didChangeConfiguration notifications, in that order.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("futurec-lsp version %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .futurec-lsp.yaml in the working or home directory)")
	rootCmd.PersistentFlags().StringVar(&builtins, "builtins", "", "parser-function signature file (JSON)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	rootCmd.Flags().BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	rootCmd.Flags().IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with --tcp)")

	_ = viper.BindPFlag("builtins", rootCmd.PersistentFlags().Lookup("builtins"))

	rootCmd.AddCommand(versionCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func serve() error {
	fmt.Fprintf(os.Stderr, "futurec-lsp version %s starting...\n", version)
	fmt.Fprintf(os.Stderr, "Transport: ")
	if tcpMode {
		fmt.Fprintf(os.Stderr, "TCP (port %d)\n", tcpPort)
	} else {
		fmt.Fprintf(os.Stderr, "STDIO\n")
	}

	if err := setupLogging(); err != nil {
		return err
	}

	lsp.ServerVersion = version

	srv := server.New()
	lsp.ApplySettings(srv, settings(viper.GetViper()))

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			log.Printf("Config file changed: %s\n", e.Name)
			lsp.ApplySettings(srv, settings(viper.GetViper()))
		})
		viper.WatchConfig()
	}

	handler := lsp.NewHandler()
	glspServer := glspserver.NewServer(&handler, lsp.ServerName, false)

	// Store our server instance for handler access
	lsp.SetServer(srv)

	if tcpMode {
		fmt.Fprintf(os.Stderr, "Starting TCP server on port %d...\n", tcpPort)
		if err := glspServer.RunTCP(fmt.Sprintf("127.0.0.1:%d", tcpPort)); err != nil {
			return fmt.Errorf("TCP server: %w", err)
		}

		return nil
	}

	fmt.Fprintf(os.Stderr, "Starting STDIO server...\n")
	if err := glspServer.RunStdio(); err != nil {
		return fmt.Errorf("STDIO server: %w", err)
	}

	return nil
}

// setupLogging configures the logging system based on command-line flags.
func setupLogging() error {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		log.SetOutput(f)
	} else {
		log.SetOutput(os.Stderr)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	return nil
}
