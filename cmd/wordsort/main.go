package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hazyhaar/wordsort/pkg/api"
	"github.com/hazyhaar/wordsort/pkg/config"
	"github.com/hazyhaar/wordsort/pkg/history"
	"github.com/hazyhaar/wordsort/pkg/preset"
	"github.com/hazyhaar/wordsort/pkg/wordsort"
)

var version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitEmpty   = 2
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(exitFailure)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "sort":
		os.Exit(runSort(args, os.Stdin, os.Stdout, os.Stderr))
	case "serve":
		os.Exit(runServe(args))
	case "mcp":
		os.Exit(runMCP(args))
	case "remote":
		os.Exit(runRemote(args, os.Stdin, os.Stdout, os.Stderr))
	case "history":
		os.Exit(runHistory(args, os.Stdout, os.Stderr))
	case "locales":
		for _, l := range wordsort.Locales() {
			fmt.Println(l)
		}
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		usage(os.Stderr)
		os.Exit(exitFailure)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: wordsort <command> [flags]

Commands:
  sort      Sort the words of a file, URL or stdin
  serve     Start the HTTP server (HTTP/3 and MCP over QUIC with quic: true)
  mcp       Serve MCP over stdio
  remote    Sort through a remote MCP-over-QUIC server
  history   Show recent sort runs
  locales   List collation locales
  version   Print the version
`)
}

// loadConfig reads the config file and builds the logger it configures.
func loadConfig(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path, nil)
	if err != nil {
		return cfg, slog.Default(), err
	}
	return cfg, cfg.NewLogger(), nil
}

// newService wires the sorter and presets. History is opened only when
// withHistory is set and a database path is configured; the caller closes it.
func newService(cfg config.Config, logger *slog.Logger, withHistory bool) (*api.Service, error) {
	reg := preset.NewRegistry(cfg.PresetsDir, cfg.Defaults)
	if err := reg.Load(); err != nil {
		return nil, err
	}
	svc := &api.Service{
		Sorter:       wordsort.NewSorter(cfg.DefaultLocale, logger),
		Presets:      reg,
		Logger:       logger,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
	if withHistory && cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return nil, err
		}
		svc.History = store
	}
	return svc, nil
}
