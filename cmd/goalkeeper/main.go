package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mindburn-Labs/goalkeeper/pkg/config"
	"github.com/Mindburn-Labs/goalkeeper/pkg/goalkeeper"
)

// Exit codes.
const (
	exitOK    = 0
	exitUnmet = 1
	exitUsage = 2
	exitError = 3
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

type command func(ctx context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int

var commands = map[string]command{
	"met":    runMetCmd,
	"check":  runCheckCmd,
	"met-at": runMetAtCmd,
	"ttl":    runTTLCmd,
	"key":    runKeyCmd,
	"clear":  runClearCmd,
	"set":    runSetCmd,
}

// Run is the entrypoint for testing
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return exitUsage
	}

	switch args[1] {
	case "help", "--help", "-h":
		printUsage(stdout)
		return exitOK
	case "version", "--version":
		return runVersionCmd(stdout, stderr)
	}

	cmd, ok := commands[args[1]]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return exitError
	}
	logger := newLogger(cfg, stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gk, cleanup, err := openSettings(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "open backend failed", "backend", cfg.Backend, "error", err)
		_, _ = fmt.Fprintf(stderr, "backend: %v\n", err)
		return exitError
	}
	defer cleanup()

	return cmd(ctx, gk, args[2:], stdout, stderr)
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("GOALKEEPER_CONFIG"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage: goalkeeper <command> [flags] [label parts...]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Commands:")
	_, _ = fmt.Fprintln(w, "  met [-expiration d] PART...  Mark the goal met (no-op if already met)")
	_, _ = fmt.Fprintln(w, "  check PART...                Print met/unmet")
	_, _ = fmt.Fprintln(w, "  met-at PART...               Print when the goal was met")
	_, _ = fmt.Fprintln(w, "  ttl PART...                  Print the remaining lifetime of the record")
	_, _ = fmt.Fprintln(w, "  key PART...                  Print the store key")
	_, _ = fmt.Fprintln(w, "  clear PART...                Remove the record")
	_, _ = fmt.Fprintln(w, "  set LABEL...                 Report on a set of goals")
	_, _ = fmt.Fprintln(w, "  version                      Print the version")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "PARTs are joined with ':' into one label.")
	_, _ = fmt.Fprintln(w, "Exit codes: 0 ok/met, 1 unmet, 2 usage, 3 error.")
	_, _ = fmt.Fprintln(w, "Configuration: GOALKEEPER_CONFIG (YAML file) and environment, see pkg/config.")
	_, _ = fmt.Fprintln(w, "Backends: redis (default), sqlite, postgres, memory. The memory backend")
	_, _ = fmt.Fprintln(w, "lives for one invocation only and is meant for testing.")
}
