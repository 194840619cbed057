package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Mindburn-Labs/goalkeeper/pkg/goalkeeper"
	"github.com/Mindburn-Labs/goalkeeper/pkg/kv"
)

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parseLabel parses args and joins the remaining parts into one label.
// ok is false after a usage error has been reported.
func parseLabel(fs *flag.FlagSet, args []string, stderr io.Writer) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}
	if fs.NArg() == 0 {
		_, _ = fmt.Fprintf(stderr, "Usage: goalkeeper %s [flags] PART...\n", fs.Name())
		return "", false
	}
	return strings.Join(fs.Args(), ":"), true
}

// goalFromArgs handles commands without flags of their own.
func goalFromArgs(name string, gk *goalkeeper.Config, args []string, stderr io.Writer) (*goalkeeper.Goal, bool) {
	label, ok := parseLabel(newFlagSet(name, stderr), args, stderr)
	if !ok {
		return nil, false
	}
	return goalkeeper.NewGoal(label, goalkeeper.WithSettings(gk)), true
}

func fail(stderr io.Writer, err error) int {
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

func runMetCmd(ctx context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("met", stderr)
	expiration := fs.Duration("expiration", 0, "record lifetime (default: configured expiration)")
	label, ok := parseLabel(fs, args, stderr)
	if !ok {
		return exitUsage
	}

	opts := []goalkeeper.Option{goalkeeper.WithSettings(gk)}
	if *expiration != 0 {
		opts = append(opts, goalkeeper.WithExpiration(*expiration))
	}
	g := goalkeeper.NewGoal(label, opts...)
	if _, err := g.MarkMet(ctx); err != nil {
		return fail(stderr, err)
	}
	_, _ = fmt.Fprintln(stdout, g.Key())
	return exitOK
}

func runCheckCmd(ctx context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int {
	g, ok := goalFromArgs("check", gk, args, stderr)
	if !ok {
		return exitUsage
	}
	met, err := g.IsMet(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	if !met {
		_, _ = fmt.Fprintln(stdout, "unmet")
		return exitUnmet
	}
	_, _ = fmt.Fprintln(stdout, "met")
	return exitOK
}

func runMetAtCmd(ctx context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int {
	g, ok := goalFromArgs("met-at", gk, args, stderr)
	if !ok {
		return exitUsage
	}
	at, met, err := g.MetAt(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	if !met {
		_, _ = fmt.Fprintln(stdout, "unmet")
		return exitUnmet
	}
	_, _ = fmt.Fprintln(stdout, at.Format(time.RFC3339Nano))
	return exitOK
}

func runTTLCmd(ctx context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int {
	g, ok := goalFromArgs("ttl", gk, args, stderr)
	if !ok {
		return exitUsage
	}
	d, err := g.TTL(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	switch d {
	case kv.TTLMissing:
		_, _ = fmt.Fprintln(stdout, "missing")
		return exitUnmet
	case kv.TTLPersistent:
		_, _ = fmt.Fprintln(stdout, "persistent")
	default:
		_, _ = fmt.Fprintln(stdout, d)
	}
	return exitOK
}

func runKeyCmd(_ context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int {
	g, ok := goalFromArgs("key", gk, args, stderr)
	if !ok {
		return exitUsage
	}
	_, _ = fmt.Fprintln(stdout, g.Key())
	return exitOK
}

func runClearCmd(ctx context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int {
	g, ok := goalFromArgs("clear", gk, args, stderr)
	if !ok {
		return exitUsage
	}
	if err := g.Clear(ctx); err != nil {
		return fail(stderr, err)
	}
	_, _ = fmt.Fprintln(stdout, g.Key())
	return exitOK
}

// runSetCmd treats every argument as a whole label.
func runSetCmd(ctx context.Context, gk *goalkeeper.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "Usage: goalkeeper set LABEL...")
		return exitUsage
	}
	set := goalkeeper.NewSet(goalkeeper.WithSettings(gk))
	for _, label := range args {
		set.Add(label)
	}

	met, err := set.Met(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	unmet, err := set.Unmet(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	_, _ = fmt.Fprintf(stdout, "met: %s\n", strings.Join(met.Labels(), " "))
	_, _ = fmt.Fprintf(stdout, "unmet: %s\n", strings.Join(unmet.Labels(), " "))

	at, ok, err := set.MetAt(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	if !ok {
		return exitUnmet
	}
	_, _ = fmt.Fprintf(stdout, "met_at: %s\n", at.Format(time.RFC3339Nano))
	return exitOK
}
