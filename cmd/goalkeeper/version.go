package main

import (
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func runVersionCmd(stdout, stderr io.Writer) int {
	v, err := semver.NewVersion(version)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid build version %q: %v\n", version, err)
		return exitError
	}
	_, _ = fmt.Fprintf(stdout, "goalkeeper v%s\n", v)
	return exitOK
}
