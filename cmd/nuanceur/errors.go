package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// errBuildFailed is returned after diagnostics were already printed.
var errBuildFailed = errors.New("build failed")

func errInvalidFlag(name, value, expected string) error {
	return fmt.Errorf("invalid --%s value %q (expected %s)", name, value, expected)
}

func printError(w io.Writer, err error) {
	if errors.Is(err, errBuildFailed) {
		return
	}
	fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
}
