package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"nuanceur/internal/diag"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	infoLabel    = color.New(color.FgCyan)
	codeColor    = color.New(color.Faint)
)

// printDiagnostics renders a bag as "path:line: severity[CODE]: message".
func printDiagnostics(w io.Writer, bag *diag.Bag, baseDir string) {
	bag.Sort()
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s%s: %s\n",
			relPos(d.Pos, baseDir),
			severityLabel(d.Severity),
			codeColor.Sprintf("[%s]", d.Code.ID()),
			d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s: note: %s\n", relPos(n.Pos, baseDir), n.Msg)
		}
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... %d more diagnostic(s) suppressed by --max-diagnostics\n", n)
	}
}

func relPos(p diag.Pos, baseDir string) string {
	p.Path = diag.RelativePath(p.Path, baseDir)
	return p.String()
}

func severityLabel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return errorLabel.Sprint("error")
	case diag.SevWarning:
		return warningLabel.Sprint("warning")
	default:
		return infoLabel.Sprint("info")
	}
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
