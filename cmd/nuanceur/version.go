package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nuanceur/internal/version"
)

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show nuanceur build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		format, _ := f.GetString("format")
		hash, _ := f.GetBool("hash")
		date, _ := f.GetBool("date")
		full, _ := f.GetBool("full")
		opts := versionOptions{
			format:   strings.ToLower(format),
			showHash: hash || full,
			showDate: date || full,
		}
		switch opts.format {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), opts)
			return nil
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), opts)
		default:
			return errInvalidFlag("format", format, "pretty|json")
		}
	},
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show all recorded build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func renderVersionPretty(out io.Writer, opts versionOptions) {
	fmt.Fprintf(out, "nuanceur %s\n", version.Pretty())
	if opts.showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.ShortCommit()))
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, opts versionOptions) error {
	info := version.Current()
	if !opts.showHash {
		info.GitCommit = ""
	} else {
		info.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if !opts.showDate {
		info.BuildDate = ""
	} else {
		info.BuildDate = valueOrUnknown(info.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
