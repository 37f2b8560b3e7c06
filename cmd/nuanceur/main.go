package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nuanceur/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "nuanceur",
	Short:         "Shader IR builder and inspection tools",
	Long:          `nuanceur builds shader IR from TOML manifests, validates it and dumps it for backends`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		return setupTracing(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeTracing(cmd)
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(swizzleCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per shader")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|shader|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
}

func main() {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		// post-run hooks are skipped on error
		closeTracing(cmd)
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return errInvalidFlag("color", mode, "auto|on|off")
	}
	return nil
}
