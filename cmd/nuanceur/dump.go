package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nuanceur/internal/diag"
	"nuanceur/internal/manifest"
	"nuanceur/internal/shader"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <manifest.toml>",
	Short: "Build one manifest and print its IR",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().Bool("skip-lines", false, "omit source line markers")
	dumpCmd.Flags().Bool("no-validate", false, "print even if the statement stream is malformed")
}

func runDump(cmd *cobra.Command, args []string) error {
	skipLines, err := cmd.Flags().GetBool("skip-lines")
	if err != nil {
		return err
	}
	noValidate, err := cmd.Flags().GetBool("no-validate")
	if err != nil {
		return err
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiags)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	defer func() {
		if bag.Len() > 0 {
			printDiagnostics(cmd.ErrOrStderr(), bag, workingDir())
		}
	}()

	file, ok := manifest.Load(args[0], rep)
	if !ok {
		return errBuildFailed
	}
	b, ok := file.Build(rep)
	if !ok {
		return errBuildFailed
	}
	if !noValidate {
		if err := b.Validate(); err != nil {
			diag.ReportError(rep, diag.IRInvalid, diag.Pos{Path: args[0]}, err.Error())
			return errBuildFailed
		}
	}
	if err := shader.Dump(cmd.OutOrStdout(), b, shader.DumpOptions{SkipLines: skipLines}); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}
