package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"nuanceur/internal/irpack"
	"nuanceur/internal/observ"
	"nuanceur/internal/pipeline"
	"nuanceur/internal/shader"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] <manifest.toml|dir>...",
	Short: "Build shader manifests and write IR dumps",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().IntP("jobs", "j", 0, "parallel builds (0 = GOMAXPROCS)")
	buildCmd.Flags().StringP("out", "o", "build", "directory for <name>.ir dumps (empty disables writing)")
	buildCmd.Flags().String("cache", "", "snapshot cache directory (default $XDG_CACHE_HOME/nuanceur)")
	buildCmd.Flags().Bool("no-cache", false, "do not read or write the snapshot cache")
	buildCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	buildCmd.Flags().Bool("skip-lines", false, "omit source line markers from dumps")
}

type buildOptions struct {
	jobs      int
	out       string
	cacheDir  string
	noCache   bool
	ui        progressMode
	skipLines bool
	quiet     bool
	timings   bool
	maxDiags  int
}

func readBuildOptions(cmd *cobra.Command) (buildOptions, error) {
	var opts buildOptions
	var err error
	f := cmd.Flags()
	if opts.jobs, err = f.GetInt("jobs"); err != nil {
		return opts, err
	}
	if opts.out, err = f.GetString("out"); err != nil {
		return opts, err
	}
	if opts.cacheDir, err = f.GetString("cache"); err != nil {
		return opts, err
	}
	if opts.noCache, err = f.GetBool("no-cache"); err != nil {
		return opts, err
	}
	if opts.skipLines, err = f.GetBool("skip-lines"); err != nil {
		return opts, err
	}
	uiStr, err := f.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = parseProgressMode(uiStr); err != nil {
		return opts, err
	}
	pf := cmd.Root().PersistentFlags()
	if opts.quiet, err = pf.GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = pf.GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.maxDiags, err = pf.GetInt("max-diagnostics"); err != nil {
		return opts, err
	}
	return opts, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := readBuildOptions(cmd)
	if err != nil {
		return err
	}
	files, err := collectManifests(args)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		Files:          files,
		Jobs:           opts.jobs,
		OutDir:         opts.out,
		MaxDiagnostics: opts.maxDiags,
		Dump:           shader.DumpOptions{SkipLines: opts.skipLines},
	}
	if !opts.noCache {
		if req.Cache, err = openCache(opts.cacheDir); err != nil {
			return err
		}
	}
	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
		req.Timer = timer
	}

	var results []pipeline.Result
	if showProgress(opts.ui, len(files), opts.quiet) {
		results, err = runWithUI(cmd.Context(), "building shaders", req)
	} else {
		results, err = pipeline.Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := reportResults(out, cmd.ErrOrStderr(), results, opts.quiet)
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
	if failed > 0 {
		dumpTraceRing(cmd)
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d shader(s) failed\n", failed, len(results))
		return errBuildFailed
	}
	return nil
}

func reportResults(out, errOut io.Writer, results []pipeline.Result, quiet bool) int {
	wd := workingDir()
	failed := 0
	for i := range results {
		r := &results[i]
		if r.Bag != nil && r.Bag.Len() > 0 {
			printDiagnostics(errOut, r.Bag, wd)
		}
		if r.Failed() {
			failed++
			continue
		}
		if quiet {
			continue
		}
		note := ""
		if r.Cached {
			note = " (cached)"
		}
		if r.Output != "" {
			fmt.Fprintf(out, "%s -> %s%s\n", r.Name, r.Output, note)
		} else {
			fmt.Fprintf(out, "%s ok%s\n", r.Name, note)
		}
	}
	return failed
}

func openCache(dir string) (*irpack.Cache, error) {
	if dir == "" {
		def, err := irpack.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache directory: %w", err)
		}
		dir = def
	}
	return irpack.Open(dir)
}

// collectManifests expands directories to the *.toml files they contain.
// Order follows the arguments; files inside a directory are sorted.
func collectManifests(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			// let the pipeline report unreadable files as diagnostics
			files = append(files, arg)
			continue
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.toml"))
		if err != nil {
			return nil, err
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no manifests found")
	}
	return slices.Compact(files), nil
}
