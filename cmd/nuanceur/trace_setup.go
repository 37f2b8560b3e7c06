package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nuanceur/internal/trace"
)

// setupTracing builds a tracer from the --trace* flags and stores it in the
// command context.
func setupTracing(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	output, err := pf.GetString("trace")
	if err != nil {
		return err
	}
	levelStr, err := pf.GetString("trace-level")
	if err != nil {
		return err
	}
	modeStr, err := pf.GetString("trace-mode")
	if err != nil {
		return err
	}
	formatStr, err := pf.GetString("trace-format")
	if err != nil {
		return err
	}
	ringSize, err := pf.GetInt("trace-ring-size")
	if err != nil {
		return err
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// --trace without a level means phase tracing.
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return fmt.Errorf("create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return nil
}

func closeTracing(cmd *cobra.Command) {
	tracer := trace.FromContext(cmd.Context())
	if err := tracer.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
	}
}

// dumpTraceRing writes the ring buffer to stderr after a failed build.
func dumpTraceRing(cmd *cobra.Command) {
	ring := trace.RingOf(trace.FromContext(cmd.Context()))
	if ring == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "--- trace ring ---")
	if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}
