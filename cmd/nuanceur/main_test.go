package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"nuanceur/internal/version"
)

const passthroughManifest = `
[shader]
name = "passthrough"

[[input]]
id = "uv"
type = "float4"
semantic = "texcoord"
index = 0

[[output]]
id = "color"
type = "float4"
semantic = "system_color"

[[statement]]
op = "mov"
dst = "color"
src = ["uv"]
line = 3
`

const brokenManifest = `
[shader]
name = "broken"

[[statement]]
op = "mov"
dst = "nowhere"
src = ["uv"]
`

// resetFlags restores defaults so one test's flags do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	_, err := rootCmd.ExecuteC()
	return out.String(), errOut.String(), err
}

func writeManifest(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestSwizzleCompose(t *testing.T) {
	tests := []struct {
		outer, inner, want string
	}{
		{"y", "xx", "yy"},
		{"zw", "y", "w"},
		{"xyzw", "wzyx", "wzyx"},
	}
	for _, tt := range tests {
		out, _, err := execute(t, "swizzle", "compose", tt.outer, tt.inner)
		if err != nil {
			t.Fatalf("compose %s %s: %v", tt.outer, tt.inner, err)
		}
		if got := strings.TrimSpace(out); got != tt.want {
			t.Fatalf("compose %s %s = %q, want %q", tt.outer, tt.inner, got, tt.want)
		}
	}
}

func TestSwizzleClassify(t *testing.T) {
	out, _, err := execute(t, "swizzle", "classify", "xz", "xyz", "yx")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"xz   len=2 mask",
		"xyz  len=3 identity mask",
		"yx   len=2",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSwizzleListMasks(t *testing.T) {
	out, _, err := execute(t, "swizzle", "list", "--masks")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if n := len(strings.Fields(out)); n != 15 {
		t.Fatalf("expected 15 masks, got %d", n)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Version != version.Version || info.GitCommit != "" {
		t.Fatalf("unexpected info %+v", info)
	}

	out, _, err = execute(t, "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version --full: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.GitCommit == "" || info.BuildDate == "" {
		t.Fatalf("--full should fill commit and date, got %+v", info)
	}

	if _, _, err := execute(t, "version", "--format", "yaml"); err == nil {
		t.Fatalf("expected invalid format to fail")
	}
}

func TestParseProgressMode(t *testing.T) {
	tests := []struct {
		in   string
		want progressMode
		ok   bool
	}{
		{"", progressAuto, true},
		{" ON ", progressOn, true},
		{"false", progressOff, true},
		{"sometimes", progressAuto, false},
	}
	for _, tt := range tests {
		got, err := parseProgressMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("parseProgressMode(%q) = %s, %v", tt.in, got, err)
		}
	}
}

func TestShowProgress(t *testing.T) {
	tests := []struct {
		mode  progressMode
		n     int
		quiet bool
		want  bool
	}{
		{progressOn, 1, false, true},
		{progressOn, 3, true, false},
		{progressOff, 3, false, false},
		{progressAuto, 1, false, false},
		{progressAuto, 3, true, false},
	}
	for _, tt := range tests {
		if got := showProgress(tt.mode, tt.n, tt.quiet); got != tt.want {
			t.Fatalf("showProgress(%s, %d, %v) = %v", tt.mode, tt.n, tt.quiet, got)
		}
	}
}

func TestDumpPrintsListing(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "passthrough.toml", passthroughManifest)

	out, _, err := execute(t, "dump", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	for _, want := range []string{"symbols=2", "line 3", "mov out0, in0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump output missing %q:\n%s", want, out)
		}
	}

	out, _, err = execute(t, "dump", "--skip-lines", path)
	if err != nil {
		t.Fatalf("dump --skip-lines: %v", err)
	}
	if strings.Contains(out, "line 3") {
		t.Fatalf("line marker should be skipped:\n%s", out)
	}
}

func TestDumpReportsDiagnostics(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "broken.toml", brokenManifest)
	out, errOut, err := execute(t, "dump", path)
	if !errors.Is(err, errBuildFailed) {
		t.Fatalf("expected errBuildFailed, got %v", err)
	}
	if out != "" {
		t.Fatalf("nothing should be dumped, got:\n%s", out)
	}
	if !strings.Contains(errOut, "nowhere") || !strings.Contains(errOut, "error") {
		t.Fatalf("diagnostic not printed:\n%s", errOut)
	}
}

func TestBuildWritesDumps(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "passthrough.toml", passthroughManifest)
	outDir := filepath.Join(dir, "out")

	out, _, err := execute(t, "build", "--ui", "off", "--no-cache", "--out", outDir, dir)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "passthrough -> ") {
		t.Fatalf("unexpected build output:\n%s", out)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "passthrough.ir"))
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if !strings.Contains(string(data), "mov out0, in0") {
		t.Fatalf("dump missing statement:\n%s", data)
	}
}

func TestBuildUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "passthrough.toml", passthroughManifest)
	cacheDir := filepath.Join(dir, "cache")
	args := []string{"build", "--ui", "off", "--cache", cacheDir, "--out", filepath.Join(dir, "out"), path}

	if _, _, err := execute(t, args...); err != nil {
		t.Fatalf("first build: %v", err)
	}
	out, _, err := execute(t, args...)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !strings.Contains(out, "(cached)") {
		t.Fatalf("second build should hit the cache:\n%s", out)
	}
}

func TestBuildFailureCountsShaders(t *testing.T) {
	dir := t.TempDir()
	good := writeManifest(t, dir, "a.toml", passthroughManifest)
	bad := writeManifest(t, dir, "b.toml", brokenManifest)

	_, errOut, err := execute(t, "build", "--ui", "off", "--no-cache", "--out", "", good, bad)
	if !errors.Is(err, errBuildFailed) {
		t.Fatalf("expected errBuildFailed, got %v", err)
	}
	if !strings.Contains(errOut, "1 of 2 shader(s) failed") {
		t.Fatalf("missing failure summary:\n%s", errOut)
	}
}

func TestCollectManifestsSortsDirectoryEntries(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "b.toml", passthroughManifest)
	writeManifest(t, dir, "a.toml", passthroughManifest)
	writeManifest(t, dir, "notes.txt", "")

	files, err := collectManifests([]string{dir})
	if err != nil {
		t.Fatalf("collectManifests: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.toml" || filepath.Base(files[1]) != "b.toml" {
		t.Fatalf("unexpected files %v", files)
	}
	if _, err := collectManifests([]string{t.TempDir()}); err == nil {
		t.Fatalf("empty directory should be an error")
	}
}
