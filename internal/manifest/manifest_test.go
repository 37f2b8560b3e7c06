package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nuanceur/internal/diag"
	"nuanceur/internal/shader"
)

const blurManifest = `
[shader]
name = "blur"

[metadata]
local_size_x = 8
local_size_y = 8

[[input]]
id = "uv"
type = "float4"
semantic = "texcoord"
index = 0

[[input]]
id = "giid"
type = "uint4"
semantic = "system_giid"
available = false

[[output]]
id = "color"
type = "float4"
semantic = "system_color"

[[uniform]]
id = "mvp"
name = "mvp"
type = "matrix"
unit = 0

[[uniform]]
id = "buf"
name = "buf"
type = "array_uint"
unit = 1
attributes = ["coherent", "readonly"]

[[variable]]
id = "acc"
name = "acc"
type = "float4"

[[temporary]]
id = "t"
type = "float4"

[[constant]]
id = "half"
type = "float4"
value = [0.5]

[[constant]]
id = "mask"
type = "uint4"
value = [255, 0, 0, 4294967295]

[[texture]]
id = "src"
type = "texture2d"
unit = 2

[[statement]]
op = "sample"
dst = "t"
src = ["src", "uv.xy"]
line = 12

[[statement]]
op = "mul"
dst = "acc.xyz"
src = ["t.xyz", "half.xxx"]

[[statement]]
op = "mov"
dst = "color"
src = ["acc"]
`

func parse(t *testing.T, text string) (*File, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	f, ok := Parse("shaders/test.toml", []byte(text), diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("Parse failed: %s", diag.FormatShort(bag.Items(), "", false))
	}
	return f, bag
}

func TestBuildPopulatesBuilder(t *testing.T) {
	f, bag := parse(t, blurManifest)
	b, ok := f.Build(diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("Build failed: %s", diag.FormatShort(bag.Items(), "", false))
	}
	if f.Name() != "blur" {
		t.Fatalf("Name() = %q", f.Name())
	}

	syms := b.Symbols()
	// giid is unavailable and therefore never declared.
	if len(syms) != 9 {
		t.Fatalf("expected 9 symbols, got %d: %v", len(syms), syms)
	}
	if syms[0].Location != shader.LocationInput || syms[1].Location != shader.LocationOutput {
		t.Fatalf("inputs and outputs should come first: %v", syms[:2])
	}
	if got := b.Metadata(shader.MetadataLocalSizeY, 1); got != 8 {
		t.Fatalf("local_size_y = %d", got)
	}

	mask := syms[7]
	v, err := b.TemporaryValueInt(mask)
	if err != nil {
		t.Fatalf("TemporaryValueInt: %v", err)
	}
	if v.Uint() != [4]uint32{255, 0, 0, 4294967295} {
		t.Fatalf("uint lanes not preserved: %v", v.Uint())
	}
	buf := syms[3]
	if buf.Attributes != shader.AttributeCoherent|shader.AttributeReadOnly {
		t.Fatalf("attributes = %v", buf.Attributes)
	}

	stmts := b.Statements()
	if len(stmts) != 4 || stmts[0].Op != shader.OpSourceLine || stmts[0].Line != 12 {
		t.Fatalf("unexpected statements: %+v", stmts)
	}
	if stmts[2].Src[1].Swizzle != shader.SwizzleXXX || stmts[2].Dst.Swizzle != shader.SwizzleXYZ {
		t.Fatalf("swizzles not carried: %+v", stmts[2])
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("built stream should validate: %v", err)
	}
}

func TestBuildReportsErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code diag.Code
		msg  string
	}{
		{"bad type", `
[[input]]
id = "a"
type = "matrix"
semantic = "position"`, diag.ManBadType, `input[0]: type "matrix" not allowed`},
		{"bad semantic", `
[[output]]
id = "a"
type = "float4"
semantic = "colour"`, diag.ManBadSemantic, `unknown semantic "colour"`},
		{"duplicate id", `
[[temporary]]
id = "a"
type = "float4"
[[temporary]]
id = "a"
type = "int4"`, diag.ManDuplicateID, `temporary[1]: id "a" already declared`},
		{"unknown id", `
[[temporary]]
id = "a"
type = "float4"
[[statement]]
op = "mov"
dst = "a"
src = ["b"]`, diag.ManUnknownID, `unknown id "b"`},
		{"absent operand", `
[[input]]
id = "p"
type = "float4"
semantic = "position"
available = false
[[temporary]]
id = "a"
type = "float4"
[[statement]]
op = "mov"
dst = "a"
src = ["p"]`, diag.ManAbsentOperand, `"p" is not available`},
		{"non mask destination", `
[[temporary]]
id = "a"
type = "float4"
[[statement]]
op = "mov"
dst = "a.yx"
src = ["a"]`, diag.ManBadSwizzle, "not a write mask"},
		{"operand count", `
[[temporary]]
id = "a"
type = "float4"
[[statement]]
op = "add"
dst = "a"
src = ["a"]`, diag.ManOperandCount, "add takes 2 source(s), got 1"},
		{"unknown op", `
[[statement]]
op = "frobnicate"`, diag.ManBadOp, `unknown op "frobnicate"`},
		{"constant lanes", `
[[constant]]
id = "c"
type = "int4"
value = [1, 2]`, diag.ManBadValue, "needs 1 or 4 lanes"},
		{"constant overflow", `
[[constant]]
id = "c"
type = "int4"
value = [3000000000]`, diag.ManBadValue, "lane 0"},
		{"negative unit", `
[[texture]]
id = "t"
type = "texture2d"
unit = -1`, diag.ManOutOfRange, "unit -1 out of range"},
		{"metadata key", `
[metadata]
local_size_w = 2`, diag.ManBadMetadata, `unknown key "local_size_w"`},
		{"attribute on matrix", `
[[uniform]]
id = "m"
name = "m"
type = "matrix"
attributes = ["coherent"]`, diag.ManBadAttribute, "only supported for array uniforms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, bag := parse(t, tt.text)
			if _, ok := f.Build(diag.BagReporter{Bag: bag}); ok {
				t.Fatalf("expected Build to fail")
			}
			for _, d := range bag.Items() {
				if d.Code == tt.code && strings.Contains(d.Message, tt.msg) {
					return
				}
			}
			t.Fatalf("missing %s %q in:\n%s", tt.code.ID(), tt.msg, diag.FormatShort(bag.Items(), "", false))
		})
	}
}

func TestRejectedStatementLeavesNoLineMarker(t *testing.T) {
	f, bag := parse(t, `
[[temporary]]
id = "a"
type = "float4"

[[statement]]
op = "mov"
dst = "a"
src = ["missing"]
line = 3

[[statement]]
op = "mov"
dst = "a.yx"
src = ["a"]
line = 4

[[statement]]
op = "mov"
dst = "a"
src = ["a"]
line = 5
`)
	b, ok := f.Build(diag.BagReporter{Bag: bag})
	if ok {
		t.Fatalf("expected Build to fail")
	}
	stmts := b.Statements()
	if len(stmts) != 2 || stmts[0].Op != shader.OpSourceLine || stmts[0].Line != 5 || stmts[1].Op != shader.OpMov {
		t.Fatalf("only the accepted statement and its marker should remain: %+v", stmts)
	}
}

func TestBuildReportsEveryBadSource(t *testing.T) {
	f, bag := parse(t, `
[[temporary]]
id = "a"
type = "float4"

[[statement]]
op = "add"
dst = "a"
src = ["p", "q"]
`)
	if _, ok := f.Build(diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("expected Build to fail")
	}
	var unknown []string
	for _, d := range bag.Items() {
		if d.Code == diag.ManUnknownID {
			unknown = append(unknown, d.Message)
		}
	}
	if len(unknown) != 2 || !strings.Contains(unknown[0], `"p"`) || !strings.Contains(unknown[1], `"q"`) {
		t.Fatalf("expected both sources reported, got %q", unknown)
	}
}

func TestParseSyntaxErrorCarriesLine(t *testing.T) {
	bag := diag.NewBag(0)
	_, ok := Parse("bad.toml", []byte("[shader]\nname = \"x\"\nname = = 3\n"), diag.BagReporter{Bag: bag})
	if ok {
		t.Fatalf("expected syntax error")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ManSyntax || items[0].Pos.Line != 3 {
		t.Fatalf("unexpected diagnostics: %+v", items)
	}
}

func TestParseWarnsOnUnknownKeys(t *testing.T) {
	_, bag := parse(t, "[shader]\nname = \"x\"\ncolour = 1\n")
	items := bag.Items()
	if len(items) != 1 || items[0].Severity != diag.SevWarning || items[0].Code != diag.ManUnknownKey {
		t.Fatalf("unexpected diagnostics: %+v", items)
	}
}

func TestLoadNormalizesNamesAndDefaultsShaderName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cafe.toml")
	// e followed by a combining acute accent; NFC folds it to U+00E9.
	text := "[[variable]]\nid = \"v\"\nname = \"cafe\u0301\"\ntype = \"float4\"\n"
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	f, ok := Load(path, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("Load failed: %+v", bag.Items())
	}
	if f.Name() != "cafe" {
		t.Fatalf("Name() = %q", f.Name())
	}
	b, ok := f.Build(diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("Build failed: %+v", bag.Items())
	}
	name, err := b.VariableName(b.Symbols()[0])
	if err != nil || name != "caf\u00e9" {
		t.Fatalf("VariableName = %q, %v", name, err)
	}

	if _, ok := Load(filepath.Join(dir, "missing.toml"), diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("missing file should fail")
	}
}
