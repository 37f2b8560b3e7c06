// Package manifest turns TOML shader descriptions into populated
// shader builders.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"nuanceur/internal/diag"
)

// File is a decoded manifest. Source holds the raw bytes for cache keys.
type File struct {
	Path   string `toml:"-"`
	Source []byte `toml:"-"`

	Shader      ShaderSection    `toml:"shader"`
	Metadata    map[string]int64 `toml:"metadata"`
	Inputs      []IODecl         `toml:"input"`
	Outputs     []IODecl         `toml:"output"`
	Uniforms    []UniformDecl    `toml:"uniform"`
	Variables   []VariableDecl   `toml:"variable"`
	Temporaries []TemporaryDecl  `toml:"temporary"`
	Constants   []ConstantDecl   `toml:"constant"`
	Textures    []TextureDecl    `toml:"texture"`
	Statements  []StatementDecl  `toml:"statement"`
}

type ShaderSection struct {
	Name string `toml:"name"`
}

// IODecl declares an input or output.
type IODecl struct {
	ID        string `toml:"id"`
	Type      string `toml:"type"`
	Semantic  string `toml:"semantic"`
	Index     int64  `toml:"index"`
	Available *bool  `toml:"available"`
}

type UniformDecl struct {
	ID         string   `toml:"id"`
	Name       string   `toml:"name"`
	Type       string   `toml:"type"`
	Unit       int64    `toml:"unit"`
	Attributes []string `toml:"attributes"`
	Available  *bool    `toml:"available"`
}

type VariableDecl struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type TemporaryDecl struct {
	ID   string `toml:"id"`
	Type string `toml:"type"`
}

// ConstantDecl carries either one value, splatted to all lanes, or four.
type ConstantDecl struct {
	ID    string `toml:"id"`
	Type  string `toml:"type"`
	Value []any  `toml:"value"`
}

type TextureDecl struct {
	ID    string `toml:"id"`
	Type  string `toml:"type"`
	Unit  int64  `toml:"unit"`
	Index *int64 `toml:"index"`
}

type StatementDecl struct {
	Op   string   `toml:"op"`
	Dst  string   `toml:"dst"`
	Src  []string `toml:"src"`
	Line *int64   `toml:"line"`
}

// Name returns [shader].name, or the file name without extension.
func (f *File) Name() string {
	if f.Shader.Name != "" {
		return f.Shader.Name
	}
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and decodes the manifest at path.
func Load(path string, r diag.Reporter) (*File, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		diag.ReportError(r, diag.IOLoadFile, diag.Pos{Path: path}, err.Error())
		return nil, false
	}
	return Parse(path, data, r)
}

// Parse decodes data. Syntax errors are reported with their line; unknown
// keys are reported as warnings and otherwise ignored.
func Parse(path string, data []byte, r diag.Reporter) (*File, bool) {
	f := &File{Path: path, Source: data}
	meta, err := toml.Decode(string(data), f)
	if err != nil {
		pos := diag.Pos{Path: path}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			if line, cerr := safecast.Conv[uint32](perr.Position.Line); cerr == nil {
				pos.Line = line
			}
			err = errors.New(perr.Message)
		}
		diag.ReportError(r, diag.ManSyntax, pos, err.Error())
		return nil, false
	}
	for _, key := range meta.Undecoded() {
		diag.ReportWarning(r, diag.ManUnknownKey, diag.Pos{Path: path}, fmt.Sprintf("unknown key %q", key.String()))
	}
	return f, true
}
