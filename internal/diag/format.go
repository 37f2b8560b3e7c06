package diag

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatShort renders one line per diagnostic and per note:
//
//	error MAN1006 shaders/blur.toml:14 unknown id "tmpp"
//	note MAN1006 shaders/blur.toml:3 similar id "tmp" declared here
//
// Paths are made relative to baseDir when possible. Lines are joined with
// '\n' and there is no trailing newline.
func FormatShort(diags []Diagnostic, baseDir string, includeNotes bool) string {
	var lines []string
	for _, d := range diags {
		lines = append(lines, formatLine(d.Severity.String(), d.Code, d.Pos, d.Message, baseDir))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, formatLine("note", d.Code, n.Pos, n.Msg, baseDir))
		}
	}
	return strings.Join(lines, "\n")
}

func formatLine(label string, code Code, pos Pos, msg, baseDir string) string {
	pos.Path = RelativePath(pos.Path, baseDir)
	return fmt.Sprintf("%s %s %s %s", label, code.ID(), pos, sanitizeMessage(msg))
}

// RelativePath makes path relative to baseDir when it lies below it and
// normalises separators to slashes.
func RelativePath(path, baseDir string) string {
	if baseDir != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
