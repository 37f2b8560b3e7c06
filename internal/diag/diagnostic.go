package diag

import "fmt"

// Pos locates a diagnostic in a manifest. Line is 1-based, 0 when unknown.
type Pos struct {
	Path string
	Line uint32
}

func (p Pos) String() string {
	if p.Line == 0 {
		return p.Path
	}
	return fmt.Sprintf("%s:%d", p.Path, p.Line)
}

type Note struct {
	Pos Pos
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Pos      Pos
	Notes    []Note
}

func New(sev Severity, code Code, pos Pos, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Pos: pos, Message: msg}
}

func NewError(code Code, pos Pos, msg string) Diagnostic {
	return New(SevError, code, pos, msg)
}

func (d Diagnostic) WithNote(pos Pos, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: msg})
	return d
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s %s", d.Pos, d.Code.ID(), d.Message)
}
