package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeDriver    Scope = iota + 1 // CLI command
	ScopePass                       // load, build, validate, emit
	ScopeShader                     // one manifest
	ScopeStatement                  // one statement of a shader
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeShader:
		return "shader"
	case ScopeStatement:
		return "statement"
	default:
		return "unknown"
	}
}

// Attr is one key-value annotation on an event. Attrs keep insertion order.
type Attr struct {
	Key   string
	Value string
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // "build", "shader:lighting.toml"
	Detail   string
	Attrs    []Attr
}
