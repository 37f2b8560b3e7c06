package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format is the on-disk representation of trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // one human-readable line per event
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent renders ev, including the trailing newline.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonAttr struct {
	Key   string `json:"k"`
	Value string `json:"v"`
}

type jsonEvent struct {
	Time     string     `json:"time"`
	Seq      uint64     `json:"seq"`
	Kind     string     `json:"kind"`
	Scope    string     `json:"scope"`
	SpanID   uint64     `json:"span_id,omitempty"`
	ParentID uint64     `json:"parent_id,omitempty"`
	Name     string     `json:"name"`
	Detail   string     `json:"detail,omitempty"`
	Attrs    []jsonAttr `json:"attrs,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	j := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
	}
	for _, a := range ev.Attrs {
		j.Attrs = append(j.Attrs, jsonAttr(a))
	}
	data, err := json.Marshal(j)
	if err != nil {
		return []byte(fmt.Sprintf("{\"error\":%q}\n", err.Error()))
	}
	return append(data, '\n')
}

// formatText: "#seq scope > name (detail) k=v"
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%-5d %-9s ", ev.Seq, ev.Scope)
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("> ")
	case KindSpanEnd:
		sb.WriteString("< ")
	default:
		sb.WriteString("* ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	for _, a := range ev.Attrs {
		fmt.Fprintf(&sb, " %s=%s", a.Key, a.Value)
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
