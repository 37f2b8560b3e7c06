// Package irpack serializes builder snapshots with msgpack and caches them
// on disk keyed by the digest of the manifest they were built from.
package irpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"nuanceur/internal/shader"
)

// SchemaVersion is bumped whenever Payload or shader.Snapshot change shape.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned by Decode for payloads of another schema.
var ErrSchemaMismatch = errors.New("irpack: schema mismatch")

// Payload is the unit written to disk.
type Payload struct {
	Schema   uint16          `msgpack:"schema"`
	Name     string          `msgpack:"name"`
	Snapshot shader.Snapshot `msgpack:"snapshot"`
}

// NewPayload captures b under name with the current schema.
func NewPayload(name string, b *shader.Builder) *Payload {
	return &Payload{Schema: SchemaVersion, Name: name, Snapshot: b.Snapshot()}
}

// Builder restores the captured builder.
func (p *Payload) Builder() (*shader.Builder, error) {
	return shader.Restore(&p.Snapshot)
}

// Encode writes p to w.
func Encode(w io.Writer, p *Payload) error {
	if p.Schema == 0 {
		p.Schema = SchemaVersion
	}
	return msgpack.NewEncoder(w).Encode(p)
}

// Decode reads a payload from r and checks its schema.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("irpack: decode: %w", err)
	}
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrSchemaMismatch, p.Schema, SchemaVersion)
	}
	return &p, nil
}

// Marshal is Encode into a byte slice.
func Marshal(p *Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is Decode from a byte slice.
func Unmarshal(data []byte) (*Payload, error) {
	return Decode(bytes.NewReader(data))
}
