package shader

import "fmt"

// MetadataKind is the closed set of shader-wide properties.
type MetadataKind uint8

const (
	// MetadataLocalSizeX is the compute workgroup width.
	MetadataLocalSizeX MetadataKind = iota + 1
	// MetadataLocalSizeY is the compute workgroup height.
	MetadataLocalSizeY
	// MetadataLocalSizeZ is the compute workgroup depth.
	MetadataLocalSizeZ
)

var metadataNames = map[MetadataKind]string{
	MetadataLocalSizeX: "local_size_x",
	MetadataLocalSizeY: "local_size_y",
	MetadataLocalSizeZ: "local_size_z",
}

func (k MetadataKind) String() string {
	if name, ok := metadataNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MetadataKind(%d)", uint8(k))
}

// ParseMetadataKind maps a manifest key to its kind.
func ParseMetadataKind(name string) (MetadataKind, bool) {
	for k, n := range metadataNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Metadata returns the value stored for kind, or def if it was never set.
func (b *Builder) Metadata(kind MetadataKind, def uint32) uint32 {
	if v, ok := b.metadata[kind]; ok {
		return v
	}
	return def
}

// SetMetadata stores value for kind, replacing any previous value.
func (b *Builder) SetMetadata(kind MetadataKind, value uint32) {
	b.metadata[kind] = value
}
