// Package flver models the parts of an FLVER2 mesh container that material conversion touches:
// buffer layouts, vertices, meshes, materials and the skeleton nodes that bound bone indices.
package flver

import (
	"fmt"
	"slices"
	"strings"
)

// LayoutType is the packed numeric encoding of one layout member.
type LayoutType uint8

const (
	TypeFloat2          LayoutType = 0x01 // 2 x float32
	TypeFloat3          LayoutType = 0x02 // 3 x float32
	TypeFloat4          LayoutType = 0x03 // 4 x float32
	TypeByte4           LayoutType = 0x10 // 4 x uint8, biased
	TypeUByte4          LayoutType = 0x11 // 4 x uint8
	TypeShort2ToFloat2  LayoutType = 0x12 // 2 x int16, scaled
	TypeUByte4Norm      LayoutType = 0x13 // 4 x uint8, normalized
	TypeShort2          LayoutType = 0x15 // 2 x int16
	TypeShort4          LayoutType = 0x16 // 4 x int16
	TypeUShort4         LayoutType = 0x18 // 4 x uint16
	TypeShort4ToFloat4A LayoutType = 0x1A // 4 x int16, normalized
	TypeShort4ToFloat4B LayoutType = 0x2E // 4 x int16, normalized
	TypeByte4E          LayoutType = 0x2F // 4 x uint8, biased
	TypeHalf2           LayoutType = 0x30 // 2 x float16
	TypeHalf4           LayoutType = 0x31 // 4 x float16
)

var layoutTypeNames = map[LayoutType]string{
	TypeFloat2:          "Float2",
	TypeFloat3:          "Float3",
	TypeFloat4:          "Float4",
	TypeByte4:           "Byte4",
	TypeUByte4:          "UByte4",
	TypeShort2ToFloat2:  "Short2ToFloat2",
	TypeUByte4Norm:      "UByte4Norm",
	TypeShort2:          "Short2",
	TypeShort4:          "Short4",
	TypeUShort4:         "UShort4",
	TypeShort4ToFloat4A: "Short4ToFloat4A",
	TypeShort4ToFloat4B: "Short4ToFloat4B",
	TypeByte4E:          "Byte4E",
	TypeHalf2:           "Half2",
	TypeHalf4:           "Half4",
}

// String returns the type name, or Unknown(0xNN) for unlisted codes.
func (t LayoutType) String() string {
	if name, ok := layoutTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
}

// Size returns the packed width of the type in bytes, or 0 for unknown types.
func (t LayoutType) Size() int {
	switch t {
	case TypeFloat2, TypeShort4, TypeUShort4, TypeShort4ToFloat4A, TypeShort4ToFloat4B, TypeHalf4:
		return 8
	case TypeFloat3:
		return 12
	case TypeFloat4:
		return 16
	case TypeByte4, TypeUByte4, TypeShort2ToFloat2, TypeUByte4Norm, TypeShort2, TypeByte4E, TypeHalf2:
		return 4
	default:
		return 0
	}
}

// Components returns how many scalar values the type packs.
func (t LayoutType) Components() int {
	switch t {
	case TypeFloat2, TypeShort2ToFloat2, TypeShort2, TypeHalf2:
		return 2
	case TypeFloat3:
		return 3
	}
	if t.Size() == 0 {
		return 0
	}
	return 4
}

// MarshalText implements encoding.TextMarshaler.
func (t LayoutType) MarshalText() ([]byte, error) {
	if _, ok := layoutTypeNames[t]; !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownLayoutType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names match case-insensitively.
func (t *LayoutType) UnmarshalText(text []byte) error {
	for code, name := range layoutTypeNames {
		if strings.EqualFold(name, string(text)) {
			*t = code
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownLayoutType, text)
}

// LayoutSemantic is the meaning of a layout member.
type LayoutSemantic uint8

const (
	SemanticPosition    LayoutSemantic = 0
	SemanticBoneWeights LayoutSemantic = 1
	SemanticBoneIndices LayoutSemantic = 2
	SemanticNormal      LayoutSemantic = 3
	SemanticUV          LayoutSemantic = 5
	SemanticTangent     LayoutSemantic = 6
	SemanticBitangent   LayoutSemantic = 7
	SemanticVertexColor LayoutSemantic = 10
)

var semanticNames = map[LayoutSemantic]string{
	SemanticPosition:    "Position",
	SemanticBoneWeights: "BoneWeights",
	SemanticBoneIndices: "BoneIndices",
	SemanticNormal:      "Normal",
	SemanticUV:          "UV",
	SemanticTangent:     "Tangent",
	SemanticBitangent:   "Bitangent",
	SemanticVertexColor: "VertexColor",
}

// String returns the semantic name.
func (s LayoutSemantic) String() string {
	if name, ok := semanticNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s LayoutSemantic) MarshalText() ([]byte, error) {
	if _, ok := semanticNames[s]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSemantic, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Names match case-insensitively.
func (s *LayoutSemantic) UnmarshalText(text []byte) error {
	for code, name := range semanticNames {
		if strings.EqualFold(name, string(text)) {
			*s = code
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSemantic, text)
}

// LayoutMember is one field of a buffer layout. Two members are equal when every
// field matches, so == is the structural comparison.
type LayoutMember struct {
	Stream   int32          `yaml:"stream" toml:"stream" xml:"Stream,attr"`
	Type     LayoutType     `yaml:"type" toml:"type" xml:"Type,attr"`
	Semantic LayoutSemantic `yaml:"semantic" toml:"semantic" xml:"Semantic,attr"`
	Index    int32          `yaml:"index" toml:"index" xml:"Index,attr"`
}

// Size returns the byte width of the member, derived from its type.
func (m LayoutMember) Size() int {
	return m.Type.Size()
}

// String renders the member for logs, e.g. "UV[1]:Half2@0".
func (m LayoutMember) String() string {
	return fmt.Sprintf("%s[%d]:%s@%d", m.Semantic, m.Index, m.Type, m.Stream)
}

// BufferLayout is the ordered member list of one vertex buffer. Order mirrors the on-disk
// field order.
type BufferLayout []LayoutMember

// Equal reports full structural equality: same length and equal members at every position.
func (l BufferLayout) Equal(other BufferLayout) bool {
	return slices.Equal(l, other)
}

// Size returns the stride of one vertex in this buffer.
func (l BufferLayout) Size() int {
	size := 0
	for _, m := range l {
		size += m.Size()
	}
	return size
}

// Count returns how many members carry the given semantic.
func (l BufferLayout) Count(semantic LayoutSemantic) int {
	n := 0
	for _, m := range l {
		if m.Semantic == semantic {
			n++
		}
	}
	return n
}

// Clone returns a copy that shares no storage with l.
func (l BufferLayout) Clone() BufferLayout {
	if l == nil {
		return nil
	}
	return slices.Clone(l)
}

// LayoutSet is every buffer a single vertex declaration is split across.
type LayoutSet []BufferLayout

// Members calls fn for every member of every layout, in order.
func (s LayoutSet) Members(fn func(m LayoutMember)) {
	for _, layout := range s {
		for _, m := range layout {
			fn(m)
		}
	}
}

// Count returns how many members across the set carry the given semantic.
func (s LayoutSet) Count(semantic LayoutSemantic) int {
	n := 0
	for _, layout := range s {
		n += layout.Count(semantic)
	}
	return n
}

// Clone deep-copies the set.
func (s LayoutSet) Clone() LayoutSet {
	if s == nil {
		return nil
	}
	out := make(LayoutSet, len(s))
	for i, layout := range s {
		out[i] = layout.Clone()
	}
	return out
}
