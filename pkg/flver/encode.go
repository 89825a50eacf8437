package flver

import (
	"encoding/binary"
	"errors"
	"fmt"
	stdmath "math"
	"slices"

	"github.com/x448/float16"

	"github.com/Faultbox/flver-matconv/pkg/math"
)

// Vertex encoding errors.
var (
	ErrMissingAttribute    = errors.New("vertex is missing an attribute the layout requires")
	ErrBoneIndexOverflow   = errors.New("bone index does not fit the layout encoding")
	ErrUnsupportedEncoding = errors.New("layout type cannot encode this semantic")
)

// UVFactor scales UVs stored as 16-bit integers.
const UVFactor = 2048

var directionTypes = []LayoutType{
	TypeFloat4, TypeByte4, TypeUByte4, TypeUByte4Norm, TypeByte4E, TypeShort4ToFloat4A, TypeShort4ToFloat4B,
}

var semanticEncodings = map[LayoutSemantic][]LayoutType{
	SemanticPosition:    {TypeFloat3, TypeFloat4},
	SemanticBoneWeights: {TypeFloat4, TypeUByte4Norm, TypeShort4ToFloat4A, TypeShort4ToFloat4B, TypeUShort4},
	SemanticBoneIndices: {TypeByte4, TypeUByte4, TypeByte4E, TypeShort4, TypeUShort4},
	SemanticNormal:      append([]LayoutType{TypeFloat3}, directionTypes...),
	SemanticUV: {
		TypeFloat2, TypeFloat3, TypeFloat4, TypeShort2, TypeShort2ToFloat2, TypeShort4,
		TypeHalf2, TypeHalf4, TypeUByte4Norm,
	},
	SemanticTangent:     directionTypes,
	SemanticBitangent:   directionTypes,
	SemanticVertexColor: {TypeFloat4, TypeUByte4Norm, TypeUByte4, TypeByte4},
}

// AttributeCursor tracks how many tangents, UV sets and colors of a vertex earlier members
// have consumed. One cursor spans every buffer of a mesh.
type AttributeCursor struct {
	UV      int
	Tangent int
	Color   int
}

// EncodeVertex packs v into the byte layout of one buffer, advancing cur. It fails when the
// vertex does not carry a value some member needs or a bone index does not fit its encoding.
func EncodeVertex(v *Vertex, layout BufferLayout, cur *AttributeCursor) ([]byte, error) {
	return defaultTable.AppendVertex(make([]byte, 0, layout.Size()), v, layout, cur)
}

// AppendVertex appends the encoding of v in layout to buf.
func (e *EncodingTable) AppendVertex(buf []byte, v *Vertex, layout BufferLayout, cur *AttributeCursor) ([]byte, error) {
	for i, m := range layout {
		if !slices.Contains(semanticEncodings[m.Semantic], m.Type) {
			return nil, fmt.Errorf("member %d (%s): %w", i, m, ErrUnsupportedEncoding)
		}
		var err error
		buf, err = e.appendMember(buf, v, m, cur)
		if err != nil {
			return nil, fmt.Errorf("member %d (%s): %w", i, m, err)
		}
	}
	return buf, nil
}

func (e *EncodingTable) appendMember(buf []byte, v *Vertex, m LayoutMember, cur *AttributeCursor) ([]byte, error) {
	switch m.Semantic {
	case SemanticPosition:
		p := v.Position
		return appendValues(buf, m.Type, []float32{p.X, p.Y, p.Z, 0}, kindUnbounded), nil

	case SemanticNormal:
		n := v.Normal
		switch m.Type {
		case TypeFloat3:
			return appendValues(buf, m.Type, []float32{n.X, n.Y, n.Z}, kindDirection), nil
		case TypeFloat4:
			return appendValues(buf, m.Type, []float32{n.X, n.Y, n.Z, float32(v.NormalW)}, kindDirection), nil
		}
		for _, x := range []float32{n.X, n.Y, n.Z} {
			buf = appendScalar(buf, m.Type, x, kindDirection)
		}
		return appendRaw(buf, m.Type, v.NormalW), nil

	case SemanticBoneWeights:
		return appendValues(buf, m.Type, v.BoneWeights[:], kindUnit), nil

	case SemanticBoneIndices:
		limit := boneIndexLimit(m.Type)
		for _, index := range v.BoneIndices {
			if index < 0 || int(index) > limit {
				return nil, fmt.Errorf("%w: %d exceeds %d for %s", ErrBoneIndexOverflow, index, limit, m.Type)
			}
			buf = appendRaw(buf, m.Type, index)
		}
		return buf, nil

	case SemanticTangent:
		if cur.Tangent >= len(v.Tangents) {
			return nil, fmt.Errorf("%w: tangent %d of %d", ErrMissingAttribute, cur.Tangent, len(v.Tangents))
		}
		t := v.Tangents[cur.Tangent].Components()
		cur.Tangent++
		return appendValues(buf, m.Type, t[:], kindDirection), nil

	case SemanticBitangent:
		b := v.Bitangent.Components()
		return appendValues(buf, m.Type, b[:], kindDirection), nil

	case SemanticUV:
		slots := e.UVSlots(m.Type)
		if cur.UV+slots > len(v.UVs) {
			return nil, fmt.Errorf("%w: uv %d..%d of %d", ErrMissingAttribute, cur.UV, cur.UV+slots-1, len(v.UVs))
		}
		uvs := v.UVs[cur.UV : cur.UV+slots]
		cur.UV += slots
		return appendValues(buf, m.Type, uvValues(m.Type, uvs), kindUV), nil

	case SemanticVertexColor:
		if cur.Color >= len(v.Colors) {
			return nil, fmt.Errorf("%w: color %d of %d", ErrMissingAttribute, cur.Color, len(v.Colors))
		}
		c := v.Colors[cur.Color]
		cur.Color++
		if m.Type == TypeFloat4 {
			return appendValues(buf, m.Type, []float32{
				float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255,
			}, kindUnit), nil
		}
		return append(buf, c.R, c.G, c.B, c.A), nil
	}
	return nil, ErrUnsupportedEncoding
}

// uvValues flattens the UV sets one member stores. A single Float3 set keeps its Z; packed
// members take U and V of each set in turn.
func uvValues(t LayoutType, uvs []math.Vec3) []float32 {
	if len(uvs) == 1 && t == TypeFloat3 {
		return []float32{uvs[0].X, uvs[0].Y, uvs[0].Z}
	}
	vals := make([]float32, 0, 2*len(uvs))
	for _, uv := range uvs {
		vals = append(vals, uv.X, uv.Y)
	}
	return vals
}

func boneIndexLimit(t LayoutType) int {
	switch t {
	case TypeUShort4:
		return stdmath.MaxUint16
	case TypeShort4:
		return stdmath.MaxInt16
	default:
		return stdmath.MaxUint8
	}
}

type valueKind int

const (
	kindUnbounded valueKind = iota
	kindDirection           // components in [-1, 1]
	kindUnit                // components in [0, 1]
	kindUV
)

// appendValues packs vals as type t, truncating or zero-filling to the type's component count.
func appendValues(buf []byte, t LayoutType, vals []float32, kind valueKind) []byte {
	for i := 0; i < t.Components(); i++ {
		var x float32
		if i < len(vals) {
			x = vals[i]
		}
		buf = appendScalar(buf, t, x, kind)
	}
	return buf
}

func appendScalar(buf []byte, t LayoutType, x float32, kind valueKind) []byte {
	le := binary.LittleEndian
	switch t {
	case TypeFloat2, TypeFloat3, TypeFloat4:
		return le.AppendUint32(buf, stdmath.Float32bits(x))
	case TypeHalf2, TypeHalf4:
		return le.AppendUint16(buf, float16.Fromfloat32(x).Bits())
	case TypeUByte4Norm:
		if kind == kindDirection {
			return append(buf, biasedByte(x))
		}
		return append(buf, uint8(round(math.Clamp(x, 0, 1)*255)))
	case TypeByte4, TypeUByte4, TypeByte4E:
		return append(buf, biasedByte(x))
	case TypeShort2, TypeShort4, TypeShort2ToFloat2:
		scale := float32(stdmath.MaxInt16)
		if kind == kindUV {
			scale = UVFactor
		}
		return le.AppendUint16(buf, uint16(int16(round(math.Clamp(x*scale, stdmath.MinInt16, stdmath.MaxInt16)))))
	case TypeShort4ToFloat4A, TypeShort4ToFloat4B:
		return le.AppendUint16(buf, uint16(int16(round(math.Clamp(x, -1, 1)*stdmath.MaxInt16))))
	case TypeUShort4:
		return le.AppendUint16(buf, uint16(round(math.Clamp(x, 0, 1)*stdmath.MaxUint16)))
	}
	return buf
}

// appendRaw writes one integer component at the width of t.
func appendRaw(buf []byte, t LayoutType, value int32) []byte {
	switch t.Size() / t.Components() {
	case 1:
		return append(buf, uint8(value))
	case 2:
		return binary.LittleEndian.AppendUint16(buf, uint16(value))
	default:
		return binary.LittleEndian.AppendUint32(buf, uint32(value))
	}
}

func biasedByte(x float32) uint8 {
	return uint8(round(math.Clamp(x*127+127, 0, 255)))
}

func round(x float32) float32 {
	return float32(stdmath.Round(float64(x)))
}

// EncodeMeshBuffers packs every vertex of mesh into the buffers it references, returning one
// byte slice per vertex buffer.
func (f *FLVER) EncodeMeshBuffers(mesh *Mesh) ([][]byte, error) {
	layouts := make([]BufferLayout, len(mesh.VertexBuffers))
	buffers := make([][]byte, len(mesh.VertexBuffers))
	for i, vb := range mesh.VertexBuffers {
		layout, ok := f.Layouts.At(vb.LayoutIndex)
		if !ok {
			return nil, fmt.Errorf("%w: buffer %d -> layout %d", ErrInvalidLayoutIndex, i, vb.LayoutIndex)
		}
		layouts[i] = layout
		buffers[i] = make([]byte, 0, layout.Size()*len(mesh.Vertices))
	}

	for vi := range mesh.Vertices {
		var cur AttributeCursor
		for bi, layout := range layouts {
			var err error
			buffers[bi], err = defaultTable.AppendVertex(buffers[bi], &mesh.Vertices[vi], layout, &cur)
			if err != nil {
				return nil, fmt.Errorf("vertex %d, buffer %d: %w", vi, bi, err)
			}
		}
	}
	return buffers, nil
}

// Verify encodes every mesh and returns the joined failures. A nil result means the binary
// writer can pack every vertex against the layouts its mesh references.
func (f *FLVER) Verify() error {
	var errs []error
	for i, mesh := range f.Meshes {
		if _, err := f.EncodeMeshBuffers(mesh); err != nil {
			errs = append(errs, fmt.Errorf("mesh %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
