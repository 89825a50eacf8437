package flver

// EncodingTable holds the format-revision specific constants the padder and the bone-index
// promoter depend on. The values come from the format's encoding table, so a future revision
// that adds packed encodings gets a new table instead of new literals.
type EncodingTable struct {
	// Revision names the format revision the table describes.
	Revision string

	// DoublePackedUV lists the encodings that store two UV sets in one member.
	DoublePackedUV map[LayoutType]bool

	// MaxNarrowBoneIndex is the largest node index a narrow bone-index encoding can address.
	MaxNarrowBoneIndex int

	// WideBoneIndexType replaces narrow bone-index encodings once the skeleton outgrows them.
	WideBoneIndexType LayoutType
}

// DefaultEncodingTable returns the table for the Elden Ring container revision.
func DefaultEncodingTable() *EncodingTable {
	return &EncodingTable{
		Revision: "flver2-0x2001A",
		DoublePackedUV: map[LayoutType]bool{
			TypeFloat4:     true,
			TypeShort4:     true,
			TypeHalf2:      true,
			TypeUByte4Norm: true,
		},
		MaxNarrowBoneIndex: 255,
		WideBoneIndexType:  TypeUShort4,
	}
}

var defaultTable = DefaultEncodingTable()

// UVSlots returns how many logical UV sets one UV member of type t carries.
func (e *EncodingTable) UVSlots(t LayoutType) int {
	if e.DoublePackedUV[t] {
		return 2
	}
	return 1
}

// AttributeCounts is the number of tangents, UV sets and vertex colors a vertex carries or a
// layout set requires.
type AttributeCounts struct {
	Tangents int
	UVs      int
	Colors   int
}

// Covers reports whether c meets every count in required.
func (c AttributeCounts) Covers(required AttributeCounts) bool {
	return c.Tangents >= required.Tangents && c.UVs >= required.UVs && c.Colors >= required.Colors
}

// CountsOf returns what v currently carries.
func CountsOf(v *Vertex) AttributeCounts {
	return AttributeCounts{
		Tangents: len(v.Tangents),
		UVs:      len(v.UVs),
		Colors:   len(v.Colors),
	}
}

// RequiredCounts sums the attribute requirements of every member in set.
func (e *EncodingTable) RequiredCounts(set LayoutSet) AttributeCounts {
	var c AttributeCounts
	set.Members(func(m LayoutMember) {
		switch m.Semantic {
		case SemanticTangent:
			c.Tangents++
		case SemanticUV:
			c.UVs += e.UVSlots(m.Type)
		case SemanticVertexColor:
			c.Colors++
		}
	})
	return c
}

// RequiredCounts sums the attribute requirements of set using the default encoding table.
func RequiredCounts(set LayoutSet) AttributeCounts {
	return defaultTable.RequiredCounts(set)
}
