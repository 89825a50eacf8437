package flver

import "github.com/Faultbox/flver-matconv/pkg/math"

// Padding fill values. None of them is derived from the mesh: they only make the vertex
// structurally writable.
var (
	// PaddingColor marks vertex colors that still need real data. Opaque pure red is
	// implausible enough to spot in game.
	PaddingColor = VertexColor{A: 255, R: 255, G: 0, B: 0}

	// PaddingTangent is used when a vertex has no tangent to repeat.
	PaddingTangent = math.Vec4{}

	// PaddingUV is used when a vertex has no UV set to repeat.
	PaddingUV = math.Vec3{}
)

// PadResult counts the values PadVertex appended.
type PadResult struct {
	Tangents int
	UVs      int
	Colors   int
}

// Total returns the number of appended values.
func (r PadResult) Total() int {
	return r.Tangents + r.UVs + r.Colors
}

// Add accumulates other into r.
func (r *PadResult) Add(other PadResult) {
	r.Tangents += other.Tangents
	r.UVs += other.UVs
	r.Colors += other.Colors
}

// PadVertex grows the tangent, UV and color lists of v until they meet the counts set
// requires. Missing tangents and UVs repeat the vertex's first value (zero when it has none);
// missing colors get PaddingColor. Existing values are never changed or reordered, and a vertex
// that already meets the requirements is left untouched.
func (e *EncodingTable) PadVertex(v *Vertex, set LayoutSet) PadResult {
	required := e.RequiredCounts(set)

	var res PadResult
	v.Tangents, res.Tangents = padRepeat(v.Tangents, required.Tangents, PaddingTangent)
	v.UVs, res.UVs = padRepeat(v.UVs, required.UVs, PaddingUV)
	v.Colors, res.Colors = padFill(v.Colors, required.Colors, PaddingColor)
	return res
}

// PadVertex pads v using the default encoding table.
func PadVertex(v *Vertex, set LayoutSet) PadResult {
	return defaultTable.PadVertex(v, set)
}

// padRepeat extends values to n entries with its first element, or fallback when empty.
func padRepeat[T any](values []T, n int, fallback T) ([]T, int) {
	fill := fallback
	if len(values) > 0 {
		fill = values[0]
	}
	return padFill(values, n, fill)
}

// padFill extends values to n entries with fill. It returns the slice and how many entries
// were added.
func padFill[T any](values []T, n int, fill T) ([]T, int) {
	missing := n - len(values)
	if missing <= 0 {
		return values, 0
	}
	for i := 0; i < missing; i++ {
		values = append(values, fill)
	}
	return values, missing
}
