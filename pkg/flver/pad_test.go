package flver

import (
	"reflect"
	"testing"

	"github.com/Faultbox/flver-matconv/pkg/math"
)

func tangentLayout(n int) BufferLayout {
	layout := BufferLayout{{Type: TypeFloat3, Semantic: SemanticPosition}}
	for i := 0; i < n; i++ {
		layout = append(layout, LayoutMember{Type: TypeByte4, Semantic: SemanticTangent, Index: int32(i)})
	}
	return layout
}

func TestRequiredCounts(t *testing.T) {
	tests := []struct {
		name string
		set  LayoutSet
		want AttributeCounts
	}{
		{
			name: "empty",
			set:  nil,
			want: AttributeCounts{},
		},
		{
			name: "single packed uv types",
			set: LayoutSet{{
				{Type: TypeFloat2, Semantic: SemanticUV},
				{Type: TypeShort2, Semantic: SemanticUV, Index: 1},
			}},
			want: AttributeCounts{UVs: 2},
		},
		{
			name: "double packed uv types",
			set: LayoutSet{{
				{Type: TypeFloat4, Semantic: SemanticUV},
				{Type: TypeShort4, Semantic: SemanticUV, Index: 1},
				{Type: TypeHalf2, Semantic: SemanticUV, Index: 2},
				{Type: TypeUByte4Norm, Semantic: SemanticUV, Index: 3},
			}},
			want: AttributeCounts{UVs: 8},
		},
		{
			name: "summed across layouts",
			set: LayoutSet{
				tangentLayout(2),
				{
					{Type: TypeUByte4Norm, Semantic: SemanticVertexColor},
					{Type: TypeUByte4Norm, Semantic: SemanticVertexColor, Index: 1},
					{Type: TypeFloat2, Semantic: SemanticUV},
				},
			},
			want: AttributeCounts{Tangents: 2, UVs: 1, Colors: 2},
		},
		{
			name: "other semantics ignored",
			set:  LayoutSet{skinLayout(), posLayout()},
			want: AttributeCounts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredCounts(tt.set); got != tt.want {
				t.Errorf("RequiredCounts() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPadVertex_TangentAndHalf2UV(t *testing.T) {
	tangent := math.Vec4{X: 1, W: -1}
	v := &Vertex{Tangents: []math.Vec4{tangent}}
	set := LayoutSet{
		tangentLayout(2),
		{{Stream: 1, Type: TypeHalf2, Semantic: SemanticUV}},
	}

	res := PadVertex(v, set)

	if len(v.Tangents) != 2 {
		t.Fatalf("expected 2 tangents, got %d", len(v.Tangents))
	}
	if v.Tangents[0] != tangent || v.Tangents[1] != tangent {
		t.Errorf("tangents = %v, want the first tangent duplicated", v.Tangents)
	}
	if len(v.UVs) != 2 {
		t.Fatalf("expected 2 UVs, got %d", len(v.UVs))
	}
	for i, uv := range v.UVs {
		if uv != PaddingUV {
			t.Errorf("uv %d = %v, want zero vector", i, uv)
		}
	}
	if res != (PadResult{Tangents: 1, UVs: 2}) {
		t.Errorf("PadResult = %+v", res)
	}
}

func TestPadVertex_RepeatsFirstUV(t *testing.T) {
	first := math.Vec3{X: 0.25, Y: 0.75}
	second := math.Vec3{X: 0.5, Y: 0.5}
	v := &Vertex{UVs: []math.Vec3{first, second}}
	set := LayoutSet{{
		{Type: TypeFloat4, Semantic: SemanticUV},
		{Type: TypeFloat2, Semantic: SemanticUV, Index: 1},
	}}

	PadVertex(v, set)

	want := []math.Vec3{first, second, first}
	if !reflect.DeepEqual(v.UVs, want) {
		t.Errorf("UVs = %v, want %v", v.UVs, want)
	}
}

func TestPadVertex_ColorSentinel(t *testing.T) {
	existing := VertexColor{A: 255, R: 10, G: 20, B: 30}
	v := &Vertex{Colors: []VertexColor{existing}}
	set := LayoutSet{{
		{Type: TypeUByte4Norm, Semantic: SemanticVertexColor},
		{Type: TypeUByte4Norm, Semantic: SemanticVertexColor, Index: 1},
		{Type: TypeUByte4Norm, Semantic: SemanticVertexColor, Index: 2},
	}}

	PadVertex(v, set)

	want := []VertexColor{existing, PaddingColor, PaddingColor}
	if !reflect.DeepEqual(v.Colors, want) {
		t.Errorf("Colors = %v, want %v", v.Colors, want)
	}
	if PaddingColor != (VertexColor{A: 255, R: 255, G: 0, B: 0}) {
		t.Errorf("PaddingColor changed: %+v", PaddingColor)
	}
}

func TestPadVertex_SufficientIsUntouched(t *testing.T) {
	v := &Vertex{
		Tangents: []math.Vec4{{X: 1}, {Y: 1}, {Z: 1}},
		UVs:      []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}},
		Colors:   []VertexColor{{R: 1}, {G: 1}},
	}
	before := cloneVertex(v)
	set := LayoutSet{
		tangentLayout(2),
		{
			{Type: TypeFloat4, Semantic: SemanticUV},
			{Type: TypeUByte4Norm, Semantic: SemanticVertexColor},
		},
	}

	res := PadVertex(v, set)

	if res.Total() != 0 {
		t.Errorf("PadResult = %+v, want nothing added", res)
	}
	if !reflect.DeepEqual(v, before) {
		t.Errorf("vertex changed:\n got  %+v\n want %+v", v, before)
	}
}

func TestPadVertex_Monotonic(t *testing.T) {
	sets := []LayoutSet{
		nil,
		{tangentLayout(1)},
		{tangentLayout(3), uvLayout()},
		{{{Type: TypeShort4, Semantic: SemanticUV}, {Type: TypeFloat4, Semantic: SemanticUV, Index: 1}}},
	}
	vertices := []Vertex{
		{},
		{Tangents: []math.Vec4{{X: 1}}},
		{UVs: []math.Vec3{{X: 0.1}, {X: 0.2}, {X: 0.3}, {X: 0.4}, {X: 0.5}}},
		{Colors: []VertexColor{{R: 9}}, Tangents: []math.Vec4{{Y: 1}, {Z: 1}}},
	}

	for si, set := range sets {
		required := RequiredCounts(set)
		for vi := range vertices {
			v := cloneVertex(&vertices[vi])
			before := cloneVertex(v)

			PadVertex(v, set)

			if !CountsOf(v).Covers(required) {
				t.Errorf("set %d vertex %d: counts %+v do not cover %+v", si, vi, CountsOf(v), required)
			}
			if len(v.Tangents) < len(before.Tangents) || len(v.UVs) < len(before.UVs) || len(v.Colors) < len(before.Colors) {
				t.Errorf("set %d vertex %d: attribute list shrank", si, vi)
			}
			if !reflect.DeepEqual(prefix(v.Tangents, len(before.Tangents)), before.Tangents) ||
				!reflect.DeepEqual(prefix(v.UVs, len(before.UVs)), before.UVs) ||
				!reflect.DeepEqual(prefix(v.Colors, len(before.Colors)), before.Colors) {
				t.Errorf("set %d vertex %d: existing values altered", si, vi)
			}
		}
	}
}

func TestEncodingTable_CustomRevision(t *testing.T) {
	table := DefaultEncodingTable()
	table.DoublePackedUV[TypeHalf4] = true

	set := LayoutSet{{{Type: TypeHalf4, Semantic: SemanticUV}}}
	if got := table.RequiredCounts(set).UVs; got != 2 {
		t.Errorf("custom table UVs = %d, want 2", got)
	}
	if got := RequiredCounts(set).UVs; got != 1 {
		t.Errorf("default table UVs = %d, want 1", got)
	}
}

func cloneVertex(v *Vertex) *Vertex {
	c := *v
	c.Tangents = prefix(v.Tangents, len(v.Tangents))
	c.UVs = prefix(v.UVs, len(v.UVs))
	c.Colors = prefix(v.Colors, len(v.Colors))
	return &c
}

func prefix[T any](values []T, n int) []T {
	if values == nil {
		return nil
	}
	return append([]T(nil), values[:n]...)
}
