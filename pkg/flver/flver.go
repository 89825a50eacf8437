package flver

import (
	"errors"

	"github.com/Faultbox/flver-matconv/pkg/math"
)

// FLVER format errors.
var (
	ErrUnknownLayoutType    = errors.New("unknown layout type")
	ErrUnknownSemantic      = errors.New("unknown layout semantic")
	ErrInvalidLayoutIndex   = errors.New("vertex buffer references a layout outside the table")
	ErrInvalidMaterialIndex = errors.New("mesh references a material outside the material list")
	ErrNoLayoutCandidates   = errors.New("no candidate layout sets offered")
)

// Header versions the converter cares about.
const (
	VersionEldenRing  uint32 = 0x2001A
	VersionNightreign uint32 = 0x20021
)

// Header holds the container header fields touched by conversion.
type Header struct {
	Version uint32 `yaml:"version"`
	Unk68   int32  `yaml:"unk68"`
}

// IsPreEldenRing reports whether the file predates the Elden Ring container revision.
func (h Header) IsPreEldenRing() bool {
	return h.Version < VersionEldenRing
}

// VertexColor is an 8-bit color in the format's A, R, G, B channel order.
type VertexColor struct {
	A uint8 `yaml:"a"`
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// Vertex is one mesh vertex. Tangents, UVs and Colors are variable length; how many of each
// a mesh needs is decided by the buffer layouts it references.
type Vertex struct {
	Position    math.Vec3     `yaml:"position,flow"`
	BoneWeights [4]float32    `yaml:"bone_weights,flow"`
	BoneIndices [4]int32      `yaml:"bone_indices,flow"`
	Normal      math.Vec3     `yaml:"normal,flow"`
	NormalW     int32         `yaml:"normal_w"`
	Bitangent   math.Vec4     `yaml:"bitangent,flow"`
	Tangents    []math.Vec4   `yaml:"tangents,flow"`
	UVs         []math.Vec3   `yaml:"uvs,flow"`
	Colors      []VertexColor `yaml:"colors,flow"`
}

// VertexBuffer points a mesh at one entry of the container's layout table.
type VertexBuffer struct {
	LayoutIndex int `yaml:"layout_index"`
}

// Mesh is a group of vertices drawn with one material.
type Mesh struct {
	MaterialIndex int            `yaml:"material_index"`
	NodeIndex     int            `yaml:"node_index"`
	VertexBuffers []VertexBuffer `yaml:"vertex_buffers,flow"`
	Vertices      []Vertex       `yaml:"vertices"`
}

// NodeFlags is the bit set stored on each skeleton node.
type NodeFlags uint32

const (
	NodeDisabled NodeFlags = 1 << 0
	NodeDummy    NodeFlags = 1 << 1
	NodeMesh     NodeFlags = 1 << 3
)

// Has reports whether every bit of flag is set.
func (f NodeFlags) Has(flag NodeFlags) bool {
	return f&flag == flag
}

// Node is one skeleton node.
type Node struct {
	Name        string    `yaml:"name"`
	ParentIndex int       `yaml:"parent_index"`
	Flags       NodeFlags `yaml:"flags"`
}

// Enabled reports whether the node participates in bone-index range calculations.
func (n Node) Enabled() bool {
	return !n.Flags.Has(NodeDisabled)
}

// Texture is one texture slot of a material.
type Texture struct {
	ParamName string `yaml:"param_name"`
	Path      string `yaml:"path,omitempty"`
}

// Material binds a shader definition (MTD) to its textures and GX list.
type Material struct {
	Name     string    `yaml:"name"`
	MTD      string    `yaml:"mtd"`
	Index    int       `yaml:"index"`
	GXIndex  int       `yaml:"gx_index"`
	Textures []Texture `yaml:"textures"`
}

// GXItem is one opaque shader parameter block.
type GXItem struct {
	ID    string `yaml:"id" toml:"id"`
	Unk04 int32  `yaml:"unk04" toml:"unk04"`
	Data  []byte `yaml:"data" toml:"data"`
}

// GXList is the parameter block list a material points at through GXIndex.
type GXList []GXItem

// SkeletonBone references a node from a skeleton set.
type SkeletonBone struct {
	NodeIndex   int `yaml:"node_index"`
	ParentIndex int `yaml:"parent_index"`
}

// SkeletonSet is the skeleton hierarchy added by the Elden Ring revision.
type SkeletonSet struct {
	BaseSkeleton []SkeletonBone `yaml:"base_skeleton"`
	AllSkeletons []SkeletonBone `yaml:"all_skeletons"`
}

// FLVER is an in-memory mesh container.
type FLVER struct {
	Header    Header       `yaml:"header"`
	Nodes     []Node       `yaml:"nodes"`
	Materials []*Material  `yaml:"materials"`
	GXLists   []GXList     `yaml:"gx_lists"`
	Skeletons *SkeletonSet `yaml:"skeletons,omitempty"`
	Layouts   *LayoutTable `yaml:"buffer_layouts"`
	Meshes    []*Mesh      `yaml:"meshes"`
}

// New returns an empty Elden Ring container.
func New() *FLVER {
	return &FLVER{
		Header:  Header{Version: VersionEldenRing},
		Layouts: NewLayoutTable(),
	}
}

// MeshesForMaterial returns the meshes drawn with the material at index, in file order.
func (f *FLVER) MeshesForMaterial(index int) []*Mesh {
	var meshes []*Mesh
	for _, mesh := range f.Meshes {
		if mesh.MaterialIndex == index {
			meshes = append(meshes, mesh)
		}
	}
	return meshes
}

// AddGXList appends a GX list and returns its index.
func (f *FLVER) AddGXList(list GXList) int {
	f.GXLists = append(f.GXLists, list)
	return len(f.GXLists) - 1
}
