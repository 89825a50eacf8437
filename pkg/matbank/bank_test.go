package matbank

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/flver-matconv/pkg/flver"
)

const yamlBank = `
materials:
  - mtd: C[AMSN].mtd
    shader: C[AMSN]
    texture_channels:
      - {key: AlbedoMap0, name: C_AMSN__snp_Texture2D_2_AlbedoMap_0}
      - {key: NormalMap0, name: C_AMSN__snp_Texture2D_7_NormalMap_4}
    gx_items:
      - {id: GXMD, unk04: 131, data: "0a0b0c"}
    declarations:
      - buffers:
          - - {stream: 0, type: Float3, semantic: Position, index: 0}
            - {stream: 0, type: Byte4, semantic: Tangent, index: 0}
            - {stream: 0, type: Half2, semantic: UV, index: 0}
      - buffers:
          - - {stream: 0, type: Float3, semantic: Position, index: 0}
            - {stream: 0, type: Byte4, semantic: Tangent, index: 0}
            - {stream: 0, type: Byte4, semantic: Tangent, index: 1}
  - mtd: P[ARSN].mtd
    shader: P[ARSN]
    declarations:
      - buffers:
          - - {stream: 0, type: Float3, semantic: Position, index: 0}
`

const tomlBank = `
[[materials]]
mtd = "M[ARSN]_Cloth.mtd"
shader = "M[ARSN]"
texture_channels = [{ key = "AlbedoMap0", name = "M_ARSN__snp_Texture2D_0_AlbedoMap_0" }]
gx_items = [{ id = "GXMD", unk04 = 131, data = "ff00" }]

[[materials.declarations]]
buffers = [
  [
    { stream = 0, type = "Float3", semantic = "Position", index = 0 },
    { stream = 0, type = "UByte4", semantic = "BoneIndices", index = 0 },
  ],
  [
    { stream = 1, type = "Float4", semantic = "UV", index = 0 },
  ],
]
`

const xmlBankShiftJIS = `<?xml version="1.0" encoding="Shift_JIS"?>
<MaterialInfoBank>
  <MaterialDef MTD="N:\GR\data\Material\mtd\C[AMSN]_e.mtd" Shader="C[AMSN]_E">
    <TextureChannel Key="AlbedoMap0" Name="C_AMSN__snp_Texture2D_2_AlbedoMap_0"/>
    <GXItem ID="GXMD" Unk04="131" Data="01020304"/>
    <VertexBufferDeclaration>
      <Buffer>
        <Member Stream="0" Type="Float3" Semantic="Position" Index="0"/>
        <Member Stream="0" Type="UByte4Norm" Semantic="VertexColor" Index="0"/>
      </Buffer>
      <Buffer>
        <Member Stream="1" Type="Short4" Semantic="UV" Index="0"/>
      </Buffer>
    </VertexBufferDeclaration>
  </MaterialDef>
</MaterialInfoBank>
`

func writeBank(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write bank fixture: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	bank, err := Load(writeBank(t, "bank.yaml", yamlBank))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if bank.Len() != 2 {
		t.Fatalf("expected 2 definitions, got %d", bank.Len())
	}
	def, err := bank.Lookup("c[amsn]")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if def.Shader != "C[AMSN]" {
		t.Errorf("shader = %q", def.Shader)
	}

	candidates := def.LayoutCandidates()
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if got := candidates[1].Count(flver.SemanticTangent); got != 2 {
		t.Errorf("second candidate tangents = %d, want 2", got)
	}
	if candidates[0][0][2].Type != flver.TypeHalf2 {
		t.Errorf("uv type = %s, want Half2", candidates[0][0][2].Type)
	}

	gx := def.DefaultGXList()
	if len(gx) != 1 || gx[0].ID != "GXMD" || gx[0].Unk04 != 131 || string(gx[0].Data) != "\x0a\x0b\x0c" {
		t.Errorf("DefaultGXList() = %+v", gx)
	}
	slots := def.TextureSlots()
	if len(slots) != 2 || slots[1].ParamName != "C_AMSN__snp_Texture2D_7_NormalMap_4" {
		t.Errorf("TextureSlots() = %+v", slots)
	}
}

func TestLoadTOML(t *testing.T) {
	bank, err := Load(writeBank(t, "bank.toml", tomlBank))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	def, err := bank.Lookup(`some\dir\m[arsn]_cloth.MTD`)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	set := def.LayoutCandidates()[0]
	if len(set) != 2 {
		t.Fatalf("expected 2 buffers, got %d", len(set))
	}
	if set[0][1].Semantic != flver.SemanticBoneIndices || set[0][1].Type != flver.TypeUByte4 {
		t.Errorf("bone member = %s", set[0][1])
	}
	if got := flver.RequiredCounts(set).UVs; got != 2 {
		t.Errorf("required UVs = %d, want 2 for Float4", got)
	}
	if string(def.GXItems[0].Data) != "\xff\x00" {
		t.Errorf("gx data = %x", def.GXItems[0].Data)
	}
}

func TestLoadXML(t *testing.T) {
	bank, err := Load(writeBank(t, "BankER.xml", xmlBankShiftJIS))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	def, err := bank.Lookup("C[AMSN]_e")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	set := def.LayoutCandidates()[0]
	if len(set) != 2 || len(set[0]) != 2 || len(set[1]) != 1 {
		t.Fatalf("unexpected declaration shape: %v", set)
	}
	if set[1][0] != (flver.LayoutMember{Stream: 1, Type: flver.TypeShort4, Semantic: flver.SemanticUV}) {
		t.Errorf("uv member = %s", set[1][0])
	}
	if got := def.DefaultGXList()[0].Data; string(got) != "\x01\x02\x03\x04" {
		t.Errorf("gx data = %x", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "unknown extension",
			file:    "bank.json",
			content: "{}",
			wantErr: ErrUnknownBankFormat,
		},
		{
			name:    "empty bank",
			file:    "bank.yaml",
			content: "materials: []\n",
			wantErr: ErrEmptyBank,
		},
		{
			name:    "null definition",
			file:    "bank.yaml",
			content: "materials: [~]\n",
			wantErr: ErrEmptyDefinition,
		},
		{
			name: "duplicate",
			file: "bank.yaml",
			content: `
materials:
  - {mtd: a.mtd, declarations: [{buffers: [[{type: Float3, semantic: Position}]]}]}
  - {mtd: dir/A.MTD, declarations: [{buffers: [[{type: Float3, semantic: Position}]]}]}
`,
			wantErr: ErrDuplicateMaterial,
		},
		{
			name:    "no declarations",
			file:    "bank.toml",
			content: "[[materials]]\nmtd = \"a.mtd\"\n",
			wantErr: ErrNoDeclarations,
		},
		{
			name: "unknown layout type",
			file: "bank.xml",
			content: `<MaterialInfoBank><MaterialDef MTD="a.mtd"><VertexBufferDeclaration><Buffer>` +
				`<Member Type="Float9" Semantic="Position"/></Buffer></VertexBufferDeclaration></MaterialDef></MaterialInfoBank>`,
			wantErr: flver.ErrUnknownLayoutType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeBank(t, tt.file, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsNilDefinition(t *testing.T) {
	def := &MaterialDef{
		MTD:          "a.mtd",
		Declarations: []Declaration{{Buffers: flver.LayoutSet{{{Type: flver.TypeFloat3, Semantic: flver.SemanticPosition}}}}},
	}
	if _, err := New(def, nil); !errors.Is(err, ErrEmptyDefinition) {
		t.Errorf("New() error = %v, want %v", err, ErrEmptyDefinition)
	}
}

func TestLookupUnknown(t *testing.T) {
	bank, err := ParseYAML([]byte(yamlBank))
	if err != nil {
		t.Fatalf("ParseYAML() error: %v", err)
	}
	if _, err := bank.Lookup("x[nope]"); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("expected ErrUnknownMaterial, got %v", err)
	}
}

func TestDefsSorted(t *testing.T) {
	bank, err := ParseYAML([]byte(yamlBank))
	if err != nil {
		t.Fatalf("ParseYAML() error: %v", err)
	}
	defs := bank.Defs()
	if len(defs) != 2 || defs[0].MTD != "C[AMSN].mtd" || defs[1].MTD != "P[ARSN].mtd" {
		t.Errorf("Defs() order = %v, %v", defs[0].MTD, defs[1].MTD)
	}
}

func TestDefaultGXListIsACopy(t *testing.T) {
	def := &MaterialDef{GXItems: []GXItemDef{{ID: "GXMD", Data: HexBytes{1, 2}}}}
	list := def.DefaultGXList()
	list[0].Data[0] = 9
	if def.GXItems[0].Data[0] != 1 {
		t.Error("DefaultGXList shares data with the definition")
	}
}
