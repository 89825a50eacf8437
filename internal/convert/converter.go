// Package convert applies material bank definitions to FLVER containers.
package convert

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/flver-matconv/pkg/encoding"
	"github.com/Faultbox/flver-matconv/pkg/flver"
	"github.com/Faultbox/flver-matconv/pkg/matbank"
)

// Conversion errors.
var (
	ErrNoMeshes         = errors.New("material has no meshes")
	ErrUnmappedMaterial = errors.New("source material has no mapping")
)

// Report summarizes what applying one material changed.
type Report struct {
	Material      int
	Name          string
	MTD           string
	LayoutIndices []int
	Fallback      bool
	Meshes        int
	Vertices      int
	Padded        flver.PadResult
	Promoted      bool
}

// Converter applies bank definitions to containers. A Converter holds no per-container state;
// the container's layout table is the only shared structure it writes to.
type Converter struct {
	bank    *matbank.Bank
	enc     *flver.EncodingTable
	log     *zap.Logger
	session uuid.UUID
}

// New returns a converter drawing definitions from bank. Every log line it writes carries a
// session id so runs can be told apart in a shared log file.
func New(bank *matbank.Bank, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	session := uuid.New()
	return &Converter{
		bank:    bank,
		enc:     flver.DefaultEncodingTable(),
		log:     log.With(zap.String("session", session.String())),
		session: session,
	}
}

// Session returns the id attached to this converter's log lines.
func (c *Converter) Session() uuid.UUID {
	return c.session
}

// ApplyMaterial rewrites material matIndex of f to use def: a fresh GX list, the new MTD,
// texture slots named after def's channels, and vertex buffers chosen from def's declarations.
// Every vertex of the material's meshes is padded to the chosen layouts and bone indices are
// widened when the skeleton needs it.
//
// Nothing is modified when an error is returned.
func (c *Converter) ApplyMaterial(f *flver.FLVER, matIndex int, def *matbank.MaterialDef) (*Report, error) {
	if matIndex < 0 || matIndex >= len(f.Materials) {
		return nil, fmt.Errorf("%w: %d", flver.ErrInvalidMaterialIndex, matIndex)
	}
	mat := f.Materials[matIndex]

	meshes := f.MeshesForMaterial(matIndex)
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: #%d %s", ErrNoMeshes, matIndex, mat.Name)
	}

	var first *flver.Vertex
	if len(meshes[0].Vertices) > 0 {
		first = &meshes[0].Vertices[0]
	}
	set, fallback, err := c.enc.SelectLayoutSet(def.LayoutCandidates(), first)
	if err != nil {
		return nil, fmt.Errorf("material #%d %s: %w", matIndex, def.MTD, err)
	}

	log := c.log.With(zap.Int("material", matIndex), zap.String("mtd", def.MTD))
	if fallback {
		log.Warn("no declaration covers the mesh tangents, using the first one",
			zap.Int("tangents", len(first.Tangents)))
	}

	mat.GXIndex = f.AddGXList(def.DefaultGXList())
	mat.MTD = def.MTD
	mat.Textures = def.TextureSlots()

	// Widen a private copy before resolving so every material of the container dedups against
	// the same promoted layouts.
	set = set.Clone()
	promoted := c.enc.PromoteBoneIndices(f.Nodes, set)

	if f.Layouts == nil {
		f.Layouts = flver.NewLayoutTable()
	}
	indices := f.Layouts.Resolve(set)

	report := &Report{
		Material:      matIndex,
		Name:          mat.Name,
		MTD:           def.MTD,
		LayoutIndices: indices,
		Fallback:      fallback,
		Meshes:        len(meshes),
		Promoted:      promoted,
	}
	for _, mesh := range meshes {
		mesh.VertexBuffers = make([]flver.VertexBuffer, len(indices))
		for i, index := range indices {
			mesh.VertexBuffers[i] = flver.VertexBuffer{LayoutIndex: index}
		}
		for i := range mesh.Vertices {
			report.Padded.Add(c.enc.PadVertex(&mesh.Vertices[i], set))
		}
		report.Vertices += len(mesh.Vertices)
	}

	log.Info("material applied",
		zap.Ints("layouts", indices),
		zap.Int("meshes", report.Meshes),
		zap.Int("vertices", report.Vertices),
		zap.Int("padded", report.Padded.Total()),
		zap.Bool("promoted", report.Promoted),
	)
	return report, nil
}

// SwapMaterial looks mtd up in the bank and applies it to material matIndex.
func (c *Converter) SwapMaterial(f *flver.FLVER, matIndex int, mtd string) (*Report, error) {
	def, err := c.bank.Lookup(mtd)
	if err != nil {
		return nil, err
	}
	return c.ApplyMaterial(f, matIndex, def)
}

// ConvertFlver upgrades f to the Elden Ring revision and applies a bank definition to every
// material. mapping is keyed by source MTD and names the bank MTD to use; both sides are
// matched ignoring case, directory and extension.
//
// Unmapped materials are reported before f is touched. Failures while applying materials are
// joined and returned with the reports of the materials that succeeded; a container for which
// ConvertFlver returned an error must not be saved.
func (c *Converter) ConvertFlver(f *flver.FLVER, mapping map[string]string) ([]*Report, error) {
	defs, err := c.resolveMapping(f, mapping)
	if err != nil {
		return nil, err
	}

	preER := f.Header.IsPreEldenRing()
	nightreign := f.Header.Version == flver.VersionNightreign
	c.log.Info("converting container",
		zap.String("from", fmt.Sprintf("%#x", f.Header.Version)),
		zap.Int("materials", len(f.Materials)),
		zap.Int("meshes", len(f.Meshes)),
	)

	f.Header.Version = flver.VersionEldenRing
	if preER {
		c.log.Debug("adding skeleton set")
		f.Skeletons = &flver.SkeletonSet{}
	}
	if nightreign {
		f.Header.Unk68 = 4
	}
	if f.Layouts == nil {
		f.Layouts = flver.NewLayoutTable()
	}
	f.Layouts.Reset()
	f.GXLists = nil

	var (
		reports []*Report
		errs    []error
	)
	for i, mat := range f.Materials {
		if preER {
			mat.Index = i
		}
		report, err := c.ApplyMaterial(f, i, defs[i])
		if err != nil {
			c.log.Error("material conversion failed", zap.Int("material", i), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

// resolveMapping returns the definition for every material of f, indexed like f.Materials.
func (c *Converter) resolveMapping(f *flver.FLVER, mapping map[string]string) ([]*matbank.MaterialDef, error) {
	normalized := make(map[string]string, len(mapping))
	for src, dst := range mapping {
		normalized[encoding.NormalizeMTDName(src)] = dst
	}

	defs := make([]*matbank.MaterialDef, len(f.Materials))
	missing := map[string]bool{}
	var errs []error
	for i, mat := range f.Materials {
		key := encoding.NormalizeMTDName(mat.MTD)
		dst, ok := normalized[key]
		if !ok {
			missing[key] = true
			continue
		}
		def, err := c.bank.Lookup(dst)
		if err != nil {
			errs = append(errs, fmt.Errorf("material #%d %s: %w", i, mat.Name, err))
			continue
		}
		defs[i] = def
	}

	keys := make([]string, 0, len(missing))
	for key := range missing {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnmappedMaterial, key))
	}
	return defs, errors.Join(errs...)
}

// SourceMaterials returns the distinct normalized MTD names used by f, in first-use order.
// These are the keys ConvertFlver expects in its mapping.
func SourceMaterials(f *flver.FLVER) []string {
	seen := map[string]bool{}
	var names []string
	for _, mat := range f.Materials {
		key := encoding.NormalizeMTDName(mat.MTD)
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	return names
}

// Verify runs the structural encoder over f and logs the outcome.
func (c *Converter) Verify(f *flver.FLVER) error {
	if err := f.Verify(); err != nil {
		c.log.Error("container does not encode against its layouts", zap.Error(err))
		return err
	}
	c.log.Debug("container verified", zap.Int("meshes", len(f.Meshes)), zap.Int("layouts", f.Layouts.Len()))
	return nil
}
