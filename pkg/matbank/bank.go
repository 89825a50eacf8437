// Package matbank holds material definitions: the shader each MTD uses, its texture slots,
// default GX parameters and the vertex buffer declarations it accepts.
package matbank

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/flver-matconv/pkg/encoding"
	"github.com/Faultbox/flver-matconv/pkg/flver"
)

// Bank errors.
var (
	ErrUnknownBankFormat = errors.New("unknown material bank format")
	ErrEmptyBank         = errors.New("material bank has no definitions")
	ErrEmptyDefinition   = errors.New("material bank has an empty definition")
	ErrDuplicateMaterial = errors.New("material defined twice")
	ErrNoDeclarations    = errors.New("material has no vertex buffer declarations")
	ErrUnknownMaterial   = errors.New("material not found in bank")
)

// HexBytes is binary data written as a hex string in bank files.
type HexBytes []byte

// MarshalText implements encoding.TextMarshaler.
func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HexBytes) UnmarshalText(text []byte) error {
	data, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid hex data: %w", err)
	}
	*h = data
	return nil
}

// TextureChannel maps a texture role of the shader to the parameter name a material slot uses.
type TextureChannel struct {
	Key  string `yaml:"key" toml:"key" xml:"Key,attr"`
	Name string `yaml:"name" toml:"name" xml:"Name,attr"`
}

// GXItemDef is a default GX parameter block.
type GXItemDef struct {
	ID    string   `yaml:"id" toml:"id" xml:"ID,attr"`
	Unk04 int32    `yaml:"unk04" toml:"unk04" xml:"Unk04,attr"`
	Data  HexBytes `yaml:"data" toml:"data" xml:"Data,attr"`
}

// Declaration is one acceptable vertex buffer declaration of a shader.
type Declaration struct {
	Buffers flver.LayoutSet `yaml:"buffers" toml:"buffers"`
}

// MaterialDef describes one MTD.
type MaterialDef struct {
	MTD             string           `yaml:"mtd" toml:"mtd"`
	Shader          string           `yaml:"shader" toml:"shader"`
	TextureChannels []TextureChannel `yaml:"texture_channels" toml:"texture_channels"`
	GXItems         []GXItemDef      `yaml:"gx_items" toml:"gx_items"`
	Declarations    []Declaration    `yaml:"declarations" toml:"declarations"`
}

// LayoutCandidates returns the declarations as layout sets, in bank order. The sets share
// storage with the definition; clone before editing.
func (d *MaterialDef) LayoutCandidates() []flver.LayoutSet {
	sets := make([]flver.LayoutSet, len(d.Declarations))
	for i, decl := range d.Declarations {
		sets[i] = decl.Buffers
	}
	return sets
}

// TextureSlots returns empty texture slots named after the definition's channels.
func (d *MaterialDef) TextureSlots() []flver.Texture {
	textures := make([]flver.Texture, len(d.TextureChannels))
	for i, ch := range d.TextureChannels {
		textures[i] = flver.Texture{ParamName: ch.Name}
	}
	return textures
}

// DefaultGXList returns a fresh GX list built from the definition's default items.
func (d *MaterialDef) DefaultGXList() flver.GXList {
	list := make(flver.GXList, len(d.GXItems))
	for i, item := range d.GXItems {
		list[i] = flver.GXItem{
			ID:    item.ID,
			Unk04: item.Unk04,
			Data:  append([]byte(nil), item.Data...),
		}
	}
	return list
}

func (d *MaterialDef) validate() error {
	if encoding.NormalizeMTDName(d.MTD) == "" {
		return errors.New("material definition without MTD")
	}
	if len(d.Declarations) == 0 {
		return fmt.Errorf("%w: %s", ErrNoDeclarations, d.MTD)
	}
	return nil
}

// Bank indexes material definitions by normalized MTD name.
type Bank struct {
	defs map[string]*MaterialDef
}

// New builds a bank from defs, rejecting duplicates and definitions without declarations.
func New(defs ...*MaterialDef) (*Bank, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyBank
	}
	b := &Bank{defs: make(map[string]*MaterialDef, len(defs))}
	for i, def := range defs {
		if def == nil {
			return nil, fmt.Errorf("%w at %d", ErrEmptyDefinition, i)
		}
		if err := def.validate(); err != nil {
			return nil, err
		}
		key := encoding.NormalizeMTDName(def.MTD)
		if _, ok := b.defs[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMaterial, def.MTD)
		}
		b.defs[key] = def
	}
	return b, nil
}

// Len returns the number of definitions.
func (b *Bank) Len() int {
	return len(b.defs)
}

// Lookup finds the definition for an MTD name or path, ignoring case, directory and extension.
func (b *Bank) Lookup(mtd string) (*MaterialDef, error) {
	def, ok := b.defs[encoding.NormalizeMTDName(mtd)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, mtd)
	}
	return def, nil
}

// Defs returns every definition sorted by normalized MTD name.
func (b *Bank) Defs() []*MaterialDef {
	keys := make([]string, 0, len(b.defs))
	for key := range b.defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defs := make([]*MaterialDef, len(keys))
	for i, key := range keys {
		defs[i] = b.defs[key]
	}
	return defs
}
