package matbank

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/flver-matconv/pkg/encoding"
	"github.com/Faultbox/flver-matconv/pkg/flver"
)

// bankFile is the YAML and TOML form of a bank.
type bankFile struct {
	Materials []*MaterialDef `yaml:"materials" toml:"materials"`
}

// Load reads a bank file, picking the decoder from the extension: .xml, .yaml/.yml or .toml.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var bank *Bank
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xml":
		bank, err = ParseXML(data)
	case ".yaml", ".yml":
		bank, err = ParseYAML(data)
	case ".toml":
		bank, err = ParseTOML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBankFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("loading bank %s: %w", path, err)
	}
	return bank, nil
}

// ParseYAML decodes a YAML bank.
func ParseYAML(data []byte) (*Bank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return New(file.Materials...)
}

// ParseTOML decodes a TOML bank.
func ParseTOML(data []byte) (*Bank, error) {
	var file bankFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return New(file.Materials...)
}

type xmlBank struct {
	XMLName xml.Name         `xml:"MaterialInfoBank"`
	Defs    []xmlMaterialDef `xml:"MaterialDef"`
}

type xmlMaterialDef struct {
	MTD          string           `xml:"MTD,attr"`
	Shader       string           `xml:"Shader,attr"`
	Channels     []TextureChannel `xml:"TextureChannel"`
	GXItems      []GXItemDef      `xml:"GXItem"`
	Declarations []xmlDeclaration `xml:"VertexBufferDeclaration"`
}

type xmlDeclaration struct {
	Buffers []xmlBuffer `xml:"Buffer"`
}

type xmlBuffer struct {
	Members []flver.LayoutMember `xml:"Member"`
}

// ParseXML decodes an XML bank. Files may declare any charset x/text knows, such as
// Shift_JIS or UTF-16.
func ParseXML(data []byte) (*Bank, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = encoding.NewReader

	var file xmlBank
	if err := dec.Decode(&file); err != nil {
		return nil, err
	}

	defs := make([]*MaterialDef, len(file.Defs))
	for i, x := range file.Defs {
		def := &MaterialDef{
			MTD:             x.MTD,
			Shader:          x.Shader,
			TextureChannels: x.Channels,
			GXItems:         x.GXItems,
		}
		for _, decl := range x.Declarations {
			set := make(flver.LayoutSet, len(decl.Buffers))
			for j, buf := range decl.Buffers {
				set[j] = flver.BufferLayout(buf.Members)
			}
			def.Declarations = append(def.Declarations, Declaration{Buffers: set})
		}
		defs[i] = def
	}
	return New(defs...)
}
