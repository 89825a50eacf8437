package flver

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DocumentFormat tags the YAML interchange form of a container.
const DocumentFormat = "flver2-yaml/1"

// Document errors.
var (
	ErrInvalidDocumentFormat = errors.New("invalid container document: expected format " + DocumentFormat)
	ErrEmptyDocument         = errors.New("container document has no flver section")
	ErrEmptyEntry            = errors.New("empty list entry")
)

type document struct {
	Format string `yaml:"format"`
	FLVER  *FLVER `yaml:"flver"`
}

// Parse decodes a container document and checks that every mesh reference resolves.
func Parse(data []byte) (*FLVER, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding container document: %w", err)
	}
	if doc.Format != DocumentFormat {
		return nil, fmt.Errorf("%w, got %q", ErrInvalidDocumentFormat, doc.Format)
	}
	if doc.FLVER == nil {
		return nil, ErrEmptyDocument
	}

	f := doc.FLVER
	if f.Layouts == nil {
		f.Layouts = NewLayoutTable()
	}
	if err := f.checkReferences(); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadFile loads a container document from disk.
func ReadFile(path string) (*FLVER, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Marshal encodes the container as a document.
func (f *FLVER) Marshal() ([]byte, error) {
	return yaml.Marshal(document{Format: DocumentFormat, FLVER: f})
}

// WriteFile saves the container to path. With backup set, an existing file at path is copied
// to path + ".bak" first.
func (f *FLVER) WriteFile(path string, backup bool) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}

	if backup {
		if err := backupFile(path); err != nil {
			return fmt.Errorf("backing up %s: %w", path, err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// BackupPath returns where WriteFile keeps the previous version of path.
func BackupPath(path string) string {
	return path + ".bak"
}

func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.WriteFile(BackupPath(path), data, 0644)
}

func (f *FLVER) checkReferences() error {
	for i, mat := range f.Materials {
		if mat == nil {
			return fmt.Errorf("material %d: %w", i, ErrEmptyEntry)
		}
	}
	layouts := f.Layouts.Len()
	for i, mesh := range f.Meshes {
		if mesh == nil {
			return fmt.Errorf("mesh %d: %w", i, ErrEmptyEntry)
		}
		if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(f.Materials) {
			return fmt.Errorf("mesh %d: %w: %d", i, ErrInvalidMaterialIndex, mesh.MaterialIndex)
		}
		for j, vb := range mesh.VertexBuffers {
			if vb.LayoutIndex < 0 || vb.LayoutIndex >= layouts {
				return fmt.Errorf("mesh %d buffer %d: %w: %d", i, j, ErrInvalidLayoutIndex, vb.LayoutIndex)
			}
		}
	}
	return nil
}
