// Package math provides the small vector types carried by mesh vertices.
package math

// Vec3 is a 3D vector. UV sets use X and Y, Z carries the optional third coordinate.
type Vec3 struct {
	X float32 `yaml:"x" toml:"x"`
	Y float32 `yaml:"y" toml:"y"`
	Z float32 `yaml:"z" toml:"z"`
}
