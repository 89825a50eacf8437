package math

// Vec4 is a 4D vector. Tangents store the handedness sign in W.
type Vec4 struct {
	X float32 `yaml:"x" toml:"x"`
	Y float32 `yaml:"y" toml:"y"`
	Z float32 `yaml:"z" toml:"z"`
	W float32 `yaml:"w" toml:"w"`
}

// Components returns the vector as an array in X, Y, Z, W order.
func (v Vec4) Components() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}
