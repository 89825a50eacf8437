package math

import (
	"testing"
)

func TestVec4Components(t *testing.T) {
	v := Vec4{1, 2, 3, -1}
	if got := v.Components(); got != [4]float32{1, 2, 3, -1} {
		t.Errorf("Components() = %v", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name         string
		v, low, high float32
		want         float32
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, -1, 1, -1},
		{"above", 300, 0, 255, 255},
		{"edge", 1, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.low, tt.high); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.low, tt.high, got, tt.want)
			}
		})
	}

	if got := Clamp(70000, 0, 65535); got != 65535 {
		t.Errorf("Clamp int = %d, want 65535", got)
	}
}
