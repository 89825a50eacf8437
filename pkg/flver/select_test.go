package flver

import (
	"errors"
	"testing"

	"github.com/Faultbox/flver-matconv/pkg/math"
)

func TestSelectLayoutSet(t *testing.T) {
	none := LayoutSet{tangentLayout(0)}
	one := LayoutSet{tangentLayout(1)}
	two := LayoutSet{tangentLayout(1), tangentLayout(1)}

	tests := []struct {
		name         string
		candidates   []LayoutSet
		tangents     int
		want         LayoutSet
		wantFallback bool
	}{
		{"single candidate always used", []LayoutSet{none}, 3, none, false},
		{"first qualifying wins", []LayoutSet{none, one, two}, 1, one, false},
		{"zero tangents takes first", []LayoutSet{none, two}, 0, none, false},
		{"summed across layouts", []LayoutSet{one, two}, 2, two, false},
		{"none qualifies falls back", []LayoutSet{one, none}, 2, one, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Vertex{Tangents: make([]math.Vec4, tt.tangents)}
			got, fallback, err := SelectLayoutSet(tt.candidates, v)
			if err != nil {
				t.Fatalf("SelectLayoutSet() error: %v", err)
			}
			if fallback != tt.wantFallback {
				t.Errorf("fallback = %v, want %v", fallback, tt.wantFallback)
			}
			if len(got) != len(tt.want) || !got[0].Equal(tt.want[0]) {
				t.Errorf("SelectLayoutSet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectLayoutSet_NoCandidates(t *testing.T) {
	_, _, err := SelectLayoutSet(nil, &Vertex{})
	if !errors.Is(err, ErrNoLayoutCandidates) {
		t.Errorf("expected ErrNoLayoutCandidates, got %v", err)
	}
}
