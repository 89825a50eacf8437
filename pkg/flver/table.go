package flver

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// LayoutTable is the container-wide list of buffer layouts that meshes reference by index.
// During a conversion it only grows: existing entries are never removed or reordered.
//
// The mutex makes Resolve the single serialization point when materials are converted
// concurrently. Layouts handed out by At and Layouts share storage with the table; callers must
// not modify them.
type LayoutTable struct {
	mu      sync.Mutex
	layouts []BufferLayout
}

// NewLayoutTable returns a table holding the given layouts in order.
func NewLayoutTable(layouts ...BufferLayout) *LayoutTable {
	return &LayoutTable{layouts: layouts}
}

// Len returns the number of layouts in the table.
func (t *LayoutTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.layouts)
}

// At returns the layout stored at index.
func (t *LayoutTable) At(index int) (BufferLayout, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.layouts) {
		return nil, false
	}
	return t.layouts[index], true
}

// All returns the layouts in table order.
func (t *LayoutTable) All() []BufferLayout {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]BufferLayout, len(t.layouts))
	copy(out, t.layouts)
	return out
}

// IndexOf returns the lowest index holding a layout structurally equal to layout.
func (t *LayoutTable) IndexOf(layout BufferLayout) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexOf(layout)
}

func (t *LayoutTable) indexOf(layout BufferLayout) (int, bool) {
	for i, existing := range t.layouts {
		if existing.Equal(layout) {
			return i, true
		}
	}
	return -1, false
}

// Resolve maps every layout of set to a table index, appending the ones the table does not
// hold yet. The result has one index per entry of set, in the same order, and is meant to be
// used verbatim as a mesh's vertex buffer list. Once a set has been resolved, resolving it again
// returns the same indices without touching the table.
func (t *LayoutTable) Resolve(set LayoutSet) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	indices := make([]int, 0, len(set))
	for _, target := range set {
		if len(t.layouts) == 0 {
			indices = append(indices, t.appendLocked(target))
			continue
		}
		index, ok := t.indexOf(target)
		if !ok {
			index = t.appendLocked(target)
		}
		indices = append(indices, index)
	}
	return indices
}

// appendLocked stores a copy of layout so later edits to the caller's copy never leak into the
// table, and returns its index.
func (t *LayoutTable) appendLocked(layout BufferLayout) int {
	t.layouts = append(t.layouts, layout.Clone())
	return len(t.layouts) - 1
}

// Layouts returns the table-held layouts for indices, in order.
func (t *LayoutTable) Layouts(indices []int) (LayoutSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := make(LayoutSet, 0, len(indices))
	for _, index := range indices {
		if index < 0 || index >= len(t.layouts) {
			return nil, fmt.Errorf("%w: %d (table has %d)", ErrInvalidLayoutIndex, index, len(t.layouts))
		}
		set = append(set, t.layouts[index])
	}
	return set, nil
}

// Reset empties the table. Whole-file conversion starts from a fresh table; nothing else may
// shrink it.
func (t *LayoutTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.layouts = nil
}

// MarshalYAML implements yaml.Marshaler.
func (t *LayoutTable) MarshalYAML() (interface{}, error) {
	return t.All(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *LayoutTable) UnmarshalYAML(value *yaml.Node) error {
	var layouts []BufferLayout
	if err := value.Decode(&layouts); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.layouts = layouts
	return nil
}
