package flver

// LastEnabledNode returns the index of the last node that is not disabled, or -1 when every
// node is disabled. It is the highest node index a bone-index attribute can refer to.
func LastEnabledNode(nodes []Node) int {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Enabled() {
			return i
		}
	}
	return -1
}

// NeedsWideBoneIndices reports whether the enabled skeleton is out of range for narrow
// bone-index encodings.
func (e *EncodingTable) NeedsWideBoneIndices(nodes []Node) bool {
	return LastEnabledNode(nodes) > e.MaxNarrowBoneIndex
}

// PromoteBoneIndices switches every BoneIndices member of set to the wide encoding when the
// skeleton needs it, editing the layouts in place. Any other bone-index encoding is replaced,
// wider ones included. It reports whether any member changed.
func (e *EncodingTable) PromoteBoneIndices(nodes []Node, set LayoutSet) bool {
	if !e.NeedsWideBoneIndices(nodes) {
		return false
	}

	wide := e.WideBoneIndexType
	changed := false
	for _, layout := range set {
		for i := range layout {
			m := &layout[i]
			if m.Semantic != SemanticBoneIndices || m.Type == wide {
				continue
			}
			m.Type = wide
			changed = true
		}
	}
	return changed
}

// PromoteBoneIndices widens the bone-index members of set using the default encoding table.
func PromoteBoneIndices(nodes []Node, set LayoutSet) bool {
	return defaultTable.PromoteBoneIndices(nodes, set)
}
