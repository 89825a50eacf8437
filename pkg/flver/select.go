package flver

// SelectLayoutSet picks the vertex declaration a material's meshes will use. A single candidate
// is taken as is. With several, the first one declaring at least as many tangents as first
// already carries wins; when none does, the first candidate is used and fallback is true.
func (e *EncodingTable) SelectLayoutSet(candidates []LayoutSet, first *Vertex) (set LayoutSet, fallback bool, err error) {
	if len(candidates) == 0 {
		return nil, false, ErrNoLayoutCandidates
	}
	if len(candidates) == 1 {
		return candidates[0], false, nil
	}

	have := 0
	if first != nil {
		have = len(first.Tangents)
	}
	for _, candidate := range candidates {
		if e.RequiredCounts(candidate).Tangents >= have {
			return candidate, false, nil
		}
	}
	return candidates[0], true, nil
}

// SelectLayoutSet picks a declaration using the default encoding table.
func SelectLayoutSet(candidates []LayoutSet, first *Vertex) (LayoutSet, bool, error) {
	return defaultTable.SelectLayoutSet(candidates, first)
}
