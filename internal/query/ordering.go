package query

// OrderIndex resolves a persisted manual ordering list into O(1) position
// lookups. A missing list builds an empty index, which falls back entirely to
// natural (id) order.
type OrderIndex struct {
	pos map[string]int
}

func NewOrderIndex(ids []string) OrderIndex {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, seen := pos[id]; seen {
			continue
		}
		pos[id] = i
	}
	return OrderIndex{pos: pos}
}

// Position returns the manual position of an id, if it was explicitly ordered.
func (x OrderIndex) Position(id string) (int, bool) {
	p, ok := x.pos[id]
	return p, ok
}

// Less orders explicitly listed ids by their manual position, ahead of
// unlisted ids, which keep a stable id-based fallback order.
func (x OrderIndex) Less(a, b string) bool {
	pa, oka := x.pos[a]
	pb, okb := x.pos[b]
	switch {
	case oka && okb:
		return pa < pb
	case oka:
		return true
	case okb:
		return false
	default:
		return a < b
	}
}
