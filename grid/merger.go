package grid

import "sort"

// Merge partitions hits, sorted as returned by Match, into maximal runs of cells adjacent along dir.
// The regions are sorted by ascending length along dir, so the longest run comes last; runs of equal
// length keep their scan order.
func Merge(hits []CachedCell, dir Direction) []Region {
	regions := make([]Region, 0)
	if len(hits) == 0 {
		return regions
	}

	start := hits[0].Index()
	for i, cur := range hits {
		// The zero cell is a sentinel that is never adjacent to anything.
		var nxt CellIndex
		if i+1 < len(hits) {
			nxt = hits[i+1].Index()
		}
		if nxt.IsSet() && dir.next(cur.Index()) == nxt {
			continue
		}
		regions = append(regions, Region{Start: start, End: cur.Index()})
		start = nxt
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Length(dir) < regions[j].Length(dir)
	})
	return regions
}

// Find runs Match and Merge over s.
func Find(s *Snapshot, terms []string, dir Direction) []Region {
	return Merge(Match(s, terms, dir), dir)
}
