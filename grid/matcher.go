package grid

import (
	"regexp"
	"sort"
	"strings"
)

// wordChar is a Unicode-aware token character, the equivalent of \w outside ASCII.
const wordChar = `\p{L}\p{N}_`

// CompilePattern builds the case-insensitive disjunction of whole-token patterns for the non-empty
// terms. Terms are matched literally. When the last term is empty, the pattern also matches an
// empty value. It returns nil when no term is usable, which matches nothing.
func CompilePattern(terms []string) *regexp.Regexp {
	alternatives := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			alternatives = append(alternatives, regexp.QuoteMeta(t))
		}
	}
	if len(alternatives) == 0 {
		return nil
	}

	expr := `(?i)(?:^|[^` + wordChar + `])(?:` + strings.Join(alternatives, "|") + `)(?:[^` + wordChar + `]|$)`
	if terms[len(terms)-1] == "" {
		expr += `|^$`
	}
	return regexp.MustCompile(expr)
}

// Match scans s in row-major order and returns the cells whose value matches terms, sorted by
// (row, col) for AlongColumns or (col, row) for AlongRows.
//
// An empty cell directly following a hit along dir is a hit too, so a run of terms split by a blank
// cell stays in one piece.
func Match(s *Snapshot, terms []string, dir Direction) []CachedCell {
	pattern := CompilePattern(terms)
	if pattern == nil || s == nil {
		return []CachedCell{}
	}

	hits := make([]CachedCell, 0)
	recorded := make(map[CellIndex]bool)
	for _, row := range s.rows {
		for _, cell := range row {
			idx := cell.Index()
			switch {
			case pattern.MatchString(cell.value):
			case cell.value == "" && recorded[dir.prev(idx)]:
			default:
				continue
			}
			recorded[idx] = true
			hits = append(hits, cell)
		}
	}

	sortCells(hits, dir)
	return hits
}

func sortCells(cells []CachedCell, dir Direction) {
	sort.SliceStable(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if dir == AlongRows {
			if a.col != b.col {
				return a.col < b.col
			}
			return a.row < b.row
		}
		if a.row != b.row {
			return a.row < b.row
		}
		return a.col < b.col
	})
}
