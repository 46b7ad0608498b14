package rips

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// entry is one nonzero coefficient of a boundary column.
type entry struct {
	row  int
	coef uint64 // in [1, p)
}

// column keeps entries ascending by row; the pivot is the last entry.
type column []entry

func (c column) low() entry { return c[len(c)-1] }

// addScaled returns a + s*b over GF(p), dropping cancelled entries.
func addScaled(a, b column, s, p uint64) column {
	out := make(column, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].row < b[j].row:
			out = append(out, a[i])
			i++
		case a[i].row > b[j].row:
			out = append(out, entry{b[j].row, (b[j].coef * s) % p})
			j++
		default:
			c := (a[i].coef + b[j].coef*s) % p
			if c != 0 {
				out = append(out, entry{a[i].row, c})
			}
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	for ; j < len(b); j++ {
		out = append(out, entry{b[j].row, (b[j].coef * s) % p})
	}
	return out
}

func powMod(a, e, p uint64) uint64 {
	a %= p
	r := uint64(1)
	for e > 0 {
		if e&1 == 1 {
			r = r * a % p
		}
		a = a * a % p
		e >>= 1
	}
	return r
}

// invMod computes a^-1 mod p for prime p.
func invMod(a, p uint64) uint64 { return powMod(a, p-2, p) }

func vertexKey(verts []int) string {
	var b strings.Builder
	for i, v := range verts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// reducePairs runs the standard persistence pairing algorithm on the
// sorted filtration over GF(p) and returns one diagram per homology
// dimension 0..maxDim. Creators whose class never dies get death +Inf.
// Finite pairs with persistence <= minPersistence are dropped unless
// minPersistence is negative.
func reducePairs(simplices []simplex, p uint64, maxDim int, minPersistence float64) []Diagram {
	index := make(map[string]int, len(simplices))
	for i, s := range simplices {
		index[vertexKey(s.verts)] = i
	}

	diagrams := make([]Diagram, maxDim+1)
	lowOwner := make(map[int]int)       // pivot row -> column index owning it
	reduced := make(map[int]column)     // column index -> reduced column
	positive := make([]bool, len(simplices))
	killed := make([]bool, len(simplices))

	face := make([]int, 0, 8)
	for j, s := range simplices {
		if s.dim() == 0 {
			positive[j] = true
			continue
		}

		col := make(column, 0, len(s.verts))
		for i := range s.verts {
			face = face[:0]
			face = append(face, s.verts[:i]...)
			face = append(face, s.verts[i+1:]...)
			coef := uint64(1)
			if i%2 == 1 {
				coef = p - 1
			}
			col = append(col, entry{index[vertexKey(face)], coef})
		}
		sort.Slice(col, func(a, b int) bool { return col[a].row < col[b].row })

		for len(col) > 0 {
			l := col.low()
			k, ok := lowOwner[l.row]
			if !ok {
				break
			}
			pivot := reduced[k]
			factor := l.coef * invMod(pivot.low().coef, p) % p
			col = addScaled(col, pivot, p-factor, p)
		}

		if len(col) == 0 {
			positive[j] = true
			continue
		}
		l := col.low()
		lowOwner[l.row] = j
		reduced[j] = col
		killed[l.row] = true

		creator := simplices[l.row]
		d := creator.dim()
		if d <= maxDim {
			birth, death := creator.fil, s.fil
			if minPersistence < 0 || death-birth > minPersistence {
				diagrams[d] = append(diagrams[d], Pair{Birth: birth, Death: death})
			}
		}
	}

	// Essential classes: positive simplices never matched as a pivot.
	for i, s := range simplices {
		if positive[i] && !killed[i] && s.dim() <= maxDim {
			diagrams[s.dim()] = append(diagrams[s.dim()], Pair{Birth: s.fil, Death: math.Inf(1)})
		}
	}

	for d := range diagrams {
		sort.Slice(diagrams[d], func(a, b int) bool {
			if diagrams[d][a].Birth != diagrams[d][b].Birth {
				return diagrams[d][a].Birth < diagrams[d][b].Birth
			}
			return diagrams[d][a].Death < diagrams[d][b].Death
		})
	}
	return diagrams
}
