package rips

import (
	"math"
	"sort"
)

// simplex is a face of the filtered flag complex. Vertices are kept in
// ascending order; fil is the filtration value (max over edge lengths).
type simplex struct {
	verts []int
	fil   float64
}

func (s simplex) dim() int { return len(s.verts) - 1 }

// distanceMatrix computes pairwise Euclidean distances.
func distanceMatrix(points [][]float64) [][]float64 {
	n := len(points)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var s float64
			for k := range points[i] {
				diff := points[i][k] - points[j][k]
				s += diff * diff
			}
			v := math.Sqrt(s)
			d[i][j] = v
			d[j][i] = v
		}
	}
	return d
}

// adjacency builds the 1-skeleton restricted to edges <= maxLen.
// Absent edges are marked NaN so collapse can knock entries out later.
func adjacency(dist [][]float64, maxLen float64) [][]float64 {
	n := len(dist)
	adj := make([][]float64, n)
	for i := range adj {
		adj[i] = make([]float64, n)
		for j := range adj[i] {
			adj[i][j] = math.NaN()
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist[i][j] <= maxLen {
				adj[i][j] = dist[i][j]
				adj[j][i] = dist[i][j]
			}
		}
	}
	return adj
}

// expand builds all simplices of the flag complex up to maxDim using the
// inductive lower-neighbor algorithm: a simplex is grown only by vertices
// smaller than all of its current vertices, so each face is emitted once.
func expand(n int, adj [][]float64, maxDim int) []simplex {
	simplices := make([]simplex, 0, n*4)
	for v := 0; v < n; v++ {
		simplices = append(simplices, simplex{verts: []int{v}, fil: 0})
	}
	if maxDim < 1 {
		sortFiltration(simplices)
		return simplices
	}

	// lower[v] = ascending list of u < v with a retained edge (u,v)
	lower := make([][]int, n)
	for v := 0; v < n; v++ {
		for u := 0; u < v; u++ {
			if !math.IsNaN(adj[u][v]) {
				lower[v] = append(lower[v], u)
			}
		}
	}

	var grow func(verts []int, fil float64, cand []int)
	grow = func(verts []int, fil float64, cand []int) {
		for _, u := range cand {
			nf := fil
			for _, w := range verts {
				if adj[u][w] > nf {
					nf = adj[u][w]
				}
			}
			nv := make([]int, 0, len(verts)+1)
			nv = append(nv, u)
			nv = append(nv, verts...)
			simplices = append(simplices, simplex{verts: nv, fil: nf})
			if len(nv) <= maxDim {
				grow(nv, nf, intersect(cand, lower[u]))
			}
		}
	}
	for v := 0; v < n; v++ {
		grow([]int{v}, 0, lower[v])
	}

	sortFiltration(simplices)
	return simplices
}

// sortFiltration orders simplices so that every face precedes its
// cofaces: by filtration value, then dimension, then lexicographically.
func sortFiltration(s []simplex) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].fil != s[j].fil {
			return s[i].fil < s[j].fil
		}
		if len(s[i].verts) != len(s[j].verts) {
			return len(s[i].verts) < len(s[j].verts)
		}
		for k := range s[i].verts {
			if s[i].verts[k] != s[j].verts[k] {
				return s[i].verts[k] < s[j].verts[k]
			}
		}
		return false
	})
}

// intersect merges two ascending int slices.
func intersect(a, b []int) []int {
	out := make([]int, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
