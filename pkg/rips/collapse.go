package rips

import (
	"math"
	"sort"
)

// collapseEdges prunes the 1-skeleton before expansion. An edge (u,v)
// with filtration f is removed when some retained neighbor w of both u
// and v (joined to them at or below f) satisfies, for every common
// neighbor x of u and v, fil(x,w) <= max(fil(x,u), fil(x,v), f). Such an
// edge is dominated by w at every scale at or above f, so deleting it
// leaves the persistent homology of the flag filtration unchanged for
// homology dimensions below the expansion dimension.
//
// Edges are visited in nonincreasing filtration order; adj is mutated in
// place (removed entries become NaN).
func collapseEdges(adj [][]float64) int {
	n := len(adj)
	type edge struct {
		u, v int
		fil  float64
	}
	edges := make([]edge, 0, n)
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if !math.IsNaN(adj[u][v]) {
				edges = append(edges, edge{u, v, adj[u][v]})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].fil != edges[j].fil {
			return edges[i].fil > edges[j].fil
		}
		if edges[i].u != edges[j].u {
			return edges[i].u < edges[j].u
		}
		return edges[i].v < edges[j].v
	})

	removed := 0
	for _, e := range edges {
		if dominatingVertex(adj, e.u, e.v, e.fil) >= 0 {
			adj[e.u][e.v] = math.NaN()
			adj[e.v][e.u] = math.NaN()
			removed++
		}
	}
	return removed
}

// dominatingVertex returns a vertex dominating edge (u,v) at all scales
// >= f, or -1 when none exists.
func dominatingVertex(adj [][]float64, u, v int, f float64) int {
	n := len(adj)
	for w := 0; w < n; w++ {
		if w == u || w == v {
			continue
		}
		if math.IsNaN(adj[u][w]) || adj[u][w] > f {
			continue
		}
		if math.IsNaN(adj[v][w]) || adj[v][w] > f {
			continue
		}
		if dominates(adj, u, v, w, f) {
			return w
		}
	}
	return -1
}

func dominates(adj [][]float64, u, v, w int, f float64) bool {
	n := len(adj)
	for x := 0; x < n; x++ {
		if x == u || x == v || x == w {
			continue
		}
		fu, fv := adj[u][x], adj[v][x]
		if math.IsNaN(fu) || math.IsNaN(fv) {
			continue // never in the common neighborhood
		}
		bound := math.Max(math.Max(fu, fv), f)
		fw := adj[w][x]
		if math.IsNaN(fw) || fw > bound {
			return false
		}
	}
	return true
}
