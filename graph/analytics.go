package graph

import (
	"sort"

	"github.com/knakk/rdf"

	"github.com/normgraph/normgraph/model"
)

// ReferenceCount holds the citation degree of one norm.
type ReferenceCount struct {
	Norm     string // norm identifier token, e.g. "433"
	Outgoing int    // citations made by this norm's paragraphs
	Incoming int    // citations pointing at this norm
}

// CountReferences tallies per-norm citation degrees from the refersTo
// statements. A paragraph's citation is attributed to its owning norm, and
// targets outside the document are tallied like any other. Results are
// sorted by incoming count, ties broken by identifier.
func CountReferences(triples []rdf.Triple) []ReferenceCount {
	out := make(map[string]int)
	in := make(map[string]int)

	forEachCitation(triples, func(src, tgt string) {
		out[src]++
		in[tgt]++
	})

	norms := make(map[string]bool, len(out)+len(in))
	for n := range out {
		norms[n] = true
	}
	for n := range in {
		norms[n] = true
	}

	counts := make([]ReferenceCount, 0, len(norms))
	for n := range norms {
		counts = append(counts, ReferenceCount{Norm: n, Outgoing: out[n], Incoming: in[n]})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Incoming != counts[j].Incoming {
			return counts[i].Incoming > counts[j].Incoming
		}
		return counts[i].Norm < counts[j].Norm
	})
	return counts
}

// Neighborhood walks the citation network outward from a norm, treating
// edges as undirected, and returns the identifiers reached within maxDepth
// hops in discovery order, nearest first. The start itself is excluded.
func Neighborhood(triples []rdf.Triple, start string, maxDepth int) []string {
	if maxDepth <= 0 {
		return nil
	}
	adj := citationAdjacency(triples)

	visited := map[string]bool{start: true}
	queue := []string{start}
	var found []string

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []string
		for _, n := range queue {
			for _, nb := range adj[n] {
				if !visited[nb] {
					visited[nb] = true
					next = append(next, nb)
					found = append(found, nb)
				}
			}
		}
		queue = next
	}
	return found
}

// Components groups the norms participating in citations into connected
// clusters. Norms never cited and never citing do not appear. Clusters come
// sorted by size, largest first, members sorted within each cluster.
func Components(triples []rdf.Triple) [][]string {
	adj := citationAdjacency(triples)

	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	visited := make(map[string]bool)
	var comps [][]string

	for _, n := range nodes {
		if visited[n] {
			continue
		}
		var comp []string
		queue := []string{n}
		visited[n] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			comp = append(comp, node)
			for _, nb := range adj[node] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		sort.Strings(comp)
		comps = append(comps, comp)
	}

	sort.Slice(comps, func(i, j int) bool {
		if len(comps[i]) != len(comps[j]) {
			return len(comps[i]) > len(comps[j])
		}
		return comps[i][0] < comps[j][0]
	})
	return comps
}

// citationAdjacency reduces refersTo statements to an undirected adjacency
// list over norm identifier tokens.
func citationAdjacency(triples []rdf.Triple) map[string][]string {
	adj := make(map[string][]string)
	forEachCitation(triples, func(src, tgt string) {
		adj[src] = append(adj[src], tgt)
		if src != tgt {
			adj[tgt] = append(adj[tgt], src)
		}
	})
	return adj
}

func forEachCitation(triples []rdf.Triple, fn func(src, tgt string)) {
	refersTo := RefersTo.String()
	for _, t := range triples {
		if t.Pred.String() != refersTo {
			continue
		}
		src, ok := model.NormNumber(t.Subj.String())
		if !ok {
			continue
		}
		tgt, ok := model.NormNumber(t.Obj.String())
		if !ok {
			continue
		}
		fn(src, tgt)
	}
}
