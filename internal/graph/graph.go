// Package graph builds the similarity graph of near-duplicate files, ranks
// files by centrality and groups them into clusters.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/pqgram/internal/model"
)

type edge struct {
	target string
	weight float64
}

// Rank applies PageRank to fileInfos over the undirected similarity graph
// formed by pairs, and sorts files by rank descending (path ascending on
// ties). An edge weighs 1 - distance, so identical files pull hardest.
// Files that appear in no pair share the teleport mass.
func Rank(fileInfos []model.FileInfo, pairs []model.Pair) {
	if len(fileInfos) == 0 {
		return
	}

	nodes := make(map[string]struct{}, len(fileInfos))
	for i := range fileInfos {
		nodes[fileInfos[i].Path] = struct{}{}
	}

	outEdges := make(map[string][]edge)
	outWeight := make(map[string]float64)
	for _, p := range pairs {
		w := 1 - p.Distance
		if w <= 0 {
			continue
		}
		_, okA := nodes[p.A]
		_, okB := nodes[p.B]
		if !okA || !okB {
			continue
		}
		outEdges[p.A] = append(outEdges[p.A], edge{p.B, w})
		outEdges[p.B] = append(outEdges[p.B], edge{p.A, w})
		outWeight[p.A] += w
		outWeight[p.B] += w
	}

	if len(outEdges) == 0 {
		uniform := 1.0 / float64(len(fileInfos))
		for i := range fileInfos {
			fileInfos[i].Rank = uniform
		}
	} else {
		ranks := pageRank(nodes, outEdges, outWeight, 0.85, 100, 1e-6)
		for i := range fileInfos {
			fileInfos[i].Rank = ranks[fileInfos[i].Path]
		}
	}

	sort.SliceStable(fileInfos, func(i, j int) bool {
		if fileInfos[i].Rank != fileInfos[j].Rank {
			return fileInfos[i].Rank > fileInfos[j].Rank
		}
		return fileInfos[i].Path < fileInfos[j].Path
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]edge,
	outWeight map[string]float64,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no edges)
		var danglingSum float64
		for node := range nodes {
			if outWeight[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			total := outWeight[src]
			for _, e := range targets {
				newRank[e.target] += alpha * rank[src] * e.weight / total
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

// Clusters returns the connected components of the similarity graph, each
// with its files sorted. Clusters are ordered by size descending, then by
// first path, and numbered from 1. Files in no pair belong to no cluster.
func Clusters(pairs []model.Pair) []model.Cluster {
	uf := newUnionFind()
	for _, p := range pairs {
		uf.union(p.A, p.B)
	}

	groups := make(map[string][]string)
	for node := range uf.parent {
		root := uf.find(node)
		groups[root] = append(groups[root], node)
	}

	clusters := make([]model.Cluster, 0, len(groups))
	for _, files := range groups {
		sort.Strings(files)
		clusters = append(clusters, model.Cluster{Files: files})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i].Files) != len(clusters[j].Files) {
			return len(clusters[i].Files) > len(clusters[j].Files)
		}
		return clusters[i].Files[0] < clusters[j].Files[0]
	})
	for i := range clusters {
		clusters[i].ID = i + 1
	}

	return clusters
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		next := u.parent[x]
		u.parent[x] = root
		x = next
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Smaller path becomes the root so results do not depend on pair order.
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
