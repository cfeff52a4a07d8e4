// Package ranking trims a similarity report to what is worth reading.
package ranking

import (
	"strings"

	"github.com/phobologic/pqgram/internal/model"
)

// SelectPairs returns a new Report with only the maxPairs closest pairs and
// the clusters that still contain one of them. Pairs are expected in
// ascending distance order. If maxPairs is <= 0 or >= len(pairs), rep is
// returned unchanged.
func SelectPairs(rep *model.Report, maxPairs int) *model.Report {
	if maxPairs <= 0 || maxPairs >= len(rep.Pairs) {
		return rep
	}

	selected := rep.Pairs[:maxPairs]
	inPairs := make(map[string]struct{}, 2*maxPairs)
	for i := range selected {
		inPairs[selected[i].A] = struct{}{}
		inPairs[selected[i].B] = struct{}{}
	}

	return &model.Report{
		RepoName: rep.RepoName,
		Root:     rep.Root,
		Params:   rep.Params,
		Files:    rep.Files,
		Pairs:    selected,
		Clusters: clustersTouching(rep.Clusters, inPairs),
	}
}

// FilterByFile returns a new Report focused on files whose path contains
// substr (case-insensitive): the matching files, every pair involving one of
// them, the files on the other side of those pairs, and the clusters that
// contain a matching file.
func FilterByFile(rep *model.Report, substr string) *model.Report {
	lower := strings.ToLower(substr)
	matches := func(path string) bool {
		return strings.Contains(strings.ToLower(path), lower)
	}

	keep := make(map[string]struct{})
	for i := range rep.Files {
		if matches(rep.Files[i].Path) {
			keep[rep.Files[i].Path] = struct{}{}
		}
	}

	var pairs []model.Pair
	for i := range rep.Pairs {
		p := &rep.Pairs[i]
		if matches(p.A) || matches(p.B) {
			pairs = append(pairs, *p)
			keep[p.A] = struct{}{}
			keep[p.B] = struct{}{}
		}
	}

	var files []model.FileInfo
	for i := range rep.Files {
		if _, ok := keep[rep.Files[i].Path]; ok {
			files = append(files, rep.Files[i])
		}
	}

	var clusters []model.Cluster
	for i := range rep.Clusters {
		for _, f := range rep.Clusters[i].Files {
			if matches(f) {
				clusters = append(clusters, rep.Clusters[i])
				break
			}
		}
	}

	return &model.Report{
		RepoName: rep.RepoName,
		Root:     rep.Root,
		Params:   rep.Params,
		Files:    files,
		Pairs:    pairs,
		Clusters: clusters,
	}
}

func clustersTouching(clusters []model.Cluster, paths map[string]struct{}) []model.Cluster {
	var out []model.Cluster
	for i := range clusters {
		for _, f := range clusters[i].Files {
			if _, ok := paths[f]; ok {
				out = append(out, clusters[i])
				break
			}
		}
	}
	return out
}
