// Package model defines core data structures for pqgram reports.
package model

// FileInfo holds metadata for a single profiled file.
type FileInfo struct {
	Path     string
	Language string
	Nodes    int
	Grams    int
	Rank     float64
}

// Pair is an unordered pair of files whose profile distance is within the
// reporting threshold. A sorts before B.
type Pair struct {
	A        string
	B        string
	Distance float64
	Shared   int
}

// Cluster is a connected component of the similarity graph: files linked by
// chains of near-duplicate pairs.
type Cluster struct {
	ID    int
	Files []string
}

// Params records the gram shape and threshold a report was built with.
type Params struct {
	P         int
	Q         int
	Threshold float64
}

// Report is the complete similarity analysis, ready for serialization.
type Report struct {
	RepoName string
	Root     string
	Params   Params
	Files    []FileInfo
	Pairs    []Pair
	Clusters []Cluster
}

// Diff is the comparison of two individual files.
type Diff struct {
	A        FileInfo
	B        FileInfo
	Params   Params
	Shared   int
	Distance float64
}
