package graph

import (
	"math"
	"testing"

	"github.com/phobologic/pqgram/internal/model"
)

func files(paths ...string) []model.FileInfo {
	out := make([]model.FileInfo, len(paths))
	for i, p := range paths {
		out[i] = model.FileInfo{Path: p, Language: "go"}
	}
	return out
}

func TestRankNoPairsUniform(t *testing.T) {
	t.Parallel()

	fis := files("b.go", "a.go")
	Rank(fis, nil)

	for _, fi := range fis {
		if math.Abs(fi.Rank-0.5) > 1e-9 {
			t.Errorf("%s: rank = %v, want 0.5", fi.Path, fi.Rank)
		}
	}
	if fis[0].Path != "a.go" {
		t.Errorf("ties should sort by path, got %s first", fis[0].Path)
	}
}

func TestRankHubFirst(t *testing.T) {
	t.Parallel()

	// hub.go is similar to three files; the others only to hub.go.
	fis := files("a.go", "b.go", "c.go", "hub.go", "lonely.go")
	pairs := []model.Pair{
		{A: "a.go", B: "hub.go", Distance: 0.1},
		{A: "b.go", B: "hub.go", Distance: 0.2},
		{A: "c.go", B: "hub.go", Distance: 0.2},
	}
	Rank(fis, pairs)

	if fis[0].Path != "hub.go" {
		t.Errorf("expected hub.go first, got %s", fis[0].Path)
	}
	if fis[len(fis)-1].Path != "lonely.go" {
		t.Errorf("expected lonely.go last, got %s", fis[len(fis)-1].Path)
	}

	var sum float64
	for _, fi := range fis {
		sum += fi.Rank
	}
	if math.Abs(sum-1.0) > 1e-3 {
		t.Errorf("ranks sum to %v, want ~1", sum)
	}
}

func TestRankIgnoresZeroWeightAndUnknownFiles(t *testing.T) {
	t.Parallel()

	fis := files("a.go", "b.go")
	pairs := []model.Pair{
		{A: "a.go", B: "b.go", Distance: 1},
		{A: "a.go", B: "gone.go", Distance: 0},
	}
	Rank(fis, pairs)

	if fis[0].Rank != fis[1].Rank {
		t.Errorf("expected uniform ranks, got %v and %v", fis[0].Rank, fis[1].Rank)
	}
}

func TestRankEmpty(t *testing.T) {
	t.Parallel()
	Rank(nil, nil)
}

func TestClusters(t *testing.T) {
	t.Parallel()

	pairs := []model.Pair{
		{A: "x.go", B: "y.go", Distance: 0.1},
		{A: "c.go", B: "d.go", Distance: 0.2},
		{A: "a.go", B: "b.go", Distance: 0.1},
		{A: "b.go", B: "c.go", Distance: 0.3},
	}

	clusters := Clusters(pairs)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d: %+v", len(clusters), clusters)
	}

	first := clusters[0]
	if first.ID != 1 || len(first.Files) != 4 {
		t.Fatalf("first cluster = %+v", first)
	}
	for i, want := range []string{"a.go", "b.go", "c.go", "d.go"} {
		if first.Files[i] != want {
			t.Errorf("files[%d] = %s, want %s", i, first.Files[i], want)
		}
	}

	second := clusters[1]
	if second.ID != 2 || len(second.Files) != 2 || second.Files[0] != "x.go" {
		t.Errorf("second cluster = %+v", second)
	}
}

func TestClustersOrderIndependent(t *testing.T) {
	t.Parallel()

	a := Clusters([]model.Pair{{A: "a", B: "b"}, {A: "c", B: "d"}, {A: "b", B: "c"}})
	b := Clusters([]model.Pair{{A: "b", B: "c"}, {A: "c", B: "d"}, {A: "a", B: "b"}})
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected single clusters, got %+v and %+v", a, b)
	}
	for i := range a[0].Files {
		if a[0].Files[i] != b[0].Files[i] {
			t.Errorf("cluster files differ: %v vs %v", a[0].Files, b[0].Files)
		}
	}
}

func TestClustersEmpty(t *testing.T) {
	t.Parallel()

	if got := Clusters(nil); len(got) != 0 {
		t.Errorf("expected no clusters, got %+v", got)
	}
}
