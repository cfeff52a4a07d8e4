package pqgram

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"
)

// gram builds a test gram; "*" stands for the placeholder.
func gram(p int, labels ...string) Gram {
	ls := make([]Label, len(labels))
	for i, s := range labels {
		if s != "*" {
			ls[i] = Name(s)
		}
	}
	return NewGram(p, ls...)
}

func knownTree(last string) *Tree {
	return NewTree("a",
		NewTree("a", NewTree("e"), NewTree("b")),
		NewTree("b"),
		NewTree(last),
	)
}

func knownGrams(last string) []Gram {
	return []Gram{
		gram(2, "*", "a", "*", "*", "a"),
		gram(2, "a", "a", "*", "*", "e"),
		gram(2, "a", "e", "*", "*", "*"),
		gram(2, "a", "a", "*", "e", "b"),
		gram(2, "a", "b", "*", "*", "*"),
		gram(2, "a", "a", "e", "b", "*"),
		gram(2, "a", "a", "b", "*", "*"),
		gram(2, "*", "a", "*", "a", "b"),
		gram(2, "a", "b", "*", "*", "*"),
		gram(2, "*", "a", "a", "b", last),
		gram(2, "a", last, "*", "*", "*"),
		gram(2, "*", "a", "b", last, "*"),
		gram(2, "*", "a", last, "*", "*"),
	}
}

func mustBuild(t *testing.T, root Node, p, q int) *Profile {
	t.Helper()
	pr, err := Build(root, p, q)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return pr
}

func assertGrams(t *testing.T, pr *Profile, want []Gram) {
	t.Helper()
	want = append([]Gram(nil), want...)
	sort.Slice(want, func(i, j int) bool { return want[i].Compare(want[j]) < 0 })
	if pr.Len() != len(want) {
		t.Fatalf("profile has %d grams, want %d: %s", pr.Len(), len(want), pr)
	}
	for i := range want {
		if !pr.At(i).Equal(want[i]) {
			t.Errorf("gram %d = %s, want %s", i, pr.At(i), want[i])
		}
	}
}

// randTree builds a tree level by level; labels are drawn from a small
// alphabet so that unrelated trees still share some grams.
func randTree(r *rand.Rand, depth, width int) *Tree {
	root := NewTree("root")
	level := []*Tree{root}
	for d := 1; d < depth; d++ {
		var next []*Tree
		for _, n := range level {
			for k := r.IntN(width + 1); k >= 0; k-- {
				kid := NewTree(fmt.Sprintf("n%d", r.IntN(12)))
				n.AddKid(kid)
				next = append(next, kid)
			}
		}
		level = next
	}
	return root
}

func randTrees(t *testing.T, n int) []*Tree {
	t.Helper()
	r := rand.New(rand.NewPCG(1, 2))
	trees := []*Tree{NewTree("a"), NewTree("b"), knownTree("c"), knownTree("x")}
	for range n {
		trees = append(trees, randTree(r, 1+r.IntN(6), 1+r.IntN(4)))
	}
	return trees
}

// gramCount is one gram per leaf and children+q-1 per internal node.
func gramCount(t *Tree, q int) int {
	if len(t.Kids()) == 0 {
		return 1
	}
	n := len(t.Kids()) + q - 1
	for _, k := range t.Kids() {
		n += gramCount(k, q)
	}
	return n
}

func TestBuildSingleNode(t *testing.T) {
	t.Parallel()

	pr := mustBuild(t, NewTree("a"), 2, 3)
	assertGrams(t, pr, []Gram{gram(2, "*", "a", "*", "*", "*")})

	g := pr.At(0)
	if !g.At(0).IsPlaceholder() || g.At(1).IsPlaceholder() {
		t.Errorf("unexpected padding in %s", g)
	}
	if got := g.String(); got != "(*,a,*,*,*)" {
		t.Errorf("String() = %q", got)
	}
}

func TestBuildKnownTree(t *testing.T) {
	t.Parallel()

	pr := mustBuild(t, knownTree("c"), 2, 3)
	assertGrams(t, pr, knownGrams("c"))
	if pr.P() != 2 || pr.Q() != 3 {
		t.Errorf("shape = (%d,%d), want (2,3)", pr.P(), pr.Q())
	}
}

func TestBuildDefault(t *testing.T) {
	t.Parallel()

	pr, err := BuildDefault(knownTree("x"))
	if err != nil {
		t.Fatalf("BuildDefault: %v", err)
	}
	assertGrams(t, pr, knownGrams("x"))
}

func TestBuildQOne(t *testing.T) {
	t.Parallel()

	pr := mustBuild(t, NewTree("a", NewTree("b"), NewTree("c")), 1, 1)
	assertGrams(t, pr, []Gram{
		gram(1, "a", "b"),
		gram(1, "a", "c"),
		gram(1, "b", "*"),
		gram(1, "c", "*"),
	})
}

func TestBuildAncestorsIndependentAcrossSiblings(t *testing.T) {
	t.Parallel()

	// With p=3 a shared ancestor window would leak "x" into y's subtree.
	root := NewTree("r",
		NewTree("x", NewTree("x1")),
		NewTree("y", NewTree("y1")),
	)
	pr := mustBuild(t, root, 3, 1)
	for _, g := range pr.Grams() {
		anc := g.Ancestors()
		if anc[1].Value() == "y" && anc[0].Value() != "r" {
			t.Errorf("gram %s has wrong ancestor chain", g)
		}
		if anc[2].Value() == "y1" && anc[1].Value() != "y" {
			t.Errorf("gram %s has wrong ancestor chain", g)
		}
	}
	found := false
	for _, g := range pr.Grams() {
		if g.Equal(gram(3, "r", "y", "y1", "*")) {
			found = true
		}
	}
	if !found {
		t.Errorf("missing (r,y,y1,*) in %s", pr)
	}
}

func TestBuildInvalidParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p, q int
	}{
		{"zero p", 0, 3},
		{"zero q", 2, 0},
		{"negative p", -1, 3},
		{"negative q", 2, -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pr, err := Build(NewTree("a"), tt.p, tt.q)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
			if pr != nil {
				t.Error("expected nil profile on error")
			}
		})
	}
}

func TestBuildInvalidParametersBeforeInput(t *testing.T) {
	t.Parallel()

	_, err := Build(nil, 0, 0)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestBuildNilRoot(t *testing.T) {
	t.Parallel()

	var typed *Tree
	for _, root := range []Node{nil, typed} {
		pr, err := Build(root, 2, 3)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
		if pr != nil {
			t.Error("expected nil profile on error")
		}
	}
}

func TestBuildNilChild(t *testing.T) {
	t.Parallel()

	root := NewTree("a", NewTree("b", nil))
	pr, err := Build(root, 2, 3)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if pr != nil {
		t.Error("expected no partial profile")
	}
}

// ptrNode is a Node implemented outside this package's Tree.
type ptrNode struct {
	label string
	kids  []*ptrNode
}

func (n *ptrNode) Label() string { return n.label }

func (n *ptrNode) Children() []Node {
	out := make([]Node, len(n.kids))
	for i, k := range n.kids {
		out[i] = k
	}
	return out
}

func TestBuildForeignNode(t *testing.T) {
	t.Parallel()

	var typed *ptrNode
	if _, err := Build(typed, 2, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil root: err = %v, want ErrInvalidInput", err)
	}

	withNilKid := &ptrNode{label: "a", kids: []*ptrNode{{label: "b"}, nil}}
	if _, err := Build(withNilKid, 2, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil child: err = %v, want ErrInvalidInput", err)
	}

	root := &ptrNode{label: "a", kids: []*ptrNode{{label: "b"}}}
	got := mustBuild(t, root, 2, 2)
	want := mustBuild(t, NewTree("a", NewTree("b")), 2, 2)
	if Intersection(got, want) != want.Len() || got.Len() != want.Len() {
		t.Errorf("foreign node profile differs from Tree profile")
	}
}

func TestPlaceholderNeverMatchesStarLabel(t *testing.T) {
	t.Parallel()

	star := mustBuild(t, NewTree("a", NewTree("*")), 2, 3)
	leaf := mustBuild(t, NewTree("a"), 2, 3)
	if n := Intersection(star, leaf); n != 0 {
		t.Errorf("Intersection = %d, want 0", n)
	}

	empty := mustBuild(t, NewTree(""), 1, 1)
	if empty.At(0).At(0).IsPlaceholder() {
		t.Error("empty label must not be a placeholder")
	}
}

func TestGramOrderIsElementWise(t *testing.T) {
	t.Parallel()

	a := gram(1, "ab", "c")
	b := gram(1, "a", "bc")
	if a.Equal(b) || a.Compare(b) == 0 {
		t.Fatal("(ab,c) and (a,bc) must be distinct")
	}
	if a.Compare(b) <= 0 {
		t.Errorf("(ab,c) should sort after (a,bc)")
	}
	if gram(1, "*", "a").Compare(gram(1, "", "a")) >= 0 {
		t.Error("placeholder should sort before the empty label")
	}
	if gram(1, "a").Compare(gram(1, "a", "b")) >= 0 {
		t.Error("prefix should sort first")
	}
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	for i, tree := range randTrees(t, 10) {
		a := mustBuild(t, tree, 2, 3)
		b := mustBuild(t, tree, 2, 3)
		if !a.Equal(b) {
			t.Errorf("tree %d: profiles differ between builds", i)
		}
	}
}

func TestBuildGramCount(t *testing.T) {
	t.Parallel()

	for _, shape := range [][2]int{{1, 1}, {2, 3}, {3, 2}, {4, 5}} {
		for i, tree := range randTrees(t, 10) {
			pr := mustBuild(t, tree, shape[0], shape[1])
			if want := gramCount(tree, shape[1]); pr.Len() != want {
				t.Errorf("p=%d q=%d tree %d: %d grams, want %d", shape[0], shape[1], i, pr.Len(), want)
			}
		}
	}
}

func TestBuildDeepTree(t *testing.T) {
	t.Parallel()

	const depth = 50_000
	root := NewTree("n")
	cur := root
	for i := 1; i < depth; i++ {
		kid := NewTree("n")
		cur.AddKid(kid)
		cur = kid
	}

	pr := mustBuild(t, root, 2, 3)
	if want := (depth-1)*3 + 1; pr.Len() != want {
		t.Errorf("Len() = %d, want %d", pr.Len(), want)
	}
}

func TestBuildLinearScaling(t *testing.T) {
	t.Parallel()

	// A flat tree with n leaves has n+q-1 root grams and n leaf grams.
	for _, n := range []int{1, 10, 100, 1000} {
		root := NewTree("r")
		for i := 0; i < n; i++ {
			root.AddKid(NewTree(fmt.Sprintf("k%d", i)))
		}
		pr := mustBuild(t, root, 2, 3)
		if want := 2*n + 2; pr.Len() != want {
			t.Errorf("n=%d: Len() = %d, want %d", n, pr.Len(), want)
		}
	}
}

func TestProfileAll(t *testing.T) {
	t.Parallel()

	pr := mustBuild(t, knownTree("c"), 2, 3)
	n := 0
	for i, g := range pr.All() {
		if !g.Equal(pr.At(i)) {
			t.Errorf("All() yielded %s at %d, want %s", g, i, pr.At(i))
		}
		n++
	}
	if n != pr.Len() {
		t.Errorf("All() yielded %d grams, want %d", n, pr.Len())
	}

	n = 0
	for range pr.All() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("early break: n = %d", n)
	}
}

func TestGramsIsCopy(t *testing.T) {
	t.Parallel()

	pr := mustBuild(t, knownTree("c"), 2, 3)
	gs := pr.Grams()
	gs[0] = gram(2, "z", "z", "z", "z", "z")
	if pr.At(0).Equal(gs[0]) {
		t.Error("Grams() exposed the internal slice")
	}

	labels := pr.At(0).Labels()
	labels[0] = Name("zzz")
	if pr.At(0).At(0).Value() == "zzz" {
		t.Error("Labels() exposed the internal slice")
	}
}

func TestNilProfile(t *testing.T) {
	t.Parallel()

	var pr *Profile
	if pr.Len() != 0 || pr.P() != 0 || pr.Q() != 0 {
		t.Error("nil profile should be empty")
	}
	if pr.Grams() != nil {
		t.Error("nil profile should have no grams")
	}
}
