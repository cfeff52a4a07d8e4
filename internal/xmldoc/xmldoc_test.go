package xmldoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/phobologic/pqgram/pqgram"
)

func parse(t *testing.T, doc string, opts Options) *pqgram.Tree {
	t.Helper()
	tree, err := Parse(strings.NewReader(doc), opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tree
}

func TestParseElements(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<!-- comment -->
<a><a><e/><b/></a><b/><c>text</c></a>`

	tree := parse(t, doc, Options{})
	if got := tree.String(); got != "a(a(e,b),b,c)" {
		t.Errorf("tree = %s", got)
	}
	if tree.Size() != 6 {
		t.Errorf("Size() = %d, want 6", tree.Size())
	}
}

func TestParseAttributesAndText(t *testing.T) {
	t.Parallel()

	doc := `<item z="1" a="2" xmlns="urn:x"><name>n</name>  </item>`

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"plain", Options{}, "item(name)"},
		{"attributes", Options{Attributes: true}, "item(@a,@z,name)"},
		{"text", Options{Text: true}, "item(name(#text))"},
		{"both", Options{Attributes: true, Text: true}, "item(@a=2,@z=1,name(#text))"},
		{"namespaces", Options{Namespaces: true}, "{urn:x}item({urn:x}name)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parse(t, doc, tt.opts).String(); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseNamespacesQualified(t *testing.T) {
	t.Parallel()

	doc := `<x:item xmlns:x="urn:example:ns" xmlns:y="urn:other" y:id="1"><x:name/><name/></x:item>`

	tree := parse(t, doc, Options{Namespaces: true, Attributes: true})
	want := "{urn:example:ns}item(@{urn:other}id,{urn:example:ns}name,name)"
	if got := tree.String(); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if got := parse(t, doc, Options{}).String(); got != "item(name,name)" {
		t.Errorf("unqualified tree = %s", got)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"prolog only", `<?xml version="1.0"?>`},
		{"unclosed", "<a><b></a>"},
		{"two roots", "<a/><b/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := Parse(strings.NewReader(tt.doc), Options{})
			if err == nil {
				t.Fatalf("expected error, got tree %s", tree)
			}
		})
	}
}

func TestParseNoRoot(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("  "), Options{})
	if !errors.Is(err, ErrNoRoot) {
		t.Errorf("err = %v, want ErrNoRoot", err)
	}
}

func TestParsedTreesCompare(t *testing.T) {
	t.Parallel()

	a := parse(t, "<a><a><e/><b/></a><b/><c/></a>", Options{})
	b := parse(t, "<a><a><e/><b/></a><b/><x/></a>", Options{})

	pa, err := pqgram.BuildDefault(a)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := pqgram.BuildDefault(b)
	if err != nil {
		t.Fatal(err)
	}
	if n := pqgram.Intersection(pa, pb); n != 9 {
		t.Errorf("Intersection = %d, want 9", n)
	}
}
