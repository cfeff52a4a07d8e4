package lang

import (
	"strings"
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".go", "go"},
		{".rb", "ruby"},
		{".js", "javascript"},
		{".jsx", "javascript"},
		{".xml", "xml"},
		{".XML", "xml"},
		{".rs", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"go", "python", "ruby", "javascript"} {
		l, ok := Languages[name]
		if !ok {
			t.Fatalf("%s language not registered", name)
		}
		if !l.HasGrammar() || l.GetLanguage() == nil {
			t.Errorf("%s: missing grammar", name)
		}
		if !l.Skips("comment") {
			t.Errorf("%s: comments should be skipped", name)
		}
		if !l.KeepsText("identifier") {
			t.Errorf("%s: identifiers should keep text", name)
		}
	}

	xml := Languages["xml"]
	if xml == nil {
		t.Fatal("xml language not registered")
	}
	if xml.HasGrammar() {
		t.Error("xml should not have a tree-sitter grammar")
	}
	if xml.NewParser() != nil {
		t.Error("xml NewParser should return nil")
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	py := Languages["python"]
	p := py.NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if _, err := Lookup("go"); err != nil {
		t.Errorf("Lookup(go): %v", err)
	}
	_, err := Lookup("rust")
	if err == nil {
		t.Fatal("expected error for rust")
	}
	if !strings.Contains(err.Error(), "unsupported language") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	got := strings.Join(Names(), ",")
	if got != "go,javascript,python,ruby,xml" {
		t.Errorf("Names() = %s", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	if got := CollapseWhitespace("  a \n\t b  "); got != "a b" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}
