// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars and the labeling rules used to turn syntax trees into
// PQ-gram input.
package lang

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language holds tree-sitter configuration for a supported language.
// Markup languages parsed without tree-sitter (XML) have a nil grammar.
type Language struct {
	Name       string
	Extensions []string
	lang       *sitter.Language

	// Skip lists node types dropped from the tree together with their
	// subtrees, typically comments.
	Skip map[string]struct{}

	// TextTypes lists node types whose source text is appended to the label
	// when leaf text is enabled (identifiers, literals).
	TextTypes map[string]struct{}

	// Label optionally overrides the label of a node. It returns "" to fall
	// back to the node type.
	Label func(node *sitter.Node, source []byte) string
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// HasGrammar reports whether the language is parsed with tree-sitter.
func (l *Language) HasGrammar() bool {
	return l.lang != nil
}

// NewParser creates a fresh tree-sitter parser for this language, or nil for
// languages without a grammar.
// Each goroutine must use its own parser (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	if l.lang == nil {
		return nil
	}
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Skips reports whether nodes of type typ are dropped.
func (l *Language) Skips(typ string) bool {
	_, ok := l.Skip[typ]
	return ok
}

// KeepsText reports whether the text of nodes of type typ is part of the label.
func (l *Language) KeepsText(typ string) bool {
	_, ok := l.TextTypes[typ]
	return ok
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[strings.ToLower(ext)]
}

// Lookup returns the named language.
func Lookup(name string) (*Language, error) {
	l, ok := Languages[name]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return l, nil
}

// Names returns the registered language names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Languages))
	for name := range Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// operatorLabel labels binary and unary expressions by their operator so that
// a+b and a*b stay distinct once anonymous tokens are dropped.
func operatorLabel(node *sitter.Node, source []byte) string {
	op := node.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	return node.Type() + ":" + NodeText(op, source)
}

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
