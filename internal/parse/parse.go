// Package parse converts source files into labeled trees using tree-sitter.
package parse

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pqgram/internal/lang"
	"github.com/phobologic/pqgram/internal/xmldoc"
	"github.com/phobologic/pqgram/pqgram"
)

// Options controls how syntax nodes are labeled.
type Options struct {
	// LeafText appends source text to identifier and literal labels, e.g.
	// "identifier:foo". Without it only the shape of the code matters.
	LeafText bool
	// AllNodes keeps anonymous nodes (punctuation, keywords).
	AllNodes bool
	// XMLAttributes turns XML attributes into "@name" leaves.
	XMLAttributes bool
	// XMLNamespaces qualifies XML labels as "{uri}local".
	XMLNamespaces bool
}

// Tree parses source and returns its labeled tree. The parser must be created
// for l; it is ignored for languages without a grammar.
func Tree(ctx context.Context, l *lang.Language, parser *sitter.Parser, source []byte, opts Options) (*pqgram.Tree, error) {
	if !l.HasGrammar() {
		return xmldoc.Parse(bytes.NewReader(source), xmldoc.Options{
			Attributes: opts.XMLAttributes,
			Namespaces: opts.XMLNamespaces,
			Text:       opts.LeafText,
		})
	}
	if parser == nil {
		return nil, errors.New("no parser for " + l.Name)
	}

	st, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", l.Name, err)
	}
	defer st.Close()

	return convert(l, st.RootNode(), source, opts), nil
}

type pending struct {
	src *sitter.Node
	dst *pqgram.Tree
}

// convert copies the syntax tree into a pqgram.Tree with an explicit stack;
// generated parsers can produce trees deeper than is comfortable to recurse.
func convert(l *lang.Language, root *sitter.Node, source []byte, opts Options) *pqgram.Tree {
	out := pqgram.NewTree(label(l, root, source, opts))
	stack := []pending{{src: root, dst: out}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if opts.LeafText && l.KeepsText(cur.src.Type()) {
			continue
		}

		for i := 0; i < int(cur.src.ChildCount()); i++ {
			child := cur.src.Child(i)
			if child == nil || l.Skips(child.Type()) {
				continue
			}
			if !opts.AllNodes && !child.IsNamed() {
				continue
			}
			kid := pqgram.NewTree(label(l, child, source, opts))
			cur.dst.AddKid(kid)
			stack = append(stack, pending{src: child, dst: kid})
		}
	}

	return out
}

func label(l *lang.Language, node *sitter.Node, source []byte, opts Options) string {
	typ := node.Type()
	if l.Label != nil {
		if s := l.Label(node, source); s != "" {
			typ = s
		}
	}
	if opts.LeafText && l.KeepsText(node.Type()) {
		return typ + ":" + lang.CollapseWhitespace(lang.NodeText(node, source))
	}
	return typ
}
