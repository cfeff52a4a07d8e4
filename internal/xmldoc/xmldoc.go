// Package xmldoc turns XML documents into labeled trees.
package xmldoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/phobologic/pqgram/pqgram"
)

// ErrNoRoot is returned for a document without a root element.
var ErrNoRoot = errors.New("xml: no root element")

// Options controls which parts of a document become tree nodes.
type Options struct {
	// Attributes adds one "@name" leaf per attribute, sorted by name, ahead
	// of the element's children.
	Attributes bool
	// Text adds a "#text" leaf for every non-blank run of character data.
	// Attribute leaves also carry their value ("@name=value").
	Text bool
	// Namespaces qualifies labels with the resolved namespace URI in
	// "{uri}local" form, so the same local name in two namespaces differs.
	Namespaces bool
}

// Parse reads one XML document from r. Elements become nodes labeled by
// their local name.
func Parse(r io.Reader, opts Options) (*pqgram.Tree, error) {
	dec := xml.NewDecoder(r)

	var root *pqgram.Tree
	var stack []*pqgram.Tree

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := pqgram.NewTree(label(t.Name, opts))
			if opts.Attributes {
				for _, attr := range attributes(t.Attr, opts) {
					node.AddKid(pqgram.NewTree(attr))
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("xml: multiple root elements (<%s> after <%s>)", t.Name.Local, root.Label())
				}
				root = node
			} else {
				stack[len(stack)-1].AddKid(node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if !opts.Text || len(stack) == 0 {
				continue
			}
			if text := strings.TrimSpace(string(t)); text != "" {
				stack[len(stack)-1].AddKid(pqgram.NewTree("#text"))
			}
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

func label(name xml.Name, opts Options) string {
	if opts.Namespaces && name.Space != "" {
		return "{" + name.Space + "}" + name.Local
	}
	return name.Local
}

func attributes(attrs []xml.Attr, opts Options) []string {
	var out []string
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		s := "@" + label(a.Name, opts)
		if opts.Text {
			s += "=" + a.Value
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
