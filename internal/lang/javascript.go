package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

func init() {
	Languages["javascript"] = &Language{
		Name:       "javascript",
		Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
		lang:       javascript.GetLanguage(),
		Skip:       set("comment"),
		TextTypes: set(
			"identifier", "property_identifier", "shorthand_property_identifier",
			"string_fragment", "number", "true", "false", "null", "undefined",
		),
		Label: javascriptLabel,
	}
}

func javascriptLabel(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "binary_expression", "unary_expression", "augmented_assignment_expression":
		return operatorLabel(node, source)
	}
	return ""
}
